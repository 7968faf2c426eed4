package stats

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/myusername/wordle-league-tracker/pkg/models"
)

var monday = time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)

// week builds records for one player across consecutive days of the test week.
func week(player string, league int, scores ...int) []models.ScoreRecord {
	recs := make([]models.ScoreRecord, 0, len(scores))
	for i, s := range scores {
		day := monday.AddDate(0, 0, i)
		recs = append(recs, models.ScoreRecord{
			Player:       player,
			LeagueID:     league,
			PuzzleNumber: models.PuzzleNumberFor(day),
			Date:         day,
			Score:        s,
		})
	}
	return recs
}

func standingFor(t *testing.T, standings []models.WeeklyStanding, player string) models.WeeklyStanding {
	t.Helper()
	for _, s := range standings {
		if s.Player == player {
			return s
		}
	}
	t.Fatalf("no standing for player %s", player)
	return models.WeeklyStanding{}
}

func TestComputeWeeklyStandings_BestFiveOfSeven(t *testing.T) {
	// Seven scores; only the five lowest may count.
	records := week("Brent", 1, 6, 5, 4, 3, 2, 6, 6)
	window := models.WindowFor(monday)

	standings, err := ComputeWeeklyStandings(records, 1, window)
	if err != nil {
		t.Fatalf("ComputeWeeklyStandings error: %v", err)
	}

	s := standingFor(t, standings, "Brent")
	if s.Total != 2+3+4+5+6 {
		t.Errorf("Total = %d, want 20 (sum of five lowest)", s.Total)
	}
	if want := []int{2, 3, 4, 5, 6}; !reflect.DeepEqual(s.BestScores, want) {
		t.Errorf("BestScores = %v, want %v", s.BestScores, want)
	}
	if !s.Eligible || !s.IsWinner {
		t.Errorf("sole eligible player should win, got eligible=%t winner=%t", s.Eligible, s.IsWinner)
	}
}

func TestComputeWeeklyStandings_ExactlyFiveAllCount(t *testing.T) {
	records := week("Malia", 1, 3, 4, 2, 5, 3)
	standings, err := ComputeWeeklyStandings(records, 1, models.WindowFor(monday))
	if err != nil {
		t.Fatalf("ComputeWeeklyStandings error: %v", err)
	}

	s := standingFor(t, standings, "Malia")
	if s.Total != 17 {
		t.Errorf("Total = %d, want 17 (all five scores count)", s.Total)
	}
}

func TestComputeWeeklyStandings_FewerThanFiveNeverWins(t *testing.T) {
	// Four perfect scores still do not qualify.
	records := append(week("Joanna", 1, 1, 1, 1, 1), week("Nanna", 1, 6, 6, 6, 6, 6)...)

	standings, err := ComputeWeeklyStandings(records, 1, models.WindowFor(monday))
	if err != nil {
		t.Fatalf("ComputeWeeklyStandings error: %v", err)
	}

	joanna := standingFor(t, standings, "Joanna")
	if joanna.IsWinner {
		t.Error("player with four games must never win")
	}
	if joanna.Eligible {
		t.Error("player with four games must not be eligible")
	}
	if joanna.GameCount != 4 {
		t.Errorf("GameCount = %d, want 4 (ineligible players still reported)", joanna.GameCount)
	}

	nanna := standingFor(t, standings, "Nanna")
	if !nanna.IsWinner {
		t.Error("only eligible player should win despite the higher total")
	}
}

func TestComputeWeeklyStandings_TiesAllWin(t *testing.T) {
	records := week("Brent", 1, 2, 3, 3, 3, 3)
	records = append(records, week("Malia", 1, 3, 3, 3, 3, 2)...)
	records = append(records, week("Joanna", 1, 3, 2, 3, 3, 3)...)
	records = append(records, week("Evan", 1, 4, 4, 4, 4, 4)...)

	standings, err := ComputeWeeklyStandings(records, 1, models.WindowFor(monday))
	if err != nil {
		t.Fatalf("ComputeWeeklyStandings error: %v", err)
	}

	for _, name := range []string{"Brent", "Joanna", "Malia"} {
		s := standingFor(t, standings, name)
		if s.Total != 14 {
			t.Errorf("%s Total = %d, want 14", name, s.Total)
		}
		if !s.IsWinner {
			t.Errorf("%s tied the minimum and must be a co-winner", name)
		}
	}
	if evan := standingFor(t, standings, "Evan"); evan.IsWinner {
		t.Error("Evan did not tie the minimum and must not win")
	}
}

func TestComputeWeeklyStandings_FailedScoresDoNotCount(t *testing.T) {
	// Five valid scores plus two failures; failures are tracked, not summed.
	records := week("Vox", 1, 3, models.FailedScore, 4, 3, 3, models.FailedScore, 4)

	standings, err := ComputeWeeklyStandings(records, 1, models.WindowFor(monday))
	if err != nil {
		t.Fatalf("ComputeWeeklyStandings error: %v", err)
	}

	s := standingFor(t, standings, "Vox")
	if s.Total != 3+3+3+4+4 {
		t.Errorf("Total = %d, want 17 (failed attempts excluded)", s.Total)
	}
	if s.FailedCount != 2 {
		t.Errorf("FailedCount = %d, want 2", s.FailedCount)
	}
	if s.GameCount != 5 {
		t.Errorf("GameCount = %d, want 5 valid games", s.GameCount)
	}
}

func TestComputeWeeklyStandings_FourValidPlusFailuresIneligible(t *testing.T) {
	records := week("Pants", 1, 2, 2, 2, 2, models.FailedScore, models.FailedScore, models.FailedScore)

	standings, err := ComputeWeeklyStandings(records, 1, models.WindowFor(monday))
	if err != nil {
		t.Fatalf("ComputeWeeklyStandings error: %v", err)
	}

	if s := standingFor(t, standings, "Pants"); s.Eligible || s.IsWinner {
		t.Errorf("four valid scores must stay ineligible, got eligible=%t winner=%t", s.Eligible, s.IsWinner)
	}
}

func TestComputeWeeklyStandings_EmptyInput(t *testing.T) {
	standings, err := ComputeWeeklyStandings(nil, 1, models.WindowFor(monday))
	if err != nil {
		t.Fatalf("empty input must not error, got: %v", err)
	}
	if len(standings) != 0 {
		t.Errorf("standings len = %d, want 0", len(standings))
	}
}

func TestComputeWeeklyStandings_FiltersLeagueAndWindow(t *testing.T) {
	records := week("Brent", 1, 3, 3, 3, 3, 3)
	// Same player in another league and outside the window; both ignored.
	records = append(records, week("Brent", 2, 1, 1, 1, 1, 1)...)
	records = append(records, models.ScoreRecord{
		Player: "Brent", LeagueID: 1, Score: 1,
		PuzzleNumber: models.PuzzleNumberFor(monday.AddDate(0, 0, -1)),
		Date:         monday.AddDate(0, 0, -1),
	})

	standings, err := ComputeWeeklyStandings(records, 1, models.WindowFor(monday))
	if err != nil {
		t.Fatalf("ComputeWeeklyStandings error: %v", err)
	}
	if len(standings) != 1 {
		t.Fatalf("standings len = %d, want 1", len(standings))
	}
	if s := standings[0]; s.Total != 15 || s.GameCount != 5 {
		t.Errorf("got total=%d games=%d, want 15/5 (other league and prior week ignored)", s.Total, s.GameCount)
	}
}

func TestComputeWeeklyStandings_DuplicateRecordFailsFast(t *testing.T) {
	records := week("Brent", 1, 3, 3)
	records = append(records, records[0])

	_, err := ComputeWeeklyStandings(records, 1, models.WindowFor(monday))
	if err == nil {
		t.Fatal("duplicate player+puzzle must be rejected")
	}
	if !strings.Contains(err.Error(), "Brent") {
		t.Errorf("error should name the offending record, got: %v", err)
	}
}

func TestComputeWeeklyStandings_InvalidScoreFailsFast(t *testing.T) {
	records := week("Brent", 1, 3)
	records[0].Score = -2

	_, err := ComputeWeeklyStandings(records, 1, models.WindowFor(monday))
	if err == nil {
		t.Fatal("out-of-range score must be rejected")
	}
}

func TestComputeWeeklyStandings_Idempotent(t *testing.T) {
	records := append(week("Brent", 1, 3, 4, 2, 5, 3, 6), week("Malia", 1, 2, 2, 2)...)
	window := models.WindowFor(monday)

	first, err := ComputeWeeklyStandings(records, 1, window)
	if err != nil {
		t.Fatalf("first run error: %v", err)
	}
	second, err := ComputeWeeklyStandings(records, 1, window)
	if err != nil {
		t.Fatalf("second run error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestComputeWeeklyStandings_DeterministicOrder(t *testing.T) {
	records := week("Zoe", 1, 3, 3, 3, 3, 2)                     // 14
	records = append(records, week("Ana", 1, 2, 3, 3, 3, 3)...)  // 14
	records = append(records, week("Will", 1, 4, 4, 4, 4, 4)...) // 20
	records = append(records, week("Kaylie", 1, 1, 1)...)        // ineligible

	standings, err := ComputeWeeklyStandings(records, 1, models.WindowFor(monday))
	if err != nil {
		t.Fatalf("ComputeWeeklyStandings error: %v", err)
	}

	var order []string
	for _, s := range standings {
		order = append(order, s.Player)
	}
	want := []string{"Ana", "Zoe", "Will", "Kaylie"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestSeasonWinners_TalliesAcrossWeeks(t *testing.T) {
	week1 := append(week("Brent", 1, 2, 2, 2, 2, 2), week("Malia", 1, 3, 3, 3, 3, 3)...)

	nextMonday := monday.AddDate(0, 0, 7)
	var week2 []models.ScoreRecord
	for i := 0; i < 5; i++ {
		day := nextMonday.AddDate(0, 0, i)
		week2 = append(week2,
			models.ScoreRecord{Player: "Brent", LeagueID: 1, PuzzleNumber: models.PuzzleNumberFor(day), Date: day, Score: 2},
			models.ScoreRecord{Player: "Malia", LeagueID: 1, PuzzleNumber: models.PuzzleNumberFor(day), Date: day, Score: 2},
		)
	}

	weeks, err := SeasonFromRecords(append(week1, week2...), 1)
	if err != nil {
		t.Fatalf("SeasonFromRecords error: %v", err)
	}
	if len(weeks) != 2 {
		t.Fatalf("weeks = %d, want 2", len(weeks))
	}

	winners := SeasonWinners(weeks)
	if len(winners) != 2 {
		t.Fatalf("winners = %d, want 2 (co-winner of week two counts)", len(winners))
	}
	if winners[0].Player != "Brent" || winners[0].Wins != 2 {
		t.Errorf("leader = %s/%d, want Brent/2", winners[0].Player, winners[0].Wins)
	}
	if winners[1].Player != "Malia" || winners[1].Wins != 1 {
		t.Errorf("runner-up = %s/%d, want Malia/1", winners[1].Player, winners[1].Wins)
	}
	if want := models.FormatWeekLabel(monday, 10); winners[0].Weeks[0] != want {
		t.Errorf("week label = %q, want %q", winners[0].Weeks[0], want)
	}
}

func TestAllTimeStats(t *testing.T) {
	records := week("Brent", 1, 2, 4, models.FailedScore)
	records = append(records, week("Nanna", 1, models.FailedScore)...)

	got := AllTimeStats(records, 1)
	if len(got) != 2 {
		t.Fatalf("stats len = %d, want 2", len(got))
	}

	brent := got[0]
	if brent.Player != "Brent" {
		t.Fatalf("first stat = %s, want Brent (players with averages sort first)", brent.Player)
	}
	if brent.GamesPlayed != 3 || brent.FailedCount != 1 {
		t.Errorf("games=%d failed=%d, want 3/1", brent.GamesPlayed, brent.FailedCount)
	}
	if !brent.HasAverage || brent.Average != 3.0 {
		t.Errorf("average = %v (has=%t), want 3.0 over valid scores only", brent.Average, brent.HasAverage)
	}
	if brent.BestScore != 2 {
		t.Errorf("best = %d, want 2", brent.BestScore)
	}

	nanna := got[1]
	if nanna.HasAverage {
		t.Error("failed-only player must have no average")
	}
	if nanna.GamesPlayed != 1 || nanna.FailedCount != 1 {
		t.Errorf("games=%d failed=%d, want 1/1", nanna.GamesPlayed, nanna.FailedCount)
	}
}
