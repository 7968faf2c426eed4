// Package stats computes weekly winners, season tallies and all-time
// statistics from recorded scores.
package stats

import (
	"fmt"
	"log"
	"sort"

	"github.com/myusername/wordle-league-tracker/pkg/models"
)

// MinWeeklyGames is the number of valid scores a player needs in a weekly
// window to be eligible for the win. It is also how many of their best scores
// make up the weekly total.
const MinWeeklyGames = 5

// ComputeWeeklyStandings determines the standings for one league and one
// weekly window. A player is eligible only with at least MinWeeklyGames
// non-failed scores in the window; their total is the sum of their
// MinWeeklyGames lowest scores. Every eligible player sharing the minimum
// total is a winner. Players with fewer scores are reported with
// IsWinner=false so leaderboards can still show them.
//
// The computation is pure: it never mutates records and is safe to rerun or
// run concurrently for different league/window pairs. Malformed input (a
// score outside the valid range, or duplicate player+puzzle rows) fails fast
// with an error naming the offending record.
func ComputeWeeklyStandings(records []models.ScoreRecord, leagueID int, window models.WeeklyWindow) ([]models.WeeklyStanding, error) {
	type playerScores struct {
		valid  []int
		failed int
	}

	seen := make(map[string]bool)
	byPlayer := make(map[string]*playerScores)

	for _, r := range records {
		if r.LeagueID != leagueID || !window.Contains(r.Date) {
			continue
		}
		if err := models.ValidateScore(r.Score); err != nil {
			return nil, fmt.Errorf("record for %s, puzzle %d: %w", r.Player, r.PuzzleNumber, err)
		}
		key := fmt.Sprintf("%s/%d", r.Player, r.PuzzleNumber)
		if seen[key] {
			return nil, fmt.Errorf("duplicate score for %s on puzzle %d in league %d", r.Player, r.PuzzleNumber, leagueID)
		}
		seen[key] = true

		ps := byPlayer[r.Player]
		if ps == nil {
			ps = &playerScores{}
			byPlayer[r.Player] = ps
		}
		if r.Failed() {
			ps.failed++
		} else {
			ps.valid = append(ps.valid, r.Score)
		}
	}

	standings := make([]models.WeeklyStanding, 0, len(byPlayer))
	minTotal := 0
	haveEligible := false

	for name, ps := range byPlayer {
		s := models.WeeklyStanding{
			Player:      name,
			LeagueID:    leagueID,
			Window:      window,
			GameCount:   len(ps.valid),
			FailedCount: ps.failed,
		}
		if len(ps.valid) >= MinWeeklyGames {
			sort.Ints(ps.valid)
			best := ps.valid[:MinWeeklyGames]
			total := 0
			for _, v := range best {
				total += v
			}
			s.Eligible = true
			s.Total = total
			s.BestScores = append([]int(nil), best...)
			if !haveEligible || total < minTotal {
				minTotal = total
				haveEligible = true
			}
		}
		standings = append(standings, s)
	}

	if haveEligible {
		for i := range standings {
			if standings[i].Eligible && standings[i].Total == minTotal {
				standings[i].IsWinner = true
			}
		}
	}

	// Eligible players first by ascending total, name breaking ties for a
	// deterministic order; ineligible players follow, by name.
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Eligible != b.Eligible {
			return a.Eligible
		}
		if a.Eligible && a.Total != b.Total {
			return a.Total < b.Total
		}
		return a.Player < b.Player
	})

	return standings, nil
}

// WeekOutcome pairs a weekly window with its computed standings.
type WeekOutcome struct {
	Window    models.WeeklyWindow
	Standings []models.WeeklyStanding
}

// SeasonFromRecords splits a league's records into weekly windows and computes
// the standings for each. Windows are ordered oldest first.
func SeasonFromRecords(records []models.ScoreRecord, leagueID int) ([]WeekOutcome, error) {
	windows := make(map[string]models.WeeklyWindow)
	for _, r := range records {
		if r.LeagueID != leagueID {
			continue
		}
		w := models.WindowFor(r.Date)
		windows[w.String()] = w
	}

	ordered := make([]models.WeeklyWindow, 0, len(windows))
	for _, w := range windows {
		ordered = append(ordered, w)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start.Before(ordered[j].Start) })

	outcomes := make([]WeekOutcome, 0, len(ordered))
	for _, w := range ordered {
		standings, err := ComputeWeeklyStandings(records, leagueID, w)
		if err != nil {
			return nil, fmt.Errorf("week %s: %w", w, err)
		}
		outcomes = append(outcomes, WeekOutcome{Window: w, Standings: standings})
	}
	return outcomes, nil
}

// SeasonWinners tallies weekly wins across the given weeks. Every co-winner of
// a tied week is credited with a full win. Results are ordered by win count
// descending, then player name.
func SeasonWinners(weeks []WeekOutcome) []models.SeasonWinner {
	wins := make(map[string]*models.SeasonWinner)

	for _, week := range weeks {
		for _, s := range week.Standings {
			if !s.IsWinner {
				continue
			}
			sw := wins[s.Player]
			if sw == nil {
				sw = &models.SeasonWinner{Player: s.Player}
				wins[s.Player] = sw
			}
			sw.Wins++
			sw.Weeks = append(sw.Weeks, models.FormatWeekLabel(week.Window.Start, s.Total))
			log.Printf("Weekly win for %s: %s", s.Player, models.FormatWeekLabel(week.Window.Start, s.Total))
		}
	}

	out := make([]models.SeasonWinner, 0, len(wins))
	for _, sw := range wins {
		out = append(out, *sw)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Player < out[j].Player
	})
	return out
}

// AllTimeStats aggregates every record of a league per player. Failed attempts
// count toward games and the failed total but are excluded from the average
// and best score. Results are ordered by average ascending, with failed-only
// players last, names breaking ties.
func AllTimeStats(records []models.ScoreRecord, leagueID int) []models.AllTimeStat {
	type agg struct {
		sum    int
		count  int
		failed int
		best   int
	}
	byPlayer := make(map[string]*agg)

	for _, r := range records {
		if r.LeagueID != leagueID {
			continue
		}
		a := byPlayer[r.Player]
		if a == nil {
			a = &agg{}
			byPlayer[r.Player] = a
		}
		if r.Failed() {
			a.failed++
			continue
		}
		a.sum += r.Score
		a.count++
		if a.best == 0 || r.Score < a.best {
			a.best = r.Score
		}
	}

	out := make([]models.AllTimeStat, 0, len(byPlayer))
	for name, a := range byPlayer {
		st := models.AllTimeStat{
			Player:      name,
			GamesPlayed: a.count + a.failed,
			FailedCount: a.failed,
			BestScore:   a.best,
		}
		if a.count > 0 {
			st.Average = float64(a.sum) / float64(a.count)
			st.HasAverage = true
		}
		out = append(out, st)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.HasAverage != b.HasAverage {
			return a.HasAverage
		}
		if a.HasAverage && a.Average != b.Average {
			return a.Average < b.Average
		}
		return a.Player < b.Player
	})
	return out
}
