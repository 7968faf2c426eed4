// Package models contains data structures for wordle league tracking
package models

import (
	"fmt"
	"strconv"
	"time"
)

// FailedScore is the numeric value stored for a failed attempt ("X/6").
// Failed attempts never count toward weekly totals but are tracked separately.
const FailedScore = 7

// MaxGuesses is the number of guesses allowed per puzzle.
const MaxGuesses = 6

// League is an independent group of players whose scores and standings are
// computed separately from other groups.
type League struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// Dir is the subdirectory of the exported website this league lives in.
	// The primary league uses the site root (empty Dir).
	Dir string `json:"dir"`
}

// Player belongs to exactly one league. The same person may appear in several
// leagues as separate Player rows.
type Player struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LeagueID int    `json:"league_id"`
	Phone    string `json:"phone,omitempty"`
}

// ScoreRecord is one player's result for one puzzle in one league.
// Immutable once recorded; one record per (player, league, puzzle).
type ScoreRecord struct {
	Player       string    `json:"player"`
	LeagueID     int       `json:"league_id"`
	PuzzleNumber int       `json:"puzzle_number"`
	Date         time.Time `json:"date"`
	Score        int       `json:"score"`
	EmojiPattern string    `json:"emoji_pattern,omitempty"`
}

// Failed reports whether the record is a failed attempt.
func (r ScoreRecord) Failed() bool {
	return r.Score == FailedScore
}

// DisplayScore returns the score as shown on leaderboards: "1".."6" or "X".
func (r ScoreRecord) DisplayScore() string {
	if r.Failed() {
		return "X"
	}
	return strconv.Itoa(r.Score)
}

// ParseScore converts a raw score token ("1".."6" or "X") to its stored value.
func ParseScore(raw string) (int, error) {
	if raw == "X" || raw == "x" {
		return FailedScore, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid score %q: %w", raw, err)
	}
	if err := ValidateScore(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ValidateScore checks that a stored score is 1..6 or the failed sentinel.
func ValidateScore(score int) error {
	if score < 1 || score > FailedScore {
		return fmt.Errorf("score %d out of range 1-%d", score, FailedScore)
	}
	return nil
}

// WeeklyStanding is one player's computed position for a league and window.
// Always re-derivable from score records; never stored as independent truth.
type WeeklyStanding struct {
	Player      string       `json:"player"`
	LeagueID    int          `json:"league_id"`
	Window      WeeklyWindow `json:"window"`
	Total       int          `json:"total"`
	GameCount   int          `json:"game_count"`
	FailedCount int          `json:"failed_count"`
	// BestScores are the scores that made up Total, ascending. Empty for
	// ineligible players.
	BestScores []int `json:"best_scores,omitempty"`
	Eligible   bool  `json:"eligible"`
	IsWinner   bool  `json:"is_winner"`
}

// SeasonWinner is a player's accumulated weekly wins across a season.
type SeasonWinner struct {
	Player string `json:"player"`
	Wins   int    `json:"wins"`
	// Weeks holds one formatted label per win, e.g. "Aug 4th - (14)".
	Weeks []string `json:"weeks"`
}

// AllTimeStat is a player's aggregate over every recorded score.
type AllTimeStat struct {
	Player      string  `json:"player"`
	GamesPlayed int     `json:"games_played"`
	FailedCount int     `json:"failed_count"`
	Average     float64 `json:"average"`
	// HasAverage is false for players whose only records are failed attempts.
	HasAverage bool `json:"has_average"`
	BestScore  int  `json:"best_score,omitempty"`
}

// FormatWeekLabel formats a winning week as "Aug 4th - (14)" where the date is
// the window's Monday and 14 is the winning total.
func FormatWeekLabel(monday time.Time, total int) string {
	day := monday.Day()
	return fmt.Sprintf("%s %d%s - (%d)", monday.Format("Jan"), day, ordinalSuffix(day), total)
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
