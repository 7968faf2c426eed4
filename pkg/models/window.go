package models

import "time"

// puzzleEpoch is the release date of puzzle #1.
var puzzleEpoch = time.Date(2021, time.June, 19, 0, 0, 0, 0, time.UTC)

// PuzzleNumberFor returns the puzzle number published on the given date.
func PuzzleNumberFor(date time.Time) int {
	d := truncateToDay(date)
	return int(d.Sub(puzzleEpoch).Hours()/24) + 1
}

// DateForPuzzle returns the publication date of the given puzzle number.
func DateForPuzzle(number int) time.Time {
	return puzzleEpoch.AddDate(0, 0, number-1)
}

// WeeklyWindow is an inclusive Monday-to-Sunday date range. Derived, never
// stored; computed from any date by rounding down to the most recent Monday.
type WeeklyWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WindowFor returns the weekly window containing the given date.
func WindowFor(date time.Time) WeeklyWindow {
	d := truncateToDay(date)
	// time.Weekday puts Sunday at 0; shift so Monday is 0.
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return WeeklyWindow{Start: start, End: start.AddDate(0, 0, 6)}
}

// Contains reports whether the date falls inside the window.
func (w WeeklyWindow) Contains(date time.Time) bool {
	d := truncateToDay(date)
	return !d.Before(w.Start) && !d.After(w.End)
}

// PuzzleRange returns the first and last puzzle numbers of the window.
func (w WeeklyWindow) PuzzleRange() (int, int) {
	return PuzzleNumberFor(w.Start), PuzzleNumberFor(w.End)
}

// String formats the window as "2025-08-04..2025-08-10".
func (w WeeklyWindow) String() string {
	return w.Start.Format("2006-01-02") + ".." + w.End.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
