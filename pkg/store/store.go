// Package store persists players and scores in a SQLite database, the
// system of record for the league.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/myusername/wordle-league-tracker/pkg/config"
	"github.com/myusername/wordle-league-tracker/pkg/models"
)

const dateFormat = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS players (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    name         TEXT NOT NULL,
    league_id    INTEGER NOT NULL,
    phone_number TEXT,
    UNIQUE (name, league_id)
);
CREATE TABLE IF NOT EXISTS scores (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    player_id     INTEGER NOT NULL REFERENCES players(id),
    puzzle_number INTEGER NOT NULL,
    score         INTEGER NOT NULL,
    date          TEXT NOT NULL,
    emoji_pattern TEXT,
    UNIQUE (player_id, puzzle_number)
);
`

// Store wraps the SQLite database holding players and scores.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at the given path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SeedPlayers inserts every configured player that is not already present.
// Existing players keep their rows so score history survives config edits.
func (s *Store) SeedPlayers(leagues []config.LeagueConfig) error {
	for _, league := range leagues {
		for phone, name := range league.Phones {
			res, err := s.db.Exec(
				`INSERT OR IGNORE INTO players (name, league_id, phone_number) VALUES (?, ?, ?)`,
				name, league.ID, phone,
			)
			if err != nil {
				return fmt.Errorf("error seeding player %s in league %d: %w", name, league.ID, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				log.Printf("Added player %s to league %d", name, league.ID)
			}
		}
	}
	return nil
}

// PlayerID returns the row ID for a player name within a league.
func (s *Store) PlayerID(name string, leagueID int) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT id FROM players WHERE name = ? AND league_id = ?`, name, leagueID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("player %q not found in league %d", name, leagueID)
	}
	if err != nil {
		return 0, fmt.Errorf("error looking up player %q: %w", name, err)
	}
	return id, nil
}

// Players returns every player registered to a league, ordered by name.
func (s *Store) Players(leagueID int) ([]models.Player, error) {
	rows, err := s.db.Query(
		`SELECT id, name, league_id, COALESCE(phone_number, '') FROM players WHERE league_id = ? ORDER BY name`,
		leagueID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying players for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.LeagueID, &p.Phone); err != nil {
			return nil, fmt.Errorf("error scanning player row: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// SaveScore inserts or updates one score. An existing row for the same player
// and puzzle is overwritten, but a stored emoji pattern is kept when the new
// record arrives without one.
func (s *Store) SaveScore(rec models.ScoreRecord) error {
	if err := models.ValidateScore(rec.Score); err != nil {
		return fmt.Errorf("score for %s, puzzle %d: %w", rec.Player, rec.PuzzleNumber, err)
	}

	playerID, err := s.PlayerID(rec.Player, rec.LeagueID)
	if err != nil {
		return err
	}

	date := rec.Date
	if date.IsZero() {
		date = models.DateForPuzzle(rec.PuzzleNumber)
	}

	var existingID int64
	var existingPattern sql.NullString
	err = s.db.QueryRow(
		`SELECT id, emoji_pattern FROM scores WHERE player_id = ? AND puzzle_number = ?`,
		playerID, rec.PuzzleNumber,
	).Scan(&existingID, &existingPattern)

	switch {
	case err == sql.ErrNoRows:
		log.Printf("Inserting new score for %s (league %d) on puzzle %d", rec.Player, rec.LeagueID, rec.PuzzleNumber)
		_, err = s.db.Exec(
			`INSERT INTO scores (player_id, puzzle_number, score, date, emoji_pattern) VALUES (?, ?, ?, ?, ?)`,
			playerID, rec.PuzzleNumber, rec.Score, date.Format(dateFormat), rec.EmojiPattern,
		)
	case err != nil:
		return fmt.Errorf("error checking existing score: %w", err)
	default:
		pattern := rec.EmojiPattern
		if pattern == "" && existingPattern.Valid {
			pattern = existingPattern.String
		}
		log.Printf("Updating existing score for %s (league %d) on puzzle %d", rec.Player, rec.LeagueID, rec.PuzzleNumber)
		_, err = s.db.Exec(
			`UPDATE scores SET score = ?, date = ?, emoji_pattern = ? WHERE id = ?`,
			rec.Score, date.Format(dateFormat), pattern, existingID,
		)
	}
	if err != nil {
		return fmt.Errorf("error saving score for %s, puzzle %d: %w", rec.Player, rec.PuzzleNumber, err)
	}
	return nil
}

// ScoresForLeague returns the league's records inside a weekly window as a
// single consistent snapshot (one query, no mutation).
func (s *Store) ScoresForLeague(leagueID int, window models.WeeklyWindow) ([]models.ScoreRecord, error) {
	first, last := window.PuzzleRange()
	return s.queryScores(
		`SELECT p.name, p.league_id, s.puzzle_number, s.score, s.date, COALESCE(s.emoji_pattern, '')
         FROM scores s JOIN players p ON s.player_id = p.id
         WHERE p.league_id = ? AND s.puzzle_number BETWEEN ? AND ?
         ORDER BY p.name, s.puzzle_number`,
		leagueID, first, last,
	)
}

// AllScoresForLeague returns every record for a league.
func (s *Store) AllScoresForLeague(leagueID int) ([]models.ScoreRecord, error) {
	return s.queryScores(
		`SELECT p.name, p.league_id, s.puzzle_number, s.score, s.date, COALESCE(s.emoji_pattern, '')
         FROM scores s JOIN players p ON s.player_id = p.id
         WHERE p.league_id = ?
         ORDER BY p.name, s.puzzle_number`,
		leagueID,
	)
}

// ScoresForPuzzle returns one league's records for a single puzzle.
func (s *Store) ScoresForPuzzle(leagueID, puzzleNumber int) ([]models.ScoreRecord, error) {
	return s.queryScores(
		`SELECT p.name, p.league_id, s.puzzle_number, s.score, s.date, COALESCE(s.emoji_pattern, '')
         FROM scores s JOIN players p ON s.player_id = p.id
         WHERE p.league_id = ? AND s.puzzle_number = ?
         ORDER BY p.name`,
		leagueID, puzzleNumber,
	)
}

// RecentScores returns all records from the past N days, grouped by league.
func (s *Store) RecentScores(days int) (map[int][]models.ScoreRecord, error) {
	from := time.Now().UTC().AddDate(0, 0, -days).Format(dateFormat)
	records, err := s.queryScores(
		`SELECT p.name, p.league_id, s.puzzle_number, s.score, s.date, COALESCE(s.emoji_pattern, '')
         FROM scores s JOIN players p ON s.player_id = p.id
         WHERE s.date >= ?
         ORDER BY p.league_id, p.name, s.puzzle_number`,
		from,
	)
	if err != nil {
		return nil, err
	}

	byLeague := make(map[int][]models.ScoreRecord)
	for _, r := range records {
		byLeague[r.LeagueID] = append(byLeague[r.LeagueID], r)
	}
	return byLeague, nil
}

func (s *Store) queryScores(query string, args ...any) ([]models.ScoreRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying scores: %w", err)
	}
	defer rows.Close()

	var records []models.ScoreRecord
	for rows.Next() {
		var r models.ScoreRecord
		var date string
		if err := rows.Scan(&r.Player, &r.LeagueID, &r.PuzzleNumber, &r.Score, &date, &r.EmojiPattern); err != nil {
			return nil, fmt.Errorf("error scanning score row: %w", err)
		}
		r.Date, err = time.ParseInLocation(dateFormat, date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("error parsing date %q: %w", date, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
