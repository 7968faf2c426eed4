// Package main is the entry point for the wordle-league-tracker application
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/myusername/wordle-league-tracker/internal/server"
	"github.com/myusername/wordle-league-tracker/internal/utils"
	"github.com/myusername/wordle-league-tracker/pkg/config"
	"github.com/myusername/wordle-league-tracker/pkg/export"
	"github.com/myusername/wordle-league-tracker/pkg/models"
	"github.com/myusername/wordle-league-tracker/pkg/parser"
	"github.com/myusername/wordle-league-tracker/pkg/scraper"
	"github.com/myusername/wordle-league-tracker/pkg/stats"
	"github.com/myusername/wordle-league-tracker/pkg/store"
)

// Version is set during build using ldflags
var (
	version = "dev"
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version information and exit")
	configFlag := flag.String("config", "league_config.json", "Path to the league configuration file")
	modeFlag := flag.String("mode", "export", "Mode: extract | backfill | winners | export | serve | daemon")
	dbFlag := flag.String("db", "", "Database path (default: WORDLE_DB_PATH or wordle_league.db)")
	outputFlag := flag.String("output", "", "Output directory for the exported site (default: WORDLE_EXPORT_DIR)")
	leagueFlag := flag.Int("league", 0, "League ID (required for backfill; 0 means all leagues elsewhere)")
	dateFlag := flag.String("date", "", "Date inside the target week, YYYY-MM-DD (default: today)")
	pdfFlag := flag.String("pdf", "", "Archived recap PDF to backfill scores from")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("wordle-league-tracker version %s\n", version)
		return
	}

	// Setup logging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Wordle League Tracker starting...")
	log.Printf("Version: %s", version)

	env := config.LoadEnv()
	if *dbFlag != "" {
		env.DBPath = *dbFlag
	}
	if *outputFlag != "" {
		env.ExportDir = *outputFlag
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	st, err := store.Open(env.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", env.DBPath, err)
	}
	defer st.Close()

	if err := st.SeedPlayers(cfg.Leagues); err != nil {
		log.Fatalf("Failed to seed players: %v", err)
	}

	targetDate := time.Now().UTC()
	if *dateFlag != "" {
		targetDate, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatalf("Invalid -date %q: %v", *dateFlag, err)
		}
	}

	switch *modeFlag {
	case "extract":
		if err := runExtract(cfg, env, st); err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
	case "backfill":
		if *leagueFlag <= 0 {
			log.Fatalf("Backfill requires -league")
		}
		if *pdfFlag == "" {
			log.Fatalf("Backfill requires -pdf")
		}
		if err := runBackfill(st, *pdfFlag, *leagueFlag); err != nil {
			log.Fatalf("Backfill failed: %v", err)
		}
	case "winners":
		if err := runWinners(cfg, st, env.ExportDir, targetDate, *leagueFlag); err != nil {
			log.Fatalf("Winner computation failed: %v", err)
		}
	case "export":
		if err := runExport(cfg, st, env.ExportDir, targetDate); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
	case "serve":
		srv := server.New(st, cfg, env.ExportDir)
		log.Fatal(srv.ListenAndServe(env.ListenAddr))
	case "daemon":
		runDaemon(cfg, env, st)
	default:
		log.Fatalf("Unknown mode %q", *modeFlag)
	}

	log.Println("Done")
}

// runExtract fetches every league's conversation export, parses the score
// messages in it and persists them. Only the current and previous day's
// puzzles are accepted; older numbers in scrollback are stale.
func runExtract(cfg *config.Config, env config.Env, st *store.Store) error {
	today := models.PuzzleNumberFor(time.Now().UTC())
	yesterday := today - 1
	mappings := cfg.PhoneMappings()

	htmlDir := filepath.Join(env.ExportDir, "html")
	if err := os.MkdirAll(htmlDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", htmlDir, err)
	}

	for _, league := range cfg.Leagues {
		url := league.SourceURL
		if url == "" && env.SourceBase != "" {
			url = env.SourceBase + "/" + league.Dir
		}
		if url == "" {
			log.Printf("League %q has no source URL, skipping", league.Name)
			continue
		}

		log.Printf("Extracting scores for league %q from %s", league.Name, url)
		htmlContent, err := scraper.FetchURL(url, env.SourceToken)
		if err != nil {
			log.Printf("Error fetching export for league %q: %v", league.Name, err)
			continue
		}

		// Archive the raw export so parsing issues can be replayed later.
		archivePath := filepath.Join(htmlDir, fmt.Sprintf("league_%d.html", league.ID))
		if err := scraper.SaveContentToFile(archivePath, htmlContent); err != nil {
			log.Printf("Error archiving export for league %q: %v", league.Name, err)
		}

		saved := 0
		for _, msg := range scraper.ExtractMessages(htmlContent) {
			parsed, err := parser.ParseScoreMessage(msg.Text)
			if err != nil {
				log.Printf("Skipping malformed message in league %q: %v", league.Name, err)
				continue
			}
			if parsed == nil {
				continue
			}
			if parsed.PuzzleNumber != today && parsed.PuzzleNumber != yesterday {
				log.Printf("Skipping stale puzzle %d (today is %d)", parsed.PuzzleNumber, today)
				continue
			}

			player, ok := parser.PlayerForPhone(msg.Sender, league.ID, mappings)
			if !ok {
				log.Printf("No player mapping for sender %q in league %q", msg.Sender, league.Name)
				continue
			}

			rec := models.ScoreRecord{
				Player:       player,
				LeagueID:     league.ID,
				PuzzleNumber: parsed.PuzzleNumber,
				Date:         models.DateForPuzzle(parsed.PuzzleNumber),
				Score:        parsed.Score,
				EmojiPattern: parsed.EmojiPattern,
			}
			if err := st.SaveScore(rec); err != nil {
				log.Printf("Error saving score for %s: %v", player, err)
				continue
			}
			saved++
		}
		log.Printf("Saved %d scores for league %q", saved, league.Name)
	}
	return nil
}

// runBackfill recovers historical scores from an archived recap PDF.
func runBackfill(st *store.Store, pdfPath string, leagueID int) error {
	log.Printf("Backfilling league %d from %s", leagueID, pdfPath)

	text, err := parser.ReadPDFText(pdfPath)
	if err != nil {
		return fmt.Errorf("error reading recap PDF: %w", err)
	}

	saved := 0
	for _, bf := range parser.ExtractScoresFromText(text) {
		rec := models.ScoreRecord{
			Player:       bf.Player,
			LeagueID:     leagueID,
			PuzzleNumber: bf.Score.PuzzleNumber,
			Date:         models.DateForPuzzle(bf.Score.PuzzleNumber),
			Score:        bf.Score.Score,
			EmojiPattern: bf.Score.EmojiPattern,
		}
		if err := st.SaveScore(rec); err != nil {
			log.Printf("Error saving backfilled score for %s: %v", bf.Player, err)
			continue
		}
		saved++
	}
	log.Printf("Backfilled %d scores into league %d", saved, leagueID)
	return nil
}

// runWinners prints the weekly standings for the window containing date and
// drops a CSV copy next to the exported site.
func runWinners(cfg *config.Config, st *store.Store, outputDir string, date time.Time, leagueID int) error {
	window := models.WindowFor(date)
	for _, league := range cfg.Leagues {
		if leagueID > 0 && league.ID != leagueID {
			continue
		}

		records, err := st.ScoresForLeague(league.ID, window)
		if err != nil {
			return fmt.Errorf("league %q: %w", league.Name, err)
		}
		standings, err := stats.ComputeWeeklyStandings(records, league.ID, window)
		if err != nil {
			return fmt.Errorf("league %q: %w", league.Name, err)
		}
		utils.DisplayWeeklyStandings(league.Name, window, standings)

		all, err := st.AllScoresForLeague(league.ID)
		if err != nil {
			return fmt.Errorf("league %q: %w", league.Name, err)
		}
		weeks, err := stats.SeasonFromRecords(all, league.ID)
		if err != nil {
			return fmt.Errorf("league %q: %w", league.Name, err)
		}
		utils.DisplaySeasonWinners(league.Name, stats.SeasonWinners(weeks))

		csvDir := filepath.Join(outputDir, league.Dir, "csv")
		if err := os.MkdirAll(csvDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", csvDir, err)
		}
		csvPath := filepath.Join(csvDir, fmt.Sprintf("standings_%s.csv", window.Start.Format("2006-01-02")))
		if err := utils.SaveStandingsToCSV(window, standings, csvPath); err != nil {
			log.Printf("Error saving CSV for league %q: %v", league.Name, err)
		} else {
			log.Printf("Saved standings for league %q to %s", league.Name, csvPath)
		}
	}
	return nil
}

// runExport regenerates the static site for every league.
func runExport(cfg *config.Config, st *store.Store, outputDir string, date time.Time) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	exporter := &export.Exporter{OutputDir: outputDir}

	window := models.WindowFor(date)
	puzzle := models.PuzzleNumberFor(date)

	for _, league := range cfg.Leagues {
		log.Printf("Exporting league %q", league.Name)

		all, err := st.AllScoresForLeague(league.ID)
		if err != nil {
			return fmt.Errorf("league %q: %w", league.Name, err)
		}

		standings, err := stats.ComputeWeeklyStandings(all, league.ID, window)
		if err != nil {
			return fmt.Errorf("league %q: %w", league.Name, err)
		}

		weeks, err := stats.SeasonFromRecords(all, league.ID)
		if err != nil {
			return fmt.Errorf("league %q: %w", league.Name, err)
		}

		daily, err := dailyRows(st, league.ID, puzzle)
		if err != nil {
			return fmt.Errorf("league %q: %w", league.Name, err)
		}

		data := export.LeagueData{
			League:       models.League{ID: league.ID, Name: league.Name, Dir: league.Dir},
			GeneratedAt:  time.Now().UTC(),
			PuzzleNumber: puzzle,
			Window:       window,
			Daily:        daily,
			Weekly:       standings,
			AllTime:      stats.AllTimeStats(all, league.ID),
			Season:       stats.SeasonWinners(weeks),
		}
		if err := exporter.ExportLeague(data); err != nil {
			return fmt.Errorf("league %q: %w", league.Name, err)
		}
	}
	return nil
}

// dailyRows lists every registered player with today's result, blank when a
// player has not played yet.
func dailyRows(st *store.Store, leagueID, puzzle int) ([]export.DailyRow, error) {
	players, err := st.Players(leagueID)
	if err != nil {
		return nil, err
	}
	records, err := st.ScoresForPuzzle(leagueID, puzzle)
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[string]models.ScoreRecord, len(records))
	for _, r := range records {
		byPlayer[r.Player] = r
	}

	rows := make([]export.DailyRow, 0, len(players))
	for _, p := range players {
		row := export.DailyRow{Player: p.Name}
		if r, ok := byPlayer[p.Name]; ok {
			row.Score = r.DisplayScore()
			row.EmojiPattern = r.EmojiPattern
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// runDaemon serves the site while re-running extract+export on the configured
// cron schedule, pushing a refresh to connected pages after each publish.
func runDaemon(cfg *config.Config, env config.Env, st *store.Store) {
	srv := server.New(st, cfg, env.ExportDir)

	publish := func() {
		if err := runExtract(cfg, env, st); err != nil {
			log.Printf("Scheduled extraction failed: %v", err)
		}
		if err := runExport(cfg, st, env.ExportDir, time.Now().UTC()); err != nil {
			log.Printf("Scheduled export failed: %v", err)
			return
		}
		srv.NotifyPublished()

		if recent, err := st.RecentScores(7); err == nil {
			for leagueID, records := range recent {
				log.Printf("League %d has %d scores in the past week", leagueID, len(records))
			}
		}
	}

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@every 30m"
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, publish); err != nil {
		log.Fatalf("Invalid schedule %q: %v", schedule, err)
	}
	log.Printf("Daemon running on schedule %q", schedule)

	publish()
	c.Start()

	log.Fatal(srv.ListenAndServe(env.ListenAddr))
}
