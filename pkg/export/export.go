// Package export renders the static leaderboard site, JSON API files and CSV
// summaries that downstream pages consume.
package export

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/myusername/wordle-league-tracker/pkg/models"
)

// DailyRow is one line of the daily table.
type DailyRow struct {
	Player       string `json:"player"`
	Score        string `json:"score"`
	EmojiPattern string `json:"emoji_pattern,omitempty"`
}

// LeagueData is everything the exporter renders for one league.
type LeagueData struct {
	League       models.League           `json:"league"`
	GeneratedAt  time.Time               `json:"generated_at"`
	PuzzleNumber int                     `json:"puzzle_number"`
	Window       models.WeeklyWindow     `json:"window"`
	Daily        []DailyRow              `json:"daily"`
	Weekly       []models.WeeklyStanding `json:"weekly"`
	AllTime      []models.AllTimeStat    `json:"all_time"`
	Season       []models.SeasonWinner   `json:"season"`
}

// Exporter writes a league's pages under OutputDir. The primary league (empty
// Dir) renders at the site root, others under their subdirectory.
type Exporter struct {
	OutputDir string
}

// ExportLeague writes index.html, the JSON API file and the weekly CSV for
// one league.
func (e *Exporter) ExportLeague(data LeagueData) error {
	dir := filepath.Join(e.OutputDir, data.League.Dir)
	for _, sub := range []string{dir, filepath.Join(dir, "api"), filepath.Join(dir, "csv")} {
		if err := os.MkdirAll(sub, 0755); err != nil {
			return fmt.Errorf("error creating directory %s: %w", sub, err)
		}
	}

	if err := e.writeIndex(dir, data); err != nil {
		return err
	}
	if err := e.writeAPI(dir, data); err != nil {
		return err
	}
	if err := e.writeCSV(dir, data); err != nil {
		return err
	}

	log.Printf("Exported league %q to %s", data.League.Name, dir)
	return nil
}

func (e *Exporter) writeIndex(dir string, data LeagueData) error {
	path := filepath.Join(dir, "index.html")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	defer f.Close()

	if err := indexTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("error rendering %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) writeAPI(dir string, data LeagueData) error {
	path := filepath.Join(dir, "api", "leaderboard.json")
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding leaderboard JSON: %w", err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) writeCSV(dir string, data LeagueData) error {
	path := filepath.Join(dir, "csv", fmt.Sprintf("weekly_%s.csv", data.Window.Start.Format("2006-01-02")))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "Week,Player,Total,Games,Failed,Winner\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, s := range data.Weekly {
		total := ""
		if s.Eligible {
			total = fmt.Sprintf("%d", s.Total)
		}
		if _, err := fmt.Fprintf(f, "%s,%s,%s,%d,%d,%t\n",
			data.Window.Start.Format("2006-01-02"), s.Player, total, s.GameCount, s.FailedCount, s.IsWinner); err != nil {
			return fmt.Errorf("failed to write standings row: %w", err)
		}
	}
	return nil
}

// blankZero blanks cells whose value is "0" so empty results do not clutter
// the tables.
func blankZero(v any) string {
	s := fmt.Sprint(v)
	if s == "0" {
		return ""
	}
	return s
}

func formatAverage(st models.AllTimeStat) string {
	if !st.HasAverage {
		return "-"
	}
	return fmt.Sprintf("%.2f", st.Average)
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"blankZero": blankZero,
	"avg":       formatAverage,
	"date":      func(t time.Time) string { return t.Format("Jan 2") },
}).Parse(indexHTML))

// The initial tab comes from the URL fragment (#daily, #weekly, #alltime,
// #season) so links can open a specific tab without cross-page state.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.League.Name}} Leaderboard</title>
<style>
body { font-family: Arial, sans-serif; margin: 0 auto; max-width: 720px; padding: 1em; }
h1 { text-align: center; }
.tabs { display: flex; gap: 0.5em; justify-content: center; margin-bottom: 1em; }
.tabs button { padding: 0.5em 1em; border: 1px solid #ccc; background: #f5f5f5; cursor: pointer; }
.tabs button.active { background: #538d4e; color: #fff; }
.tab { display: none; }
.tab.active { display: block; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 0.4em 0.6em; text-align: left; }
tr.winner td { background: #d4edda; font-weight: bold; }
td.pattern { white-space: pre-line; font-size: 0.8em; }
.updated { text-align: center; color: #777; font-size: 0.8em; }
</style>
</head>
<body>
<h1>{{.League.Name}}</h1>
<div class="tabs">
<button data-tab="daily">Daily</button>
<button data-tab="weekly">Weekly</button>
<button data-tab="alltime">All Time</button>
<button data-tab="season">Season</button>
</div>

<div id="daily" class="tab">
<h2>Wordle {{.PuzzleNumber}}</h2>
<table>
<tr><th>Player</th><th>Score</th><th>Pattern</th></tr>
{{range .Daily}}<tr><td>{{.Player}}</td><td>{{.Score}}</td><td class="pattern">{{.EmojiPattern}}</td></tr>
{{end}}</table>
</div>

<div id="weekly" class="tab">
<h2>Week of {{date .Window.Start}}</h2>
<table>
<tr><th>Player</th><th>Total</th><th>Games</th><th>Failed</th></tr>
{{range .Weekly}}<tr{{if .IsWinner}} class="winner"{{end}}><td>{{.Player}}</td><td>{{if .Eligible}}{{.Total}}{{end}}</td><td>{{blankZero .GameCount}}</td><td>{{blankZero .FailedCount}}</td></tr>
{{end}}</table>
</div>

<div id="alltime" class="tab">
<table>
<tr><th>Player</th><th>Games</th><th>Average</th><th>Best</th><th>Failed</th></tr>
{{range .AllTime}}<tr><td>{{.Player}}</td><td>{{blankZero .GamesPlayed}}</td><td>{{avg .}}</td><td>{{blankZero .BestScore}}</td><td>{{blankZero .FailedCount}}</td></tr>
{{end}}</table>
</div>

<div id="season" class="tab">
<div class="season-container">
<table class="season-table">
<thead><tr><th>Player</th><th>Weekly Wins</th><th>Wordle Week</th></tr></thead>
<tbody>
{{range .Season}}{{$p := .Player}}{{$w := .Wins}}{{range .Weeks}}<tr><td>{{$p}}</td><td>{{$w}}</td><td>{{.}}</td></tr>
{{end}}{{else}}<tr><td colspan="3" style="text-align: center;">No weekly winners yet</td></tr>
{{end}}</tbody>
</table>
</div>
</div>

<p class="updated">Updated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>

<script>
function activateTab(id) {
  document.querySelectorAll('.tab').forEach(function (el) {
    el.classList.toggle('active', el.id === id);
  });
  document.querySelectorAll('.tabs button').forEach(function (el) {
    el.classList.toggle('active', el.dataset.tab === id);
  });
}
document.querySelectorAll('.tabs button').forEach(function (el) {
  el.addEventListener('click', function () {
    location.hash = el.dataset.tab;
    activateTab(el.dataset.tab);
  });
});
var initial = location.hash.replace('#', '');
if (!document.getElementById(initial)) { initial = 'daily'; }
activateTab(initial);
if (window.WebSocket) {
  try {
    var ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.event === 'published') { location.reload(); }
    };
  } catch (e) { /* static hosting without the server */ }
}
</script>
</body>
</html>
`
