package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/myusername/wordle-league-tracker/pkg/config"
	"github.com/myusername/wordle-league-tracker/pkg/models"
	"github.com/myusername/wordle-league-tracker/pkg/store"
)

func testFixture(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()

	st, err := store.Open(filepath.Join(dir, "league.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{Leagues: []config.LeagueConfig{
		{ID: 1, Name: "Wordle Warriorz", Phones: map[string]string{
			"18587359353": "Brent",
			"17603341190": "Malia",
		}},
	}}
	if err := st.SeedPlayers(cfg.Leagues); err != nil {
		t.Fatalf("SeedPlayers error: %v", err)
	}

	monday := time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		day := monday.AddDate(0, 0, i)
		rec := models.ScoreRecord{
			Player: "Brent", LeagueID: 1, Score: 3,
			PuzzleNumber: models.PuzzleNumberFor(day), Date: day,
		}
		if err := st.SaveScore(rec); err != nil {
			t.Fatalf("SaveScore error: %v", err)
		}
	}

	exportDir := filepath.Join(dir, "site")
	if err := os.MkdirAll(exportDir, 0755); err != nil {
		t.Fatalf("creating export dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(exportDir, "index.html"), []byte("<html>site</html>"), 0644); err != nil {
		t.Fatalf("writing index: %v", err)
	}

	return New(st, cfg, exportDir), exportDir
}

func TestHealthz(t *testing.T) {
	srv, _ := testFixture(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestLeaguesEndpoint(t *testing.T) {
	srv, _ := testFixture(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/leagues", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var leagues []models.League
	if err := json.Unmarshal(rr.Body.Bytes(), &leagues); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(leagues) != 1 || leagues[0].Name != "Wordle Warriorz" {
		t.Errorf("leagues = %+v", leagues)
	}
}

func TestWeeklyEndpoint(t *testing.T) {
	srv, _ := testFixture(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/leagues/1/weekly?date=2025-08-06", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Window    models.WeeklyWindow     `json:"window"`
		Standings []models.WeeklyStanding `json:"standings"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got := resp.Window.Start.Format("2006-01-02"); got != "2025-08-04" {
		t.Errorf("window start = %s, want the Monday", got)
	}
	if len(resp.Standings) != 1 {
		t.Fatalf("standings = %+v, want Brent only", resp.Standings)
	}
	if s := resp.Standings[0]; s.Player != "Brent" || s.Total != 15 || !s.IsWinner {
		t.Errorf("standing = %+v, want winning Brent with total 15", s)
	}
}

func TestWeeklyEndpointBadInput(t *testing.T) {
	srv, _ := testFixture(t)

	for path, want := range map[string]int{
		"/api/leagues/1/weekly?date=nonsense": http.StatusBadRequest,
		"/api/leagues/99/weekly":              http.StatusNotFound,
	} {
		rr := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != want {
			t.Errorf("GET %s status = %d, want %d", path, rr.Code, want)
		}
	}
}

func TestSeasonEndpoint(t *testing.T) {
	srv, _ := testFixture(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/leagues/1/season", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Winners []models.SeasonWinner `json:"winners"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(resp.Winners) != 1 || resp.Winners[0].Player != "Brent" || resp.Winners[0].Wins != 1 {
		t.Errorf("winners = %+v, want one win for Brent", resp.Winners)
	}
}

func TestStaticSiteServed(t *testing.T) {
	srv, _ := testFixture(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/index.html", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "site") {
		t.Errorf("body = %q, want exported page", rr.Body.String())
	}
}

func TestWebsocketPublishNotification(t *testing.T) {
	srv, _ := testFixture(t)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	// Registration happens just after the handshake; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for srv.clientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.clientCount() == 0 {
		t.Fatal("websocket client never registered")
	}

	srv.NotifyPublished()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]string
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading publish event: %v", err)
	}
	if msg["event"] != "published" {
		t.Errorf("event = %q, want published", msg["event"])
	}
}
