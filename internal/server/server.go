// Package server serves the exported leaderboard site, a small JSON API and a
// websocket channel that tells open pages when a new export was published.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/myusername/wordle-league-tracker/pkg/config"
	"github.com/myusername/wordle-league-tracker/pkg/models"
	"github.com/myusername/wordle-league-tracker/pkg/stats"
	"github.com/myusername/wordle-league-tracker/pkg/store"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Server wires the static site, the API and the refresh channel together.
type Server struct {
	router    *mux.Router
	store     *store.Store
	cfg       *config.Config
	exportDir string

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// New builds a server over the given store, config and export directory.
func New(st *store.Store, cfg *config.Config, exportDir string) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		store:     st,
		cfg:       cfg,
		exportDir: exportDir,
		clients:   make(map[*websocket.Conn]bool),
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/leagues", s.handleLeagues).Methods(http.MethodGet)
	s.router.HandleFunc("/api/leagues/{id}/weekly", s.handleWeekly).Methods(http.MethodGet)
	s.router.HandleFunc("/api/leagues/{id}/season", s.handleSeason).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWS)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(exportDir)))

	return s
}

// Handler returns the root HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("Serving %s on %s", s.exportDir, addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleLeagues(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.cfg.Models())
}

// handleWeekly computes standings on demand for the window containing the
// requested date (today when absent). The computation is idempotent and reads
// one snapshot, so concurrent requests need no coordination.
func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	league, ok := s.leagueFromRequest(w, r)
	if !ok {
		return
	}

	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid date %q", raw), http.StatusBadRequest)
			return
		}
		date = parsed
	}
	window := models.WindowFor(date)

	records, err := s.store.ScoresForLeague(league.ID, window)
	if err != nil {
		log.Printf("Error loading scores for league %d: %v", league.ID, err)
		http.Error(w, "failed to load scores", http.StatusInternalServerError)
		return
	}

	standings, err := stats.ComputeWeeklyStandings(records, league.ID, window)
	if err != nil {
		log.Printf("Error computing standings for league %d: %v", league.ID, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		League    models.League           `json:"league"`
		Window    models.WeeklyWindow     `json:"window"`
		Standings []models.WeeklyStanding `json:"standings"`
	}{models.League{ID: league.ID, Name: league.Name, Dir: league.Dir}, window, standings})
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	league, ok := s.leagueFromRequest(w, r)
	if !ok {
		return
	}

	records, err := s.store.AllScoresForLeague(league.ID)
	if err != nil {
		log.Printf("Error loading scores for league %d: %v", league.ID, err)
		http.Error(w, "failed to load scores", http.StatusInternalServerError)
		return
	}

	weeks, err := stats.SeasonFromRecords(records, league.ID)
	if err != nil {
		log.Printf("Error computing season for league %d: %v", league.ID, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		League  models.League         `json:"league"`
		Winners []models.SeasonWinner `json:"winners"`
	}{models.League{ID: league.ID, Name: league.Name, Dir: league.Dir}, stats.SeasonWinners(weeks)})
}

func (s *Server) leagueFromRequest(w http.ResponseWriter, r *http.Request) (config.LeagueConfig, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid league id", http.StatusBadRequest)
		return config.LeagueConfig{}, false
	}
	league, ok := s.cfg.League(id)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown league %d", id), http.StatusNotFound)
		return config.LeagueConfig{}, false
	}
	return league, true
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	log.Printf("Websocket client connected (%d total)", s.clientCount())

	// Drain reads until the client goes away.
	go func() {
		defer s.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// NotifyPublished tells every connected page that a fresh export is available.
func (s *Server) NotifyPublished() {
	msg := map[string]string{"event": "published", "at": time.Now().UTC().Format(time.RFC3339)}

	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for c := range s.clients {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			log.Printf("Dropping websocket client: %v", err)
			s.dropClient(c)
		}
	}
	log.Printf("Notified %d websocket clients of publish", len(conns))
}

func (s *Server) dropClient(conn *websocket.Conn) {
	s.mu.Lock()
	if s.clients[conn] {
		delete(s.clients, conn)
		conn.Close()
	}
	s.mu.Unlock()
}

func (s *Server) clientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
