// Package web exposes the prediction engine over HTTP with chi.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/drawlab/sorteo/internal/domain/draw"
	"github.com/drawlab/sorteo/internal/domain/engine"
	"github.com/drawlab/sorteo/internal/ports"
)

// HistoryProvider returns the current draw history for a game.
type HistoryProvider func(game draw.Game) (draw.History, error)

// Server serves prediction and weight inspection endpoints.
type Server struct {
	engine  *engine.Engine
	history HistoryProvider
	addr    string
	srv     *http.Server
}

// NewServer wires an engine and a history source into an HTTP server.
func NewServer(addr string, eng *engine.Engine, history HistoryProvider) *Server {
	return &Server{engine: eng, history: history, addr: addr}
}

// Router builds the chi routing tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Route("/api/v1", func(rr chi.Router) {
		rr.Get("/games", s.handleGames)
		rr.Get("/predict", s.handlePredict)
		rr.Get("/weights/{game}", s.handleWeights)
		rr.Post("/reset/{game}", s.handleReset)
	})

	return r
}

// ListenAndServe blocks serving HTTP until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server if it is running.
func (s *Server) Shutdown() error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Close()
}

type gameInfo struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	MaxNumber    int    `json:"max_number"`
	PerDraw      int    `json:"per_draw"`
	SuppMax      int    `json:"supp_max,omitempty"`
	Combinations uint64 `json:"combinations"`
}

func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	games := draw.Games()
	out := make([]gameInfo, 0, len(games))
	for _, g := range games {
		out = append(out, gameInfo{
			Key:          g.Key,
			Name:         g.Name,
			MaxNumber:    g.MaxNumber,
			PerDraw:      g.PerDraw,
			SuppMax:      g.SuppMax,
			Combinations: g.Combinations(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	game, err := draw.GameByKey(r.URL.Query().Get("game"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		count, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
	}

	hist, err := s.history(game)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	report, err := s.engine.Predict(game, hist, count)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ports.ErrTooManyCombinations) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type weightsResponse struct {
	Game     string              `json:"game"`
	Features map[string]float64  `json:"features"`
	Strategy map[string]float64  `json:"strategies"`
	Memory   map[int]float64     `json:"memory,omitempty"`
	State    ports.TrainingState `json:"training"`
}

func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	game, err := draw.GameByKey(chi.URLParam(r, "game"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a := s.engine.Adapter()
	writeJSON(w, http.StatusOK, weightsResponse{
		Game:     game.Key,
		Features: a.FeatureWeights(game.Key),
		Strategy: a.StrategyWeights(game.Key),
		Memory:   a.SuccessMemory(game.Key),
		State:    a.TrainingState(game.Key),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	game, err := draw.GameByKey(chi.URLParam(r, "game"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.engine.Adapter().Reset(game.Key); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"game": game.Key, "status": "reset"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
