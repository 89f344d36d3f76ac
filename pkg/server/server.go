// Package server exposes the resolution engine over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/apexgp/race-engine/log"
	"github.com/apexgp/race-engine/pkg/model"
	"github.com/apexgp/race-engine/pkg/race/resolve"
)

type (
	Handler struct {
		resolver *resolve.Resolver
		l        *log.Logger
	}
	Option func(*Handler)

	resolveRequest struct {
		Teams                []model.TeamSnapshot `json:"teams"`
		RaceIndex            int                  `json:"raceIndex"`
		DifficultyMultiplier float64              `json:"difficultyMultiplier"`
	}
)

func WithResolver(r *resolve.Resolver) Option {
	return func(h *Handler) { h.resolver = r }
}

func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.l = l }
}

func NewHandler(opts ...Option) *Handler {
	ret := &Handler{
		l: log.Default().Named("http"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/race/resolve", h.resolveRace)
	return mux
}

func (h *Handler) resolveRace(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	result, err := h.resolver.Resolve(
		r.Context(), req.Teams, req.RaceIndex, req.DifficultyMultiplier)
	if err != nil {
		if errors.Is(err, resolve.ErrNoTeams) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.l.Error("race resolution failed", log.ErrorField(err))
		http.Error(w, "race resolution failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.l.Error("could not write response", log.ErrorField(err))
	}
}
