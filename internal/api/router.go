// Package api exposes the query engine over HTTP. Handlers are thin: they
// translate query parameters into dispatcher commands and copy results out.
package api

import (
	"time"

	"github.com/gorilla/mux"

	"github.com/dtarnawsky/dust/internal/api/recovery"
	"github.com/dtarnawsky/dust/internal/engine"
)

// NewRouter wires all routes onto a mux router.
func NewRouter(d *engine.Dispatcher, zone *time.Location) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	h := NewQueryHandler(d, zone)
	health := NewHealthHandler()

	router.HandleFunc("/api/health", health.CheckHealth).Methods("GET")

	router.HandleFunc("/api/days", h.GetDays).Methods("GET")
	router.HandleFunc("/api/events", h.GetEvents).Methods("GET")
	router.HandleFunc("/api/events/{uid}", h.GetEvent).Methods("GET")
	router.HandleFunc("/api/camps", h.GetCamps).Methods("GET")
	router.HandleFunc("/api/camps/{uid}", h.GetCamp).Methods("GET")
	router.HandleFunc("/api/art", h.GetArts).Methods("GET")
	router.HandleFunc("/api/art/{uid}", h.GetArt).Methods("GET")

	// Raw message-boundary protocol: {"method": "...", "args": [...]}.
	router.HandleFunc("/api/query", h.Query).Methods("POST")

	return router
}
