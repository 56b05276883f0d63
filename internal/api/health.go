package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dtarnawsky/dust/internal/api/respond"
)

// HealthHandler reports service liveness and dataset population state.
type HealthHandler struct{}

// NewHealthHandler creates a health handler.
func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// populatedCount holds the record count reported by the last populate run.
var populatedCount atomic.Int64

// SetPopulated records the population signal for health reporting.
func SetPopulated(count int) { populatedCount.Store(int64(count)) }

// CheckHealth handles GET /api/health. Always 200; the body reports whether
// the dataset has been populated.
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	status := "empty"
	if populatedCount.Load() > 0 {
		status = "ready"
	}
	respond.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"records":   populatedCount.Load(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
