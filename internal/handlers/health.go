package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// Check reports whether one dependency is usable
type Check func(ctx context.Context) error

// Health answers the health, liveness and readiness probes
type Health struct {
	checks   map[string]Check
	critical map[string]bool
}

// NewHealth creates an empty set of checks
func NewHealth() *Health {
	return &Health{checks: make(map[string]Check), critical: make(map[string]bool)}
}

// Add registers a check; critical checks gate readiness
func (h *Health) Add(name string, critical bool, check Check) *Health {
	h.checks[name] = check
	h.critical[name] = critical
	return h
}

func (h *Health) run(ctx context.Context) (map[string]interface{}, bool, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy, ready := true, true
	results := make(map[string]interface{}, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			healthy = false
			if h.critical[name] {
				ready = false
			}
			results[name] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			continue
		}
		results[name] = map[string]interface{}{"status": "healthy"}
	}
	return results, healthy, ready
}

// HealthHandler reports every dependency
func (h *Health) HealthHandler(w http.ResponseWriter, r *http.Request) {
	checks, healthy, _ := h.run(r.Context())
	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().Unix(),
	})
}

// LivenessHandler handles Kubernetes liveness probes
func (h *Health) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// ReadinessHandler returns 200 once every critical dependency answers
func (h *Health) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	_, _, ready := h.run(r.Context())
	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "not_ready",
			"timestamp": time.Now().Unix(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
