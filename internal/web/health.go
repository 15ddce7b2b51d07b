package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// HealthResponse represents the JSON response for health endpoints
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// LivenessHandler checks if the server is running and accepting requests.
// Always returns 200 OK.
func (s *Server) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.DebugContext(r.Context(), "liveness check requested")

	writeHealth(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Version:   s.version,
	})
}

// ReadinessHandler returns 200 OK when the staging directory is usable and
// at least one converter is available, 503 otherwise. Orphaned staged files
// are swept as a side effect.
func (s *Server) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.logger.DebugContext(ctx, "readiness check requested")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Version:   s.version,
		Checks:    make(map[string]string),
		Details:   make(map[string]string),
	}

	healthy := true

	if s.staging != nil && s.staging.IsAccessible() {
		response.Checks["staging"] = "accessible"
		if removed, err := s.staging.Sweep(ctx, 0); err == nil && removed > 0 {
			response.Details["staging_swept"] = strconv.FormatInt(removed, 10)
		}
	} else {
		response.Checks["staging"] = "inaccessible"
		healthy = false
	}

	if s.converters != nil {
		if s.converters.IsAvailable() {
			response.Checks["converter"] = "available"
		} else {
			response.Checks["converter"] = "unavailable"
			healthy = false
		}
		for name, state := range s.converters.Status() {
			response.Details["converter_"+name] = state
		}
	}

	response.Details["sessions"] = strconv.Itoa(s.sessions.Len())

	if healthy {
		writeHealth(w, http.StatusOK, response)
		s.logger.DebugContext(ctx, "readiness check completed", "status", "healthy")
		return
	}

	response.Status = "unhealthy"
	writeHealth(w, http.StatusServiceUnavailable, response)
	s.logger.ErrorContext(ctx, "readiness check failed",
		"status", "unhealthy",
		"checks", response.Checks,
	)
}

func writeHealth(w http.ResponseWriter, status int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
