package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dev-bhaskar8/lp-data/internal/api/handlers"
	"github.com/dev-bhaskar8/lp-data/pkg/logger"
)

// NewRouter creates and configures the HTTP router. jobsHandler may be nil when no scheduler runs.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(resultsHandler *handlers.ResultsHandler, jobsHandler *handlers.JobsHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Prometheus
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Result endpoints
	api.HandleFunc("/results", resultsHandler.GetSummary).Methods("GET")
	api.HandleFunc("/results/{timeframe}", resultsHandler.GetTimeframe).Methods("GET")
	api.HandleFunc("/errors", resultsHandler.GetErrors).Methods("GET")
	api.HandleFunc("/universe", resultsHandler.GetUniverse).Methods("GET")

	// Job endpoints
	if jobsHandler != nil {
		api.HandleFunc("/jobs", jobsHandler.GetStats).Methods("GET")
		api.HandleFunc("/jobs/{name}/run", jobsHandler.Trigger).Methods("POST")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "corrscan-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
