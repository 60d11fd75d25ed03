package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"serpavi_estimator/config"
	"serpavi_estimator/httputil"
	"serpavi_estimator/models"
	"serpavi_estimator/services"
)

// Estimator is the surface the HTTP layer needs from the service.
type Estimator interface {
	Estimate(ctx context.Context, req *models.EstimateRequest) *models.EstimateResult
	History(limit int) ([]models.EstimateRun, error)
}

type Server struct {
	svc     Estimator
	clients *httputil.Clients
	site    *config.SiteConfig
}

func New(svc Estimator, clients *httputil.Clients, site *config.SiteConfig) *Server {
	return &Server{svc: svc, clients: clients, site: site}
}

var _ Estimator = (*services.EstimateService)(nil)

// Router wires the routes with request-scoped response headers applied at
// the boundary.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverMiddleware, jsonMiddleware)

	r.HandleFunc("/api/estimate", s.handleEstimate).Methods(http.MethodPost)
	r.HandleFunc("/api/runs", s.handleRuns).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/diagnostic/serpavi", s.handleDiagnostic).Methods(http.MethodGet)

	return r
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req models.EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed JSON body"})
		return
	}

	// Identifier format is checked synchronously, before any browser
	// resource is allocated.
	req.Normalize()
	if err := req.ValidateRef(); err != nil {
		writeJSON(w, http.StatusBadRequest, models.FailedResult(
			req.CadastralRef, models.ErrKindInvalidRequest, err.Error(), nil))
		return
	}

	if missing := req.MissingMandatory(); len(missing) > 0 {
		writeJSON(w, http.StatusOK, models.NeedsAttributesResult(req.CadastralRef, missing))
		return
	}

	result := s.svc.Estimate(r.Context(), &req)
	// Soft failures use a normal transport status with an explicit
	// failure payload: "target produced no usable data" is not a
	// transport error.
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.svc.History(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs, "count": len(runs)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleDiagnostic performs a plain HTTP fetch of the target site and
// reports status and length. It never invokes the automation engine.
func (s *Server) handleDiagnostic(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	req, err := httputil.NewProbeRequest(s.site.AppURL)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	resp, err := s.clients.Probe.Do(req.WithContext(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"ok":         false,
			"url":        s.site.AppURL,
			"error":      err.Error(),
			"durationMs": time.Since(started).Milliseconds(),
		})
		return
	}
	defer resp.Body.Close()
	n, _ := io.Copy(io.Discard, resp.Body)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         resp.StatusCode < 500,
		"url":        s.site.AppURL,
		"statusCode": resp.StatusCode,
		"bodyBytes":  n,
		"durationMs": time.Since(started).Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware is the outer boundary for unexpected faults: anything
// uncaught becomes a generic error envelope.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("Panic in %s %s: %v", r.Method, r.URL.Path, rec)
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
