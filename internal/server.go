package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AnalyzeRequest is the body for POST /api/analyze.
type AnalyzeRequest struct {
	YouTubeURL string `json:"youtube_url"`
}

// AnalyzeResponse is the shared response shape for analysis and cached
// lookups.
type AnalyzeResponse struct {
	Success    bool        `json:"success"`
	VideoID    string      `json:"video_id,omitempty"`
	VideoTitle string      `json:"video_title,omitempty"`
	Timestamps []Highlight `json:"timestamps"`
	Cached     bool        `json:"cached"`
	Error      string      `json:"error,omitempty"`
}

// LivenessResponse is the GET / payload.
type LivenessResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// RecordToResponse maps a stored record into the API shape.
func RecordToResponse(record *AnalysisRecord, cached bool) AnalyzeResponse {
	timestamps := record.Timestamps
	if timestamps == nil {
		timestamps = []Highlight{}
	}
	return AnalyzeResponse{
		Success:    true,
		VideoID:    record.VideoID,
		VideoTitle: record.VideoTitle,
		Timestamps: timestamps,
		Cached:     cached,
	}
}

// Server wraps the HTTP server around the orchestrator.
type Server struct {
	httpServer *http.Server
	logger     *Logger
}

// NewServer builds the HTTP server for the given app.
func NewServer(app *App, port int, logger *Logger) *Server {
	router := NewRouter(app, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf(":%d", port),
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("starting HTTP server")
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// NewRouter wires middleware and routes.
func NewRouter(app *App, logger *Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware())

	r.Get("/", livenessHandler())
	r.Post("/api/analyze", analyzeHandler(app))
	r.Get("/api/results/{video_id}", resultsHandler(app))

	return r
}

func livenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, LivenessResponse{
			Message: "ClipGenius API is running!",
			Status:  "ok",
		})
	}
}

func analyzeHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.YouTubeURL == "" {
			WriteError(w, http.StatusBadRequest, "youtube_url is required")
			return
		}

		result, err := app.Analyze(r.Context(), req.YouTubeURL)
		if err != nil {
			writeClassified(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, RecordToResponse(result.Record, result.Cached))
	}
}

func resultsHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videoID := chi.URLParam(r, "video_id")
		if videoID == "" {
			WriteError(w, http.StatusBadRequest, "video_id is required")
			return
		}

		record, err := app.Results(r.Context(), videoID)
		if err != nil {
			writeClassified(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, RecordToResponse(record, true))
	}
}

// writeClassified maps a pipeline failure onto its HTTP status; anything
// unclassified is a 500 without internal detail.
func writeClassified(w http.ResponseWriter, err error) {
	if classified, ok := AsPipelineError(err); ok {
		WriteError(w, classified.Kind.HTTPStatus(), classified.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, "internal server error")
}

// WriteJSON writes a JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes a failure in the shared response shape.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, AnalyzeResponse{
		Success:    false,
		Timestamps: []Highlight{},
		Error:      message,
	})
}

type contextKey string

// RequestIDKey holds the per-request ID in the request context.
const RequestIDKey contextKey = "request_id"

// RequestIDMiddleware tags every request with a short ID.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.New().String()[:8]
			ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware logs one line per request with status and duration.
func LoggingMiddleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			logger.WithRequest(r).WithFields(logrus.Fields{
				"status":      wrapped.status,
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("http request")
		})
	}
}

// RecoveryMiddleware converts panics into 500 responses.
func RecoveryMiddleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID, _ := r.Context().Value(RequestIDKey).(string)
					logger.WithFields(logrus.Fields{
						"panic":  rec,
						"req_id": requestID,
					}).Error("panic recovered")
					WriteError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows browser frontends on other origins to call the API.
func CORSMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
