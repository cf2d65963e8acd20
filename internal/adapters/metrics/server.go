package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/example/dicebot/internal/version"
)

// ThrottleTuner is the replacement throttle as seen from the ops routes.
type ThrottleTuner interface {
	MinInterval() time.Duration
	SetMinInterval(d time.Duration)
}

type throttleBody struct {
	MinInterval string `json:"min_interval"`
}

// NewRouter builds the ops routes: Prometheus scraping, liveness, build info
// and, when tuner is not nil, reading and changing the replacement throttle.
func NewRouter(gatherer prometheus.Gatherer, tuner ThrottleTuner, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": version.String()})
	}).Methods(http.MethodGet)

	if tuner != nil {
		r.HandleFunc("/throttle", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, throttleBody{MinInterval: tuner.MinInterval().String()})
		}).Methods(http.MethodGet)

		r.HandleFunc("/throttle", func(w http.ResponseWriter, r *http.Request) {
			var body throttleBody
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
				return
			}
			d, err := time.ParseDuration(body.MinInterval)
			if err != nil || d < 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "min_interval must be a non-negative duration such as 750ms"})
				return
			}
			previous := tuner.MinInterval()
			tuner.SetMinInterval(d)
			logger.InfoContext(r.Context(), "replacement throttle changed", "from", previous, "to", d)
			writeJSON(w, http.StatusOK, throttleBody{MinInterval: d.String()})
		}).Methods(http.MethodPut)
	}

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut},
	}).Handler(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Server serves the ops routes until its context is done.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer creates an ops server listening on addr. tuner may be nil.
func NewServer(addr string, gatherer prometheus.Gatherer, tuner ThrottleTuner, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(gatherer, tuner, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("ops server listening", "addr", s.srv.Addr)
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
