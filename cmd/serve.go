package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/localdeals/deals-api/internal/config"
	"github.com/localdeals/deals-api/internal/deals"
	"github.com/localdeals/deals-api/internal/enrich"
	"github.com/localdeals/deals-api/internal/model"
	"github.com/localdeals/deals-api/internal/query"
	"github.com/localdeals/deals-api/pkg/overpass"
	"github.com/localdeals/deals-api/pkg/places"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the nearby-deals HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, err := buildService(cfg)
		if err != nil {
			return err
		}

		router := buildRouter(cfg, svc)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("provider", cfg.Provider.Name),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// nearbyService is the slice of deals.Service the handlers need.
type nearbyService interface {
	Nearby(ctx context.Context, req deals.NearbyRequest) ([]model.Place, error)
}

// buildService wires the pipeline from configuration. The google client is
// only constructed when a key is present; selecting the google provider
// without one surfaces as a configuration error per request.
func buildService(cfg *config.Config) (*deals.Service, error) {
	engine, err := enrich.NewEngine()
	if err != nil {
		return nil, err
	}

	var google places.Client
	if cfg.Google.Key != "" {
		google = places.NewClient(cfg.Google.Key,
			places.WithBaseURL(cfg.Google.BaseURL),
			places.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.Google.TimeoutSecs) * time.Second,
			}),
		)
	}

	catalog := query.DefaultCatalog()
	return deals.NewService(cfg, catalog, engine, deals.NewOverpassClient(cfg.Overpass), google), nil
}

// buildRouter assembles the HTTP surface: CORS + request logging middleware,
// the health check, and the nearby-deals endpoint.
func buildRouter(cfg *config.Config, svc nearbyService) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/deals/nearby", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if q.Get("lat") == "" || q.Get("lon") == "" || latErr != nil || lonErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "lat and lon are required query params",
			})
			return
		}

		req := deals.NearbyRequest{
			Lat:      lat,
			Lon:      lon,
			Category: q.Get("category"),
			Search:   q.Get("search"),
		}
		if radius, err := strconv.ParseFloat(q.Get("radius"), 64); err == nil && radius > 0 {
			req.RadiusMiles = radius
		}

		results, err := svc.Nearby(r.Context(), req)
		if err != nil {
			writeNearbyError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, results)
	})

	return r
}

// writeNearbyError maps pipeline errors to the JSON error surface. Upstream
// diagnostics are logged here and never returned to the caller.
func writeNearbyError(w http.ResponseWriter, err error) {
	zap.L().Error("nearby request failed", zap.Error(err))

	if eris.Is(err, deals.ErrGoogleKeyMissing) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "google.key is not set on the server",
		})
		return
	}

	var statusErr *places.StatusError
	if errors.As(err, &statusErr) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "places api error",
			"status": statusErr.Status,
		})
		return
	}

	if eris.Is(err, overpass.ErrAllMirrorsFailed) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "nearby places are temporarily unavailable",
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "failed to fetch nearby deals",
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// requestLogger logs each request with a generated request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.NewString()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		zap.L().Info("http request",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
