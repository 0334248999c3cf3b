package deals

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/localdeals/deals-api/internal/config"
	"github.com/localdeals/deals-api/internal/enrich"
	"github.com/localdeals/deals-api/internal/geodist"
	"github.com/localdeals/deals-api/internal/model"
	"github.com/localdeals/deals-api/internal/normalize"
	"github.com/localdeals/deals-api/internal/query"
	"github.com/localdeals/deals-api/pkg/overpass"
	"github.com/localdeals/deals-api/pkg/places"
)

// ErrGoogleKeyMissing is returned when the google provider is selected
// without a configured API key. Checked before any outbound call.
var ErrGoogleKeyMissing = eris.New("google.key is not set on the server")

// NearbyRequest is a validated nearby-deals query.
type NearbyRequest struct {
	Lat         float64
	Lon         float64
	RadiusMiles float64 // 0 means the provider default
	Category    string
	Search      string
}

// Service runs the nearby-deals pipeline against the configured provider.
// It holds no per-request state; concurrent requests are independent.
type Service struct {
	cfg      *config.Config
	catalog  *query.Catalog
	engine   *enrich.Engine
	overpass *overpass.Client
	google   places.Client
}

// NewService wires the pipeline. google may be nil when the overpass
// provider is configured.
func NewService(cfg *config.Config, catalog *query.Catalog, engine *enrich.Engine, op *overpass.Client, google places.Client) *Service {
	return &Service{
		cfg:      cfg,
		catalog:  catalog,
		engine:   engine,
		overpass: op,
		google:   google,
	}
}

// NewOverpassClient builds the mirror-cascade client from configuration.
func NewOverpassClient(cfg config.OverpassConfig) *overpass.Client {
	opts := []overpass.Option{
		overpass.WithTimeout(time.Duration(cfg.TimeoutSecs) * time.Second),
		overpass.WithRateLimit(float64(cfg.RatePerSec), cfg.RateBurst),
	}
	if cfg.Race {
		opts = append(opts, overpass.WithRace(time.Duration(cfg.RaceStaggerMS)*time.Millisecond))
	}
	return overpass.NewClient(cfg.Mirrors, opts...)
}

// Nearby fetches, normalizes, filters, enriches, and ranks places around the
// request origin.
func (s *Service) Nearby(ctx context.Context, req NearbyRequest) ([]model.Place, error) {
	origin := geodist.Coord(req.Lat, req.Lon)

	var normalized []model.Place
	var err error
	if s.cfg.Provider.Name == "google" {
		normalized, err = s.fetchGoogle(ctx, origin, req)
	} else {
		normalized, err = s.fetchOverpass(ctx, origin, req)
	}
	if err != nil {
		return nil, err
	}

	ranked := Rank(normalized, s.cfg.Search.MaxResults, s.cfg.Search.FallbackLimit)
	enriched := s.engine.ApplyAll(ranked)

	zap.L().Debug("nearby pipeline complete",
		zap.Int("raw", len(normalized)),
		zap.Int("returned", len(enriched)),
		zap.String("provider", s.cfg.Provider.Name),
	)
	return enriched, nil
}

func (s *Service) fetchOverpass(ctx context.Context, origin geom.Coord, req NearbyRequest) ([]model.Place, error) {
	radius := req.RadiusMiles
	if radius <= 0 {
		radius = s.cfg.Overpass.RadiusMiles
	}

	ql := s.catalog.Overpass(origin, radius, req.Category).QL(s.cfg.Overpass.TimeoutSecs)
	resp, err := s.overpass.Query(ctx, ql)
	if err != nil {
		return nil, err
	}
	return normalize.FromOverpass(resp.Elements, origin, s.catalog), nil
}

func (s *Service) fetchGoogle(ctx context.Context, origin geom.Coord, req NearbyRequest) ([]model.Place, error) {
	if s.google == nil {
		return nil, ErrGoogleKeyMissing
	}

	radius := req.RadiusMiles
	if radius <= 0 {
		radius = s.cfg.Google.RadiusMiles
	}

	params := s.catalog.GoogleParams(origin, radius, req.Category, req.Search, s.cfg.Google.MaxRadiusM)
	resp, err := s.google.NearbySearch(ctx, params)
	if err != nil {
		return nil, err
	}

	photo := func(ref string) string {
		return s.google.PhotoURL(ref, s.cfg.Google.PhotoMaxWidth)
	}
	return normalize.FromGoogle(resp.Results, origin, s.catalog, photo), nil
}
