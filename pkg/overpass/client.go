// Package overpass queries the Overpass API for tagged map elements, with
// ordered fallback across a list of mirror endpoints.
package overpass

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrAllMirrorsFailed is returned when every configured mirror failed.
var ErrAllMirrorsFailed = eris.New("overpass: all mirrors failed")

// Response is the Overpass JSON payload.
type Response struct {
	Elements []Element `json:"elements"`
}

// Element is one tagged map element. Nodes carry lat/lon directly; ways and
// relations carry a computed center when the query requests `out center`.
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *Center           `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// Center is the centroid of a way or relation.
type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position returns the element's coordinates, preferring the node position
// and falling back to the way/relation center. ok is false when the element
// has neither.
func (e Element) Position() (lat, lon float64, ok bool) {
	if e.Lat != 0 || e.Lon != 0 {
		return e.Lat, e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-mirror attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRace enables concurrent mirror dispatch with the given stagger delay
// between launches. The sequential cascade remains the default.
func WithRace(stagger time.Duration) Option {
	return func(c *Client) {
		c.race = true
		c.stagger = stagger
	}
}

// WithRateLimit sets the per-mirror politeness limit in requests per second.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) {
		c.limit = rate.Limit(perSec)
		c.burst = burst
	}
}

// Client queries Overpass mirrors in priority order.
type Client struct {
	mirrors []string
	http    *http.Client
	timeout time.Duration
	race    bool
	stagger time.Duration

	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewClient creates a client over the given mirror list. Order is the
// fallback priority.
func NewClient(mirrors []string, opts ...Option) *Client {
	c := &Client{
		mirrors: mirrors,
		http:    &http.Client{},
		timeout: 25 * time.Second,
		stagger: 500 * time.Millisecond,
		limit:   2,
		burst:   2,
	}
	for _, o := range opts {
		o(c)
	}
	c.limiters = make(map[string]*rate.Limiter, len(c.mirrors))
	for _, m := range c.mirrors {
		c.limiters[m] = rate.NewLimiter(c.limit, c.burst)
	}
	return c
}

// Query runs an Overpass QL query, trying mirrors in order until one returns
// a parseable response. Transport failures, timeouts, and disguised error
// pages advance to the next mirror; they are never surfaced individually.
func (c *Client) Query(ctx context.Context, ql string) (*Response, error) {
	if len(c.mirrors) == 0 {
		return nil, ErrAllMirrorsFailed
	}
	if c.race {
		return c.queryRaced(ctx, ql)
	}

	for _, mirror := range c.mirrors {
		resp, err := c.queryMirror(ctx, mirror, ql)
		if err != nil {
			zap.L().Warn("overpass mirror failed, trying next",
				zap.String("mirror", mirror),
				zap.Error(err),
			)
			continue
		}
		return resp, nil
	}
	return nil, ErrAllMirrorsFailed
}

// errRaceWon signals the errgroup that a mirror answered; it cancels the
// remaining attempts and never escapes this package.
var errRaceWon = eris.New("overpass: race won")

// queryRaced dispatches mirrors concurrently, staggered in priority order so
// the primary mirror gets a head start. First success cancels the rest.
func (c *Client) queryRaced(ctx context.Context, ql string) (*Response, error) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	var winner *Response

	for i, mirror := range c.mirrors {
		delay := time.Duration(i) * c.stagger
		g.Go(func() error {
			if delay > 0 {
				t := time.NewTimer(delay)
				defer t.Stop()
				select {
				case <-gctx.Done():
					return nil
				case <-t.C:
				}
			}

			resp, err := c.queryMirror(gctx, mirror, ql)
			if err != nil {
				zap.L().Warn("overpass mirror failed in race",
					zap.String("mirror", mirror),
					zap.Error(err),
				)
				return nil
			}

			mu.Lock()
			if winner == nil {
				winner = resp
			}
			mu.Unlock()
			return errRaceWon
		})
	}

	_ = g.Wait()
	if winner == nil {
		return nil, ErrAllMirrorsFailed
	}
	return winner, nil
}

// queryMirror performs a single attempt against one mirror.
func (c *Client) queryMirror(ctx context.Context, mirror, ql string) (*Response, error) {
	if lim := c.limiters[mirror]; lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "overpass: rate limiter wait")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{"data": {ql}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mirror, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "overpass: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "overpass: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("overpass: unexpected status %d from %s", resp.StatusCode, mirror)
	}

	// Overloaded mirrors serve HTML error pages with a 200 status.
	if isErrorPage(body) {
		return nil, eris.Errorf("overpass: mirror %s returned an error page", mirror)
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "overpass: unmarshal response")
	}

	return &result, nil
}

// isErrorPage detects markup documents disguised as query responses.
func isErrorPage(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return true
	}
	if strings.HasPrefix(trimmed, "<") {
		return true
	}
	lower := strings.ToLower(trimmed)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype")
}
