// Package places is a client for the Google Places nearby search API.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// Statuses returned by the API. Anything other than these two is a hard
// failure.
const (
	StatusOK          = "OK"
	StatusZeroResults = "ZERO_RESULTS"
)

// Client performs Google Places API operations.
type Client interface {
	NearbySearch(ctx context.Context, params url.Values) (*NearbyResponse, error)
	PhotoURL(photoRef string, maxWidth int) string
}

// NearbyResponse is the response from a nearby search.
type NearbyResponse struct {
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Results      []Result `json:"results"`
}

// Result is a single place returned by the API.
type Result struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Vicinity         string   `json:"vicinity"`
	Types            []string `json:"types"`
	Geometry         Geometry `json:"geometry"`
	Photos           []Photo  `json:"photos"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
}

// Geometry holds the place location.
type Geometry struct {
	Location *LatLng `json:"location"`
}

// LatLng is a coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Photo references an API-hosted photo.
type Photo struct {
	PhotoReference string `json:"photo_reference"`
}

// StatusError is a non-success API status distinct from zero results. The
// upstream status is preserved so the caller can report it without leaking
// the upstream error message.
type StatusError struct {
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("places: api status %s", e.Status)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Google Places API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 25 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NearbySearch runs a nearby search with the given query parameters. The API
// key is attached here; callers never handle it.
func (c *httpClient) NearbySearch(ctx context.Context, params url.Values) (*NearbyResponse, error) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = vs
	}
	q.Set("key", c.apiKey)

	reqURL := c.baseURL + "/nearbysearch/json?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("places: unexpected status %d", resp.StatusCode)
	}

	var result NearbyResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "places: unmarshal response")
	}

	if result.Status != StatusOK && result.Status != StatusZeroResults {
		// The upstream diagnostic stays in the logs; callers see only
		// the status token.
		zap.L().Error("places api error",
			zap.String("status", result.Status),
			zap.String("error_message", result.ErrorMessage),
		)
		return nil, &StatusError{Status: result.Status}
	}

	return &result, nil
}

// PhotoURL builds a photo link for a photo reference. Empty when there is no
// reference to resolve.
func (c *httpClient) PhotoURL(photoRef string, maxWidth int) string {
	if photoRef == "" {
		return ""
	}
	q := url.Values{}
	q.Set("maxwidth", fmt.Sprintf("%d", maxWidth))
	q.Set("photo_reference", photoRef)
	q.Set("key", c.apiKey)
	return c.baseURL + "/photo?" + q.Encode()
}
