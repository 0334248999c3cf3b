package places

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNearbySearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "42.100000,-72.600000", r.URL.Query().Get("location"))
		assert.Equal(t, "restaurant", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(NearbyResponse{
			Status: StatusOK,
			Results: []Result{
				{
					PlaceID:          "abc123",
					Name:             "Elm Diner",
					Vicinity:         "12 Elm St, Springfield",
					Types:            []string{"restaurant", "food"},
					Geometry:         Geometry{Location: &LatLng{Lat: 42.105, Lng: -72.601}},
					Rating:           4.2,
					UserRatingsTotal: 88,
				},
			},
		})
	}))
	defer srv.Close()

	params := url.Values{}
	params.Set("location", "42.100000,-72.600000")
	params.Set("radius", "16093")
	params.Set("type", "restaurant")

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.NearbySearch(context.Background(), params)

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Elm Diner", resp.Results[0].Name)
	assert.InDelta(t, 42.105, resp.Results[0].Geometry.Location.Lat, 1e-9)
}

func TestNearbySearch_ZeroResultsIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(NearbyResponse{Status: StatusZeroResults})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.NearbySearch(context.Background(), url.Values{})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestNearbySearch_RequestDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(NearbyResponse{
			Status:       "REQUEST_DENIED",
			ErrorMessage: "The provided API key is invalid.",
		})
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	resp, err := client.NearbySearch(context.Background(), url.Values{})

	assert.Nil(t, resp)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "REQUEST_DENIED", statusErr.Status)
	// Upstream diagnostic must not leak through the error.
	assert.NotContains(t, err.Error(), "invalid")
}

func TestNearbySearch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.NearbySearch(context.Background(), url.Values{})

	assert.Nil(t, resp)
	assert.Error(t, err)
}

func TestPhotoURL(t *testing.T) {
	client := NewClient("test-key", WithBaseURL("https://example.test/place"))

	u := client.PhotoURL("ref-1", 800)
	assert.Contains(t, u, "https://example.test/place/photo?")
	assert.Contains(t, u, "photo_reference=ref-1")
	assert.Contains(t, u, "maxwidth=800")
	assert.Contains(t, u, "key=test-key")

	assert.Empty(t, client.PhotoURL("", 800))
}
