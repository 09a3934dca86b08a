package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moscowResponse = `{
  "response": {
    "GeoObjectCollection": {
      "metaDataProperty": {"GeocoderResponseMetaData": {"request": "Moscow, Tverskaya 7", "found": "1"}},
      "featureMember": [
        {"GeoObject": {"name": "Tverskaya 7", "Point": {"pos": "37.611347 55.760241"}}}
      ]
    }
  }
}`

func TestGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "key-1", q.Get("apikey"))
		assert.Equal(t, "Moscow, Tverskaya 7", q.Get("geocode"))
		assert.Equal(t, "json", q.Get("format"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(moscowResponse))
	}))
	defer srv.Close()

	c := NewYandexClient(srv.URL, "key-1", 0)
	got, err := c.Geocode(context.Background(), "  Moscow, Tverskaya 7 ")
	require.NoError(t, err)
	assert.Equal(t, "55.760241", got.Latitude)
	assert.Equal(t, "37.611347", got.Longitude)
}

func TestGeocodeNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":{"GeoObjectCollection":{"featureMember":[]}}}`))
	}))
	defer srv.Close()

	_, err := NewYandexClient(srv.URL, "key-1", 0).Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestGeocodeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"statusCode":403,"error":"Forbidden","message":"Invalid api key"}`))
	}))
	defer srv.Close()

	_, err := NewYandexClient(srv.URL, "bad", 0).Geocode(context.Background(), "Moscow")
	assert.ErrorIs(t, err, ErrGeocoderUnavailable)
}

func TestGeocodeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewYandexClient(url, "key-1", 0).Geocode(context.Background(), "Moscow")
	assert.ErrorIs(t, err, ErrGeocoderUnavailable)
}

func TestGeocodeEmptyAddress(t *testing.T) {
	_, err := NewYandexClient("http://127.0.0.1:1", "key-1", 0).Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyAddress)
}
