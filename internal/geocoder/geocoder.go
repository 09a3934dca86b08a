// Package geocoder resolves free-text addresses to coordinates through the
// Yandex geocoding HTTP API.
package geocoder

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var (
	ErrAddressNotFound     = errors.New("Address not found")
	ErrGeocoderUnavailable = errors.New("Failed to connect to geocoding API")
	ErrEmptyAddress        = errors.New("Address is required")
)

// Coordinates as returned by the service, unparsed
type Coordinates struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

type Client interface {
	Geocode(ctx context.Context, address string) (*Coordinates, error)
}

type YandexClient struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
}

func NewYandexClient(endpoint, apiKey string, timeout time.Duration) *YandexClient {
	return &YandexClient{endpoint: endpoint, apiKey: apiKey, timeout: timeout}
}

// Geocode returns the position of the first feature member matching address.
func (c *YandexClient) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrEmptyAddress
	}

	var (
		body []byte
		code int
	)
	df := gout.GET(c.endpoint).
		WithContext(ctx).
		SetQuery(gout.H{
			"apikey":  c.apiKey,
			"geocode": address,
			"format":  "json",
		}).
		BindBody(&body).
		Code(&code)
	if c.timeout > 0 {
		df = df.SetTimeout(c.timeout)
	}
	if err := df.Do(); err != nil {
		zap.L().Warn("geocoder request failed",
			zap.String("namespace", "geocoder"),
			zap.String("address", address),
			zap.Error(err))
		return nil, ErrGeocoderUnavailable
	}
	if code != http.StatusOK {
		zap.L().Warn("geocoder returned non-200",
			zap.String("namespace", "geocoder"),
			zap.Int("status", code))
		return nil, ErrGeocoderUnavailable
	}

	// pos is "<longitude> <latitude>"
	pos := jsoniter.Get(body, "response", "GeoObjectCollection", "featureMember", 0, "GeoObject", "Point", "pos").ToString()
	fields := strings.Fields(pos)
	if len(fields) != 2 {
		return nil, ErrAddressNotFound
	}
	return &Coordinates{Latitude: fields[1], Longitude: fields[0]}, nil
}
