// Package weather fetches current conditions from the Open-Meteo ICON model.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zulandar/fishbuddy/internal/geocode"
)

// DefaultBase is the Open-Meteo ICON endpoint.
const DefaultBase = "https://api.open-meteo.com/v1/icon"

// Current holds the conditions relevant to a fishing session.
type Current struct {
	Place    string   `json:"place,omitempty"`
	AirTempC *float64 `json:"air_temp_c"`
	WindMS   *float64 `json:"wind_ms"`
	PrecipMM *float64 `json:"precip_mm"`
}

// Client fetches current weather, resolving place names through the geocoder.
type Client struct {
	Base       string
	Geo        *geocode.Client
	HTTPClient *http.Client
}

// New returns a Client with the default endpoint and a 10s timeout.
func New(geo *geocode.Client) *Client {
	return &Client{
		Base:       DefaultBase,
		Geo:        geo,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ByPlace geocodes a place name and returns its current conditions.
func (c *Client) ByPlace(ctx context.Context, place, language string) (Current, error) {
	p, err := c.Geo.Place(ctx, place, language)
	if err != nil {
		return Current{}, fmt.Errorf("weather: %w", err)
	}
	cur, err := c.ByCoords(ctx, p.Lat, p.Lon)
	if err != nil {
		return Current{}, err
	}
	cur.Place = p.Name
	return cur, nil
}

// ByCoords returns current conditions at a coordinate pair. Used directly by
// the CLI when the user supplies lat/lon.
func (c *Client) ByCoords(ctx context.Context, lat, lon float64) (Current, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lon))
	q.Set("current", "temperature_2m,wind_speed_10m,precipitation")
	q.Set("timezone", "Europe/Zurich")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+"?"+q.Encode(), nil)
	if err != nil {
		return Current{}, fmt.Errorf("weather: build request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Current{}, fmt.Errorf("weather: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Current{}, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Current struct {
			Temperature2M *float64 `json:"temperature_2m"`
			WindSpeed10M  *float64 `json:"wind_speed_10m"`
			Precipitation *float64 `json:"precipitation"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Current{}, fmt.Errorf("weather: decode response: %w", err)
	}
	return Current{
		AirTempC: body.Current.Temperature2M,
		WindMS:   body.Current.WindSpeed10M,
		PrecipMM: body.Current.Precipitation,
	}, nil
}
