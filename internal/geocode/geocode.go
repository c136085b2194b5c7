// Package geocode resolves Swiss place names to coordinates and cantons.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Default API endpoints.
const (
	DefaultSearchBase   = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultIdentifyBase = "https://api3.geo.admin.ch/rest/services/api/MapServer/identify"
)

// Canton boundary layer used by the GeoAdmin identify call.
const cantonLayer = "all:ch.swisstopo.swissboundaries3d-kanton-flaeche.fill"

// ErrNoResult is returned when a place name resolves to nothing.
var ErrNoResult = errors.New("geocode: no result")

// Place is a resolved location.
type Place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Name        string  `json:"name"`
	Admin1      string  `json:"admin1,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
}

// Client queries the Open-Meteo geocoder and the GeoAdmin identify service.
// The zero value is not usable; call New.
type Client struct {
	SearchBase   string
	IdentifyBase string
	HTTPClient   *http.Client
}

// New returns a Client with default endpoints and a 10s timeout.
func New() *Client {
	return &Client{
		SearchBase:   DefaultSearchBase,
		IdentifyBase: DefaultIdentifyBase,
		HTTPClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Place resolves a place name to its top-ranked location. language selects
// the result locale ("de" when empty). Returns ErrNoResult when the geocoder
// has no match.
func (c *Client) Place(ctx context.Context, name, language string) (Place, error) {
	if language == "" {
		language = "de"
	}
	q := url.Values{}
	q.Set("name", name)
	q.Set("count", "1")
	q.Set("language", language)
	q.Set("format", "json")

	var body struct {
		Results []struct {
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			Name        string  `json:"name"`
			Admin1      string  `json:"admin1"`
			CountryCode string  `json:"country_code"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.SearchBase, q, &body); err != nil {
		return Place{}, fmt.Errorf("geocode: search %q: %w", name, err)
	}
	if len(body.Results) == 0 {
		return Place{}, fmt.Errorf("geocode: search %q: %w", name, ErrNoResult)
	}
	top := body.Results[0]
	return Place{
		Lat:         top.Latitude,
		Lon:         top.Longitude,
		Name:        top.Name,
		Admin1:      top.Admin1,
		CountryCode: top.CountryCode,
	}, nil
}

// CantonFromCoords identifies the canton containing a point via the GeoAdmin
// boundary layer. Returns the canton code (e.g. "ZH") when available, else
// the canton name, else ErrNoResult.
func (c *Client) CantonFromCoords(ctx context.Context, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("geometryType", "esriGeometryPoint")
	q.Set("geometry", fmt.Sprintf("%f,%f", lon, lat))
	q.Set("mapExtent", fmt.Sprintf("%f,%f,%f,%f", lon-0.01, lat-0.01, lon+0.01, lat+0.01))
	q.Set("tolerance", "0")
	q.Set("layers", cantonLayer)
	q.Set("returnGeometry", "false")
	q.Set("imageDisplay", "400,400,96")
	q.Set("lang", "de")

	var body struct {
		Results []struct {
			Attributes struct {
				KtKz string `json:"kt_kz"`
				Name string `json:"name"`
			} `json:"attributes"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.IdentifyBase, q, &body); err != nil {
		return "", fmt.Errorf("geocode: identify canton at %f,%f: %w", lat, lon, err)
	}
	if len(body.Results) == 0 {
		return "", fmt.Errorf("geocode: identify canton at %f,%f: %w", lat, lon, ErrNoResult)
	}
	attrs := body.Results[0].Attributes
	if attrs.KtKz != "" {
		return attrs.KtKz, nil
	}
	if attrs.Name != "" {
		return attrs.Name, nil
	}
	return "", fmt.Errorf("geocode: identify canton at %f,%f: %w", lat, lon, ErrNoResult)
}

// CantonFromPlace resolves a place name and identifies its canton.
func (c *Client) CantonFromPlace(ctx context.Context, name, language string) (string, Place, error) {
	place, err := c.Place(ctx, name, language)
	if err != nil {
		return "", Place{}, err
	}
	canton, err := c.CantonFromCoords(ctx, place.Lat, place.Lon)
	if err != nil {
		return "", place, err
	}
	return canton, place, nil
}

// getJSON issues a GET with the query string and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, base string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
