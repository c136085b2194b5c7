// Package hydro looks up water temperature and discharge near a place using
// a FOEN hydrometry proxy.
package hydro

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/zulandar/fishbuddy/internal/geocode"
)

// DefaultProxyBase is the default FOEN proxy endpoint.
const DefaultProxyBase = "https://api.existenz.ch/hydro"

// Report is the hydrology summary for a place. When the proxy is unreachable
// the report carries a Note instead of station data; the caller still gets a
// usable answer for the assistant.
type Report struct {
	Place        string   `json:"place"`
	StationID    string   `json:"station_id,omitempty"`
	StationName  string   `json:"station_name,omitempty"`
	WaterTempC   *float64 `json:"water_temp_c,omitempty"`
	DischargeM3S *float64 `json:"discharge_m3s,omitempty"`
	Note         string   `json:"note,omitempty"`
}

// station is one entry of the proxy's location index.
type station struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Client resolves a place and queries the nearest hydrometric station.
type Client struct {
	Base       string
	Geo        *geocode.Client
	HTTPClient *http.Client
}

// New returns a Client for the given proxy base ("" uses the default).
func New(geo *geocode.Client, base string) *Client {
	if base == "" {
		base = DefaultProxyBase
	}
	return &Client{
		Base:       base,
		Geo:        geo,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WaterByPlace geocodes the place and returns readings from the nearest
// station. Proxy failures degrade to a Report with a Note; only a geocoding
// failure is an error.
func (c *Client) WaterByPlace(ctx context.Context, place, language string) (Report, error) {
	p, err := c.Geo.Place(ctx, place, language)
	if err != nil {
		return Report{}, fmt.Errorf("hydro: %w", err)
	}

	stations, err := c.listStations(ctx)
	if err != nil || len(stations) == 0 {
		return Report{
			Place: p.Name,
			Note:  "No hydrology data available; check FOEN station data manually.",
		}, nil
	}

	nearest := stations[0]
	best := haversineKM(p.Lat, p.Lon, nearest.Lat, nearest.Lon)
	for _, s := range stations[1:] {
		if d := haversineKM(p.Lat, p.Lon, s.Lat, s.Lon); d < best {
			nearest, best = s, d
		}
	}

	var latest struct {
		WaterTempC   *float64 `json:"water_temp_c"`
		DischargeM3S *float64 `json:"discharge_m3s"`
	}
	if err := c.getJSON(ctx, c.Base+"/"+nearest.ID, &latest); err != nil {
		return Report{
			Place: p.Name,
			Note:  "Water data unavailable; check FOEN station data manually.",
		}, nil
	}

	return Report{
		Place:        p.Name,
		StationID:    nearest.ID,
		StationName:  nearest.Name,
		WaterTempC:   latest.WaterTempC,
		DischargeM3S: latest.DischargeM3S,
	}, nil
}

func (c *Client) listStations(ctx context.Context) ([]station, error) {
	var stations []station
	if err := c.getJSON(ctx, c.Base+"/locations", &stations); err != nil {
		return nil, err
	}
	return stations, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hydro: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// haversineKM returns the great-circle distance between two points.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
