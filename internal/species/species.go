// Package species queries GBIF occurrence data for fish species near a place.
package species

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/zulandar/fishbuddy/internal/geocode"
)

// DefaultBase is the GBIF occurrence search endpoint.
const DefaultBase = "https://api.gbif.org/v1/occurrence/search"

// classKeyActinopterygii is the GBIF taxon key for ray-finned fishes.
const classKeyActinopterygii = "127206"

// maxSpecies caps the number of species returned per query.
const maxSpecies = 20

// Species is one aggregated species observation.
type Species struct {
	Name           string `json:"name"`
	Count          int    `json:"count"`
	ScientificName string `json:"scientific_name"`
}

// Result is the species summary for a place.
type Result struct {
	Place      string    `json:"place"`
	Provider   string    `json:"provider"`
	Region     string    `json:"region,omitempty"`
	DataSource string    `json:"data_source"`
	Species    []Species `json:"species"`
}

// Client resolves a place and searches GBIF occurrences around it.
type Client struct {
	Base       string
	Geo        *geocode.Client
	HTTPClient *http.Client
	UserAgent  string
}

// New returns a Client with the default GBIF endpoint and a 12s timeout.
func New(geo *geocode.Client) *Client {
	return &Client{
		Base:       DefaultBase,
		Geo:        geo,
		HTTPClient: &http.Client{Timeout: 12 * time.Second},
		UserAgent:  "FishBuddy/1.0 (+https://github.com/zulandar/fishbuddy)",
	}
}

// ByPlace lists fish species observed within radiusKM of the place, sorted by
// occurrence count descending, capped at 20 entries.
func (c *Client) ByPlace(ctx context.Context, place, language string, radiusKM float64) (Result, error) {
	if radiusKM <= 0 {
		radiusKM = 5.0
	}
	p, err := c.Geo.Place(ctx, place, language)
	if err != nil {
		return Result{}, fmt.Errorf("species: %w", err)
	}

	q := url.Values{}
	q.Set("geometry", wktSquare(p.Lat, p.Lon, radiusKM))
	q.Set("country", "CH")
	q.Set("hasCoordinate", "true")
	q.Set("kingdom", "Animalia")
	q.Set("classKey", classKeyActinopterygii)
	q.Set("limit", "300")
	q.Set("offset", "0")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+"?"+q.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("species: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("species: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("species: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			Species        string `json:"species"`
			ScientificName string `json:"scientificName"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("species: decode response: %w", err)
	}

	type agg struct {
		count          int
		scientificName string
	}
	counts := make(map[string]*agg)
	for _, rec := range body.Results {
		if rec.Species == "" || rec.ScientificName == "" {
			continue
		}
		a, ok := counts[rec.Species]
		if !ok {
			a = &agg{scientificName: rec.ScientificName}
			counts[rec.Species] = a
		}
		a.count++
	}

	list := make([]Species, 0, len(counts))
	for name, a := range counts {
		list = append(list, Species{Name: name, Count: a.count, ScientificName: a.scientificName})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Count != list[j].Count {
			return list[i].Count > list[j].Count
		}
		return list[i].Name < list[j].Name
	})
	if len(list) > maxSpecies {
		list = list[:maxSpecies]
	}

	return Result{
		Place:      p.Name,
		Provider:   "gbif",
		Region:     p.Admin1,
		DataSource: "GBIF Swiss Node - Swiss National Fish Databank",
		Species:    list,
	}, nil
}

// wktSquare builds a WKT polygon of roughly km half-width around a point.
func wktSquare(lat, lon, km float64) string {
	dlat := km * 0.009
	dlon := km * 0.009 / math.Max(0.1, math.Cos(lat*math.Pi/180))
	pts := [][2]float64{
		{lon - dlon, lat - dlat},
		{lon + dlon, lat - dlat},
		{lon + dlon, lat + dlat},
		{lon - dlon, lat + dlat},
		{lon - dlon, lat - dlat},
	}
	coords := make([]string, len(pts))
	for i, pt := range pts {
		coords[i] = fmt.Sprintf("%g %g", pt[0], pt[1])
	}
	return "POLYGON((" + strings.Join(coords, ", ") + "))"
}
