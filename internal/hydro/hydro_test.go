package hydro

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zulandar/fishbuddy/internal/geocode"
)

const limmatSearch = `{"results":[{"latitude":47.3769,"longitude":8.5417,"name":"Zürich","admin1":"Zurich","country_code":"CH"}]}`

func newTestStack(t *testing.T, withProxy bool) (*Client, func()) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(limmatSearch))
	})
	if withProxy {
		mux.HandleFunc("/hydro/locations", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[
				{"id":"2243","name":"Limmat - Zürich","lat":47.37,"lon":8.54},
				{"id":"2018","name":"Reuss - Mellingen","lat":47.42,"lon":8.27}
			]`))
		})
		mux.HandleFunc("/hydro/2243", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"water_temp_c":16.4,"discharge_m3s":92.1}`))
		})
	}
	srv := httptest.NewServer(mux)

	geo := geocode.New()
	geo.SearchBase = srv.URL + "/search"
	c := New(geo, srv.URL+"/hydro")
	return c, srv.Close
}

func TestWaterByPlace_NearestStation(t *testing.T) {
	c, done := newTestStack(t, true)
	defer done()

	rep, err := c.WaterByPlace(context.Background(), "Zürich", "de")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.StationID != "2243" {
		t.Errorf("StationID = %q, want 2243 (nearest)", rep.StationID)
	}
	if rep.StationName != "Limmat - Zürich" {
		t.Errorf("StationName = %q, want Limmat - Zürich", rep.StationName)
	}
	if rep.WaterTempC == nil || *rep.WaterTempC != 16.4 {
		t.Errorf("WaterTempC = %v, want 16.4", rep.WaterTempC)
	}
	if rep.DischargeM3S == nil || *rep.DischargeM3S != 92.1 {
		t.Errorf("DischargeM3S = %v, want 92.1", rep.DischargeM3S)
	}
	if rep.Note != "" {
		t.Errorf("Note = %q, want empty on success", rep.Note)
	}
}

func TestWaterByPlace_ProxyDownDegrades(t *testing.T) {
	c, done := newTestStack(t, false)
	defer done()

	rep, err := c.WaterByPlace(context.Background(), "Zürich", "de")
	if err != nil {
		t.Fatalf("proxy outage must not be an error, got: %v", err)
	}
	if rep.Place != "Zürich" {
		t.Errorf("Place = %q, want Zürich", rep.Place)
	}
	if rep.Note == "" {
		t.Error("Note is empty, want degradation note")
	}
	if rep.StationID != "" {
		t.Errorf("StationID = %q, want empty", rep.StationID)
	}
}

func TestWaterByPlace_GeocodeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	geo := geocode.New()
	geo.SearchBase = srv.URL + "/search"
	c := New(geo, srv.URL+"/hydro")

	if _, err := c.WaterByPlace(context.Background(), "Nowhere", "de"); err == nil {
		t.Fatal("expected error when geocoding fails, got nil")
	}
}

func TestHaversineKM(t *testing.T) {
	// Zürich to Bern is roughly 95 km.
	d := haversineKM(47.3769, 8.5417, 46.9480, 7.4474)
	if math.Abs(d-95) > 5 {
		t.Errorf("haversineKM(Zürich, Bern) = %f, want ~95", d)
	}
	if d := haversineKM(47.0, 8.0, 47.0, 8.0); d != 0 {
		t.Errorf("haversineKM(same point) = %f, want 0", d)
	}
}
