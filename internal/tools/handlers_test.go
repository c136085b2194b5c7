package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zulandar/fishbuddy/internal/geocode"
	"github.com/zulandar/fishbuddy/internal/hydro"
	"github.com/zulandar/fishbuddy/internal/rules"
	"github.com/zulandar/fishbuddy/internal/species"
	"github.com/zulandar/fishbuddy/internal/weather"
)

const handlerRules = `{
	"cantons": {
		"zh": {
			"species": {
				"pike": {
					"closed_seasons": [{"from": "2024-03-01", "to": "2024-04-30"}],
					"min_size_cm": 50,
					"bag_limit": 4,
					"methods_allowed": ["lure", "fly"]
				}
			}
		}
	}
}`

// newUpstream serves canned responses for every external API the tools reach.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"latitude":47.37,"longitude":8.54,"name":"Zürich","admin1":"Zurich","country_code":"CH"}]}`)
	})
	mux.HandleFunc("/identify", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"attributes":{"kt_kz":"ZH","name":"Zürich"}}]}`)
	})
	mux.HandleFunc("/icon", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"current":{"temperature_2m":14.2,"wind_speed_10m":3.1,"precipitation":0.0}}`)
	})
	mux.HandleFunc("/hydro/locations", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"2099","name":"Limmat - Zürich","lat":47.37,"lon":8.53},{"id":"2135","name":"Aare - Bern","lat":46.95,"lon":7.44}]`)
	})
	mux.HandleFunc("/hydro/2099", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"water_temp_c":11.5,"discharge_m3s":88.0}`)
	})
	mux.HandleFunc("/gbif", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[
			{"species":"Esox lucius","scientificName":"Esox lucius Linnaeus, 1758"},
			{"species":"Esox lucius","scientificName":"Esox lucius Linnaeus, 1758"},
			{"species":"Perca fluviatilis","scientificName":"Perca fluviatilis Linnaeus, 1758"}
		]}`)
	})
	return httptest.NewServer(mux)
}

func newHandlerRegistry(t *testing.T) *Registry {
	t.Helper()
	srv := newUpstream(t)
	t.Cleanup(srv.Close)

	geo := geocode.New()
	geo.SearchBase = srv.URL + "/search"
	geo.IdentifyBase = srv.URL + "/identify"
	geo.HTTPClient = srv.Client()

	wx := weather.New(geo)
	wx.Base = srv.URL + "/icon"
	wx.HTTPClient = srv.Client()

	hy := hydro.New(geo, srv.URL+"/hydro")
	hy.HTTPClient = srv.Client()

	sp := species.New(geo)
	sp.Base = srv.URL + "/gbif"
	sp.HTTPClient = srv.Client()

	store, err := rules.Parse([]byte(handlerRules))
	if err != nil {
		t.Fatalf("rules.Parse: %v", err)
	}

	r, err := New(Deps{Geo: geo, Weather: wx, Hydro: hy, Species: sp, Rules: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func mustSucceed(t *testing.T, r *Registry, name, args string) string {
	t.Helper()
	payload := r.Execute(context.Background(), name, args)
	if reason, isErr := DecodeError(payload); isErr {
		t.Fatalf("%s returned error payload: %s", name, reason)
	}
	return payload
}

func TestGeocodePlace(t *testing.T) {
	r := newHandlerRegistry(t)
	payload := mustSucceed(t, r, "geocode_place", `{"name":"Zürich"}`)

	var place struct {
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
		Name string  `json:"name"`
	}
	if err := json.Unmarshal([]byte(payload), &place); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if place.Name != "Zürich" || place.Lat != 47.37 || place.Lon != 8.54 {
		t.Errorf("place = %+v", place)
	}
}

func TestCantonFromPlace(t *testing.T) {
	r := newHandlerRegistry(t)
	payload := mustSucceed(t, r, "canton_from_place", `{"name":"Zürich"}`)

	var out struct {
		Canton string `json:"canton"`
		Place  string `json:"place"`
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if out.Canton != "ZH" || out.Place != "Zürich" {
		t.Errorf("out = %+v", out)
	}
}

func TestGetWeatherByPlace(t *testing.T) {
	r := newHandlerRegistry(t)
	payload := mustSucceed(t, r, "get_weather_by_place", `{"name":"Zürich"}`)

	var cur struct {
		Place    string   `json:"place"`
		AirTempC *float64 `json:"air_temp_c"`
	}
	if err := json.Unmarshal([]byte(payload), &cur); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if cur.Place != "Zürich" || cur.AirTempC == nil || *cur.AirTempC != 14.2 {
		t.Errorf("current = %+v", cur)
	}
}

func TestGetWaterData(t *testing.T) {
	r := newHandlerRegistry(t)
	payload := mustSucceed(t, r, "get_water_data", `{"name":"Zürich"}`)

	var report struct {
		StationID  string   `json:"station_id"`
		WaterTempC *float64 `json:"water_temp_c"`
		Note       string   `json:"note"`
	}
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if report.StationID != "2099" {
		t.Errorf("station = %q, want nearest 2099", report.StationID)
	}
	if report.WaterTempC == nil || *report.WaterTempC != 11.5 {
		t.Errorf("water temp = %v", report.WaterTempC)
	}
	if report.Note != "" {
		t.Errorf("note = %q, want empty on success", report.Note)
	}
}

func TestListSpeciesByPlace(t *testing.T) {
	r := newHandlerRegistry(t)
	payload := mustSucceed(t, r, "list_species_by_place", `{"name":"Zürich","radius_km":3}`)

	var result struct {
		Provider string `json:"provider"`
		Species  []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"species"`
	}
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if result.Provider != "gbif" {
		t.Errorf("provider = %q", result.Provider)
	}
	if len(result.Species) != 2 {
		t.Fatalf("species = %d entries, want 2", len(result.Species))
	}
	if result.Species[0].Name != "Esox lucius" || result.Species[0].Count != 2 {
		t.Errorf("top species = %+v", result.Species[0])
	}
}

func TestCheckRules(t *testing.T) {
	cases := []struct {
		name      string
		args      string
		wantLegal bool
		wantClose bool
	}{
		{"open season lure", `{"canton":"zh","species":"pike","method":"lure","date_iso":"2024-05-01"}`, true, false},
		{"closed season start", `{"canton":"zh","species":"pike","method":"lure","date_iso":"2024-03-01"}`, false, true},
		{"closed season middle", `{"canton":"zh","species":"pike","method":"lure","date_iso":"2024-04-01"}`, false, true},
		{"closed season end", `{"canton":"zh","species":"pike","method":"lure","date_iso":"2024-04-30"}`, false, true},
		{"disallowed method", `{"canton":"zh","species":"pike","method":"net","date_iso":"2024-05-01"}`, false, false},
		{"unknown entry is permissive", `{"canton":"ge","species":"trout","method":"net","date_iso":"2024-05-01"}`, true, false},
	}

	r := newHandlerRegistry(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := mustSucceed(t, r, "check_rules", tc.args)
			var verdict struct {
				Legal  bool `json:"legal"`
				Closed bool `json:"closed"`
			}
			if err := json.Unmarshal([]byte(payload), &verdict); err != nil {
				t.Fatalf("payload: %v", err)
			}
			if verdict.Legal != tc.wantLegal || verdict.Closed != tc.wantClose {
				t.Errorf("verdict = %+v, want legal=%v closed=%v", verdict, tc.wantLegal, tc.wantClose)
			}
		})
	}
}

func TestCheckRules_MalformedDate(t *testing.T) {
	r := newHandlerRegistry(t)
	payload := r.Execute(context.Background(), "check_rules",
		`{"canton":"zh","species":"pike","method":"lure","date_iso":"yesterday"}`)

	reason, isErr := DecodeError(payload)
	if !isErr {
		t.Fatalf("payload %q is not an error payload", payload)
	}
	if !strings.HasPrefix(reason, "rules_tool_failed:") {
		t.Errorf("reason = %q, want rules_tool_failed prefix", reason)
	}
}

func TestGeocodeFailureUsesToolCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	defer srv.Close()

	geo := geocode.New()
	geo.SearchBase = srv.URL
	geo.HTTPClient = srv.Client()
	store, _ := rules.Parse([]byte(`{}`))
	r, err := New(Deps{Geo: geo, Weather: weather.New(geo), Hydro: hydro.New(geo, ""), Species: species.New(geo), Rules: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	payload := r.Execute(context.Background(), "geocode_place", `{"name":"Atlantis"}`)
	reason, isErr := DecodeError(payload)
	if !isErr {
		t.Fatalf("payload %q is not an error payload", payload)
	}
	if !strings.HasPrefix(reason, "geocode_tool_failed:") {
		t.Errorf("reason = %q, want geocode_tool_failed prefix", reason)
	}
}

func TestDefinitions(t *testing.T) {
	r := newHandlerRegistry(t)
	defs := r.Definitions()

	want := []string{
		"canton_from_place",
		"check_rules",
		"geocode_place",
		"get_water_data",
		"get_weather_by_place",
		"list_species_by_place",
	}
	if len(defs) != len(want) {
		t.Fatalf("Definitions() = %d entries, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("defs[%d].Name = %q, want %q", i, defs[i].Name, name)
		}
		var schema struct {
			Type       string         `json:"type"`
			Properties map[string]any `json:"properties"`
		}
		if err := json.Unmarshal(defs[i].Parameters, &schema); err != nil {
			t.Fatalf("defs[%d].Parameters: %v", i, err)
		}
		if schema.Type != "object" || len(schema.Properties) == 0 {
			t.Errorf("defs[%d] schema = %+v", i, schema)
		}
		if defs[i].Description == "" {
			t.Errorf("defs[%d] has no description", i)
		}
	}

	rulesDef := defs[1]
	var schema struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(rulesDef.Parameters, &schema); err != nil {
		t.Fatalf("check_rules parameters: %v", err)
	}
	for _, field := range []string{"canton", "species", "method", "date_iso"} {
		found := false
		for _, got := range schema.Required {
			if got == field {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("check_rules required = %v, missing %s", schema.Required, field)
		}
	}
}
