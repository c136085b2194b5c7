package tools

import (
	"context"
	"time"

	"github.com/zulandar/fishbuddy/internal/geocode"
	"github.com/zulandar/fishbuddy/internal/hydro"
	"github.com/zulandar/fishbuddy/internal/rules"
	"github.com/zulandar/fishbuddy/internal/species"
	"github.com/zulandar/fishbuddy/internal/weather"
)

// Deps are the data services backing the tool handlers.
type Deps struct {
	Geo     *geocode.Client
	Weather *weather.Client
	Hydro   *hydro.Client
	Species *species.Client
	Rules   *rules.Store

	// Timeout overrides DefaultTimeout when positive.
	Timeout time.Duration
}

// placeArgs are shared by the place-keyed tools.
type placeArgs struct {
	Name     string `json:"name" jsonschema:"description=Place name to resolve,example=Thun"`
	Language string `json:"language,omitempty" jsonschema:"description=Result language code,default=de"`
}

type speciesArgs struct {
	Name     string  `json:"name" jsonschema:"description=Place name to search around"`
	Language string  `json:"language,omitempty" jsonschema:"description=Result language code,default=de"`
	RadiusKM float64 `json:"radius_km,omitempty" jsonschema:"description=Search radius in kilometres,default=5"`
}

type rulesArgs struct {
	Canton  string `json:"canton" jsonschema:"description=Swiss canton code,example=zh"`
	Species string `json:"species" jsonschema:"description=Fish species name,example=pike"`
	Method  string `json:"method" jsonschema:"description=Fishing method,example=lure"`
	DateISO string `json:"date_iso" jsonschema:"description=Calendar date in YYYY-MM-DD form"`
}

// New builds the registry with the six FishBuddy tools.
func New(deps Deps) (*Registry, error) {
	r := &Registry{
		tools:   make(map[string]*tool),
		timeout: deps.Timeout,
	}

	geocodePlace, err := newTool("geocode_place",
		"Geocode a Swiss place name to coordinates.",
		"geocode_tool_failed",
		func(ctx context.Context, args placeArgs) (any, error) {
			return deps.Geo.Place(ctx, args.Name, args.Language)
		})
	if err != nil {
		return nil, err
	}
	r.register(geocodePlace)

	cantonFromPlace, err := newTool("canton_from_place",
		"Find the Swiss canton containing a place.",
		"canton_tool_failed",
		func(ctx context.Context, args placeArgs) (any, error) {
			canton, place, err := deps.Geo.CantonFromPlace(ctx, args.Name, args.Language)
			if err != nil {
				return nil, err
			}
			return map[string]any{"canton": canton, "place": place.Name}, nil
		})
	if err != nil {
		return nil, err
	}
	r.register(cantonFromPlace)

	weatherByPlace, err := newTool("get_weather_by_place",
		"Get current weather conditions for a place.",
		"weather_tool_failed",
		func(ctx context.Context, args placeArgs) (any, error) {
			return deps.Weather.ByPlace(ctx, args.Name, args.Language)
		})
	if err != nil {
		return nil, err
	}
	r.register(weatherByPlace)

	waterData, err := newTool("get_water_data",
		"Get water temperature and flow data near a place.",
		"hydro_tool_failed",
		func(ctx context.Context, args placeArgs) (any, error) {
			return deps.Hydro.WaterByPlace(ctx, args.Name, args.Language)
		})
	if err != nil {
		return nil, err
	}
	r.register(waterData)

	listSpecies, err := newTool("list_species_by_place",
		"List fish species observed near a place.",
		"species_tool_failed",
		func(ctx context.Context, args speciesArgs) (any, error) {
			return deps.Species.ByPlace(ctx, args.Name, args.Language, args.RadiusKM)
		})
	if err != nil {
		return nil, err
	}
	r.register(listSpecies)

	checkRules, err := newTool("check_rules",
		"Check cantonal fishing rules for a species, method, and date.",
		"rules_tool_failed",
		func(ctx context.Context, args rulesArgs) (any, error) {
			verdict, err := deps.Rules.Check(args.Canton, args.Species, args.Method, args.DateISO)
			if err != nil {
				return nil, err
			}
			return verdict, nil
		})
	if err != nil {
		return nil, err
	}
	r.register(checkRules)

	return r, nil
}
