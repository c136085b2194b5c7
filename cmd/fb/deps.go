package main

import (
	"fmt"

	"github.com/zulandar/fishbuddy/internal/assistant"
	"github.com/zulandar/fishbuddy/internal/config"
	"github.com/zulandar/fishbuddy/internal/geocode"
	"github.com/zulandar/fishbuddy/internal/hydro"
	"github.com/zulandar/fishbuddy/internal/rules"
	"github.com/zulandar/fishbuddy/internal/session"
	"github.com/zulandar/fishbuddy/internal/species"
	"github.com/zulandar/fishbuddy/internal/tools"
	"github.com/zulandar/fishbuddy/internal/weather"
)

// buildDeps wires the data service clients from config.
func buildDeps(cfg *config.Config) (tools.Deps, error) {
	geo := geocode.New()
	store, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		return tools.Deps{}, err
	}
	return tools.Deps{
		Geo:     geo,
		Weather: weather.New(geo),
		Hydro:   hydro.New(geo, cfg.Hydro.ProxyBase),
		Species: species.New(geo),
		Rules:   store,
	}, nil
}

// buildRegistry wires the data services and builds the tool registry.
func buildRegistry(cfg *config.Config) (*tools.Registry, error) {
	deps, err := buildDeps(cfg)
	if err != nil {
		return nil, err
	}
	registry, err := tools.New(deps)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}
	return registry, nil
}

// newDriver builds a run driver with the given poll budget.
func newDriver(cfg *config.Config, client assistant.Client, registry *tools.Registry, pollBudget int) *session.Driver {
	return &session.Driver{
		Client:     client,
		Tools:      registry,
		Interval:   cfg.PollInterval(),
		PollBudget: pollBudget,
		RetryMax:   cfg.Poll.ToolRetryMax,
	}
}
