package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zulandar/fishbuddy/internal/assistant"
	"github.com/zulandar/fishbuddy/internal/config"
	"github.com/zulandar/fishbuddy/internal/law"
	"github.com/zulandar/fishbuddy/internal/session"
	"github.com/zulandar/fishbuddy/internal/tools"
	"github.com/zulandar/fishbuddy/internal/weather"
)

func newChatCmd() *cobra.Command {
	var (
		configPath string
		canton     string
		level      string
		waterbody  string
		lat        float64
		lon        float64
		stayDays   int
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive terminal session",
		Long:  "Starts an interactive assistant session. Missing context fields are prompted for; live weather is captured when coordinates are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, chatOpts{
				configPath: configPath,
				canton:     canton,
				level:      level,
				waterbody:  waterbody,
				lat:        lat,
				lon:        lon,
				hasCoords:  cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon"),
				stayDays:   stayDays,
				hasStay:    cmd.Flags().Changed("stay-days"),
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fishbuddy.yaml", "path to config file")
	cmd.Flags().StringVar(&canton, "canton", "", "Swiss canton code or name (e.g. ZH, BE, TI)")
	cmd.Flags().StringVar(&level, "level", "", "experience level (Beginner/Intermediate/Expert)")
	cmd.Flags().StringVar(&waterbody, "waterbody", "", "river or lake name")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude for live weather")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude for live weather")
	cmd.Flags().IntVar(&stayDays, "stay-days", 0, "planned stay length in days")
	return cmd
}

type chatOpts struct {
	configPath string
	canton     string
	level      string
	waterbody  string
	lat, lon   float64
	hasCoords  bool
	stayDays   int
	hasStay    bool
}

func runChat(cmd *cobra.Command, opts chatOpts) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	deps, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	registry, err := tools.New(deps)
	if err != nil {
		return err
	}
	client := assistant.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.AssistantID)

	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	structured := captureContext(in, out, deps.Weather, opts)

	ctx := context.Background()
	s, err := session.New(ctx, client, newDriver(cfg, client, registry, cfg.Poll.CLIBudget), cfg.Poll.MessagePage)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nType questions (e.g. 'What licence do I need?', 'Where to try now?'); type 'exit' to quit.")
	for {
		fmt.Fprint(out, "\nYou: ")
		if !in.Scan() {
			return in.Err()
		}
		q := strings.TrimSpace(in.Text())
		if q == "" {
			continue
		}
		switch strings.ToLower(q) {
		case "exit", "quit", "q":
			return nil
		}

		reply, err := s.Ask(ctx, q, structured)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nAssistant:\n%s\n", reply.Text)
	}
}

// captureContext fills the structured context from flags, prompting for
// anything missing.
func captureContext(in *bufio.Scanner, out io.Writer, wx *weather.Client, opts chatOpts) map[string]any {
	level := opts.level
	if level == "" {
		level = promptString(in, out, "Level (Beginner/Intermediate/Expert)", "Beginner")
	}
	canton := opts.canton
	if canton == "" {
		canton = promptString(in, out, "Canton (e.g. ZH, BE, GE, TI)", "")
	}
	waterbody := opts.waterbody
	if waterbody == "" {
		waterbody = promptString(in, out, "Body of water (e.g. Limmat, Thunersee)", "Unknown")
	}

	lat, lon, hasCoords := opts.lat, opts.lon, opts.hasCoords
	if !hasCoords {
		lat, lon, hasCoords = promptCoords(in, out)
	}

	var location any
	conditions := map[string]any{"note": "No coordinates provided; skipping live weather."}
	if hasCoords {
		location = map[string]float64{"lat": lat, "lon": lon}
		if cur, err := wx.ByCoords(context.Background(), lat, lon); err != nil {
			conditions = map[string]any{"error": "weather_unavailable"}
		} else {
			conditions = map[string]any{
				"air_temp_c": cur.AirTempC,
				"wind_ms":    cur.WindMS,
				"precip_mm":  cur.PrecipMM,
			}
		}
	}

	stayDays := opts.stayDays
	if !opts.hasStay {
		stayDays = promptInt(in, out, "Stay length (days)", 3)
	}

	return map[string]any{
		"level":      level,
		"canton":     canton,
		"waterbody":  waterbody,
		"location":   location,
		"conditions": conditions,
		"licence": map[string]any{
			"local_plan": law.BeginnerPlan(canton, stayDays),
			"stay_days":  stayDays,
		},
	}
}

func promptString(in *bufio.Scanner, out io.Writer, label, fallback string) string {
	if fallback != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, fallback)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	if !in.Scan() {
		return fallback
	}
	if v := strings.TrimSpace(in.Text()); v != "" {
		return v
	}
	return fallback
}

func promptInt(in *bufio.Scanner, out io.Writer, label string, fallback int) int {
	raw := promptString(in, out, label, strconv.Itoa(fallback))
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return fallback
}

func promptCoords(in *bufio.Scanner, out io.Writer) (lat, lon float64, ok bool) {
	rawLat := promptString(in, out, "Latitude (empty to skip weather)", "")
	if rawLat == "" {
		return 0, 0, false
	}
	rawLon := promptString(in, out, "Longitude", "")
	if rawLon == "" {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(rawLat, 64)
	lon, errLon := strconv.ParseFloat(rawLon, 64)
	if errLat != nil || errLon != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
