package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zulandar/fishbuddy/internal/assistant"
	"github.com/zulandar/fishbuddy/internal/config"
)

// defaultInstructions is the assistant system prompt pushed by setup.
const defaultInstructions = `You are FishBuddy, a practical assistant for recreational fishing in Switzerland.
Each user message starts with a line "StructuredContext: {...}" holding a JSON object
(level, canton, waterbody, location, conditions, licence), followed by "Question: ...".
Use the structured context and the available tools (geocoding, canton lookup, weather,
water data, species lists, cantonal rules) to give concrete, location-aware advice.
Cantonal regulations vary: when legality matters, check the rules tool and tell the
user to confirm with the cantonal authority. Answer in the user's language.`

func newSetupCmd() *cobra.Command {
	var (
		configPath       string
		name             string
		model            string
		instructionsFile string
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Push the assistant profile and tool definitions",
		Long:  "Configures the remote assistant: name, model, instructions, and the reflected function-calling schemas of all tools.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, configPath, name, model, instructionsFile)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "fishbuddy.yaml", "path to config file")
	cmd.Flags().StringVar(&name, "name", "FishBuddy", "assistant name")
	cmd.Flags().StringVar(&model, "model", "gpt-4o", "assistant model")
	cmd.Flags().StringVar(&instructionsFile, "instructions-file", "", "file with custom instructions (default: built-in prompt)")
	return cmd
}

func runSetup(cmd *cobra.Command, configPath, name, model, instructionsFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	instructions := defaultInstructions
	if instructionsFile != "" {
		raw, err := os.ReadFile(instructionsFile)
		if err != nil {
			return fmt.Errorf("read instructions: %w", err)
		}
		instructions = string(raw)
	}

	client := assistant.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.AssistantID)
	defs := registry.Definitions()
	setup := assistant.Setup{
		Name:         name,
		Instructions: instructions,
		Model:        model,
	}
	if err := client.ConfigureTools(context.Background(), setup, defs); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Assistant %s configured with %d tools:\n", cfg.OpenAI.AssistantID, len(defs))
	for _, def := range defs {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s — %s\n", def.Name, def.Description)
	}
	return nil
}
