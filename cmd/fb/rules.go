package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/fishbuddy/internal/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Work with the cantonal rules dataset",
	}
	cmd.AddCommand(newRulesCheckCmd())
	return cmd
}

func newRulesCheckCmd() *cobra.Command {
	var (
		dataPath string
		canton   string
		species  string
		method   string
		date     string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check legality for a canton, species, method, and date",
		Long:  "Evaluates the local rules dataset offline, without contacting the assistant.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRulesCheck(cmd, dataPath, canton, species, method, date)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "data/rules.json", "path to rules dataset")
	cmd.Flags().StringVar(&canton, "canton", "", "canton code (e.g. zh)")
	cmd.Flags().StringVar(&species, "species", "", "species name (e.g. pike)")
	cmd.Flags().StringVar(&method, "method", "", "fishing method (e.g. lure)")
	cmd.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("canton")
	cmd.MarkFlagRequired("species")
	cmd.MarkFlagRequired("method")
	cmd.MarkFlagRequired("date")
	return cmd
}

func runRulesCheck(cmd *cobra.Command, dataPath, canton, species, method, date string) error {
	store, err := rules.Load(dataPath)
	if err != nil {
		return err
	}
	verdict, err := store.Check(canton, species, method, date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verdict.Legal {
		fmt.Fprintf(out, "Legal: %s %s with %s on %s\n", canton, species, method, date)
	} else {
		fmt.Fprintf(out, "NOT legal: %s %s with %s on %s\n", canton, species, method, date)
	}
	if verdict.Closed {
		fmt.Fprintln(out, "  closed season on this date")
	}
	if verdict.MinSizeCM != nil {
		fmt.Fprintf(out, "  minimum size: %.0f cm\n", *verdict.MinSizeCM)
	}
	if verdict.BagLimit != nil {
		fmt.Fprintf(out, "  bag limit: %d\n", *verdict.BagLimit)
	}
	return nil
}
