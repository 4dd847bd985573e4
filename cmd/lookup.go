package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/voiceweather/weather-agent/internal/config"
	"github.com/voiceweather/weather-agent/internal/lookup"
	"go.uber.org/zap"
)

var (
	lookupCity  string
	lookupUnits string

	lookupCmd = &cobra.Command{
		Use:   "lookup",
		Short: "Run a one-shot weather lookup",
		Long:  `Resolve a city name and print its current weather and short forecast as JSON. Intended for smoke-testing the lookup path without a running host.`,
		RunE:  runLookup,
	}
)

func init() {
	lookupCmd.Flags().StringVar(&lookupCity, "city", "", "city to look up (required)")
	lookupCmd.Flags().StringVar(&lookupUnits, "units", "", "temperature units: metric or imperial (default from config)")
	lookupCmd.MarkFlagRequired("city")
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	units := lookupUnits
	if units == "" {
		units = cfg.Lookup.DefaultUnits
	}

	client := lookup.NewClientWithConfig(cfg.Lookup, log.Logger, tele)

	result, err := client.Lookup(cmd.Context(), lookup.Request{City: lookupCity, Units: units})
	if err != nil {
		log.Debug("Lookup failed", zap.String("city", lookupCity), zap.Error(err))
		// The failure message is user-facing by contract; print it as-is.
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
