package main

import (
	"os"

	"github.com/voiceweather/weather-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
