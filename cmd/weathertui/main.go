package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kjstillabower/city-weather/internal/client"
	"github.com/kjstillabower/city-weather/internal/config"
	"github.com/kjstillabower/city-weather/internal/observability"
	"github.com/kjstillabower/city-weather/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "weathertui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// stderr belongs to the terminal UI; logs go to log.file or nowhere.
	logger, err := observability.NewFileLogger(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	tracing, err := observability.SetupTracing(context.Background(), "city-weather-tui")
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	weatherClient, err := client.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if err != nil {
		return fmt.Errorf("weather client: %w", err)
	}

	logger.Info("terminal session started")
	p := tea.NewProgram(tui.New(weatherClient, logger, cfg.WeatherAPITimeout), tea.WithAltScreen())
	_, runErr := p.Run()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := observability.FlushTelemetry(flushCtx, logger, tracing); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}
	if runErr != nil {
		return fmt.Errorf("program: %w", runErr)
	}
	return nil
}
