package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	csvadapter "github.com/LabSOIL/sensor-toolbox/internal/adapter/csvfile"
	httpadapter "github.com/LabSOIL/sensor-toolbox/internal/adapter/http"
	kafkaadapter "github.com/LabSOIL/sensor-toolbox/internal/adapter/kafka"
	"github.com/LabSOIL/sensor-toolbox/internal/config"
	"github.com/LabSOIL/sensor-toolbox/internal/domain"
	"github.com/LabSOIL/sensor-toolbox/internal/observability"
	"github.com/LabSOIL/sensor-toolbox/internal/pipeline"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <input.csv> <soil_type>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Converts TMS4 soil moisture sensor readings to volumetric water content.\n\n")
	fmt.Fprintf(os.Stderr, "Available soil types:\n  %s\n", strings.Join(domain.SoilTypeNames(), "\n  "))
}

func main() {
	if len(os.Args) != 3 {
		usage()
		os.Exit(2)
	}
	inputPath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	soil, err := domain.ParseSoilType(os.Args[2])
	if err != nil {
		logger.Error("invalid soil type", "error", err)
		usage()
		os.Exit(2)
	}

	if err := run(cfg, logger, inputPath, soil); err != nil {
		logger.Error("calibration failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, inputPath string, soil domain.SoilType) error {
	metrics := observability.NewMetrics()

	reader, err := csvadapter.NewReader(inputPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := csvadapter.NewWriter(cfg.OutputPath)
	if err != nil {
		return err
	}

	loaders := []pipeline.Loader{writer}
	var publisher *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewWriter(cfg, soil, logger)
		loaders = append(loaders, publisher)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	engine := domain.NewEngine(soil.Calibration(), domain.DefaultConstants(), cfg.MaskFrozen)
	p := pipeline.New(reader, pipeline.NewTransformer(engine), loaders, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional metrics endpoint for long runs under an orchestrator.
	var srv *httpadapter.Server
	if cfg.MetricsAddr != "" {
		srv = httpadapter.NewServer(cfg.MetricsAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	logger.Info("calibration started", "input", inputPath, "output", cfg.OutputPath,
		"soil_type", soil.String(), "mask_frozen", cfg.MaskFrozen)

	count, runErr := p.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		cancel()
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	if runErr != nil {
		writer.Abort()
		return runErr
	}
	if err := writer.Commit(); err != nil {
		return err
	}

	logger.Info("calibration complete", "records", count, "output", cfg.OutputPath)
	return nil
}
