/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/friendsincode/matchday/internal/config"
	"github.com/friendsincode/matchday/internal/db"
	"github.com/friendsincode/matchday/internal/events"
	"github.com/friendsincode/matchday/internal/logbuffer"
	"github.com/friendsincode/matchday/internal/logging"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/plans"
	"github.com/friendsincode/matchday/internal/schedule"
	"github.com/friendsincode/matchday/internal/scheduler"
	"github.com/friendsincode/matchday/internal/server"
	"github.com/friendsincode/matchday/internal/storage"
	"github.com/friendsincode/matchday/internal/sweep"
	"github.com/friendsincode/matchday/internal/telemetry"
	"github.com/friendsincode/matchday/internal/version"
)

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "matchday",
	Short:         "Matchday - competition day timetable generator",
	Long:          "Matchday builds robot-game match plans and full-day timetables for judged robotics competitions.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Matchday server",
	Long:  "Start the HTTP API server and the background sweep workers",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}
	logs := logbuffer.New(cfg.LogBufferSize)
	logger = logging.SetupWithBuffer(cfg.Environment, os.Stderr, logs)

	logger.Info().Str("version", version.Version).Msg("Matchday starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.InitTracer(ctx, telemetry.TracerConfig{
		ServiceVersion: version.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	srv, err := server.New(ctx, cfg, logs, logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("shutdown cleanup failed")
		}
	}()

	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info().Msg("Matchday stopped")
	return nil
}

// services is the subset of the server's dependencies the offline
// commands need. Events stay in-process.
type services struct {
	db     *gorm.DB
	plans  *plans.Service
	sweeps *sweep.Service
	export *schedule.ExportService
}

func openServices(ctx context.Context) (*services, func(), error) {
	if err := loadConfig(); err != nil {
		return nil, nil, err
	}
	database, err := db.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(database); err != nil {
			logger.Warn().Err(err).Msg("close database")
		}
	}
	if err := db.Migrate(database); err != nil {
		closeDB()
		return nil, nil, err
	}

	var store storage.ObjectStore
	if cfg.S3Bucket != "" {
		store, err = storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			UsePathStyle:    cfg.S3UsePathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Prefix:          "matchday",
		}, logger)
	} else {
		store, err = storage.NewFSStore(cfg.ReportDir)
	}
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("open report store: %w", err)
	}

	bus := events.NewBus()
	gen := scheduler.New(matchplan.Diversity{}, logger)
	planSvc := plans.NewService(database, gen, nil, bus, logger)
	return &services{
		db:     database,
		plans:  planSvc,
		sweeps: sweep.NewService(database, gen, store, bus, cfg.SweepWorkers, logger),
		export: schedule.NewExportService(planSvc, logger),
	}, closeDB, nil
}
