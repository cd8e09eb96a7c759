package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	r "github.com/ximlor/inv-nbs/data/repos"
	"github.com/ximlor/inv-nbs/service/config"
	c "github.com/ximlor/inv-nbs/service/core"
	"github.com/ximlor/inv-nbs/service/logger"
	"github.com/ximlor/inv-nbs/service/tables"
)

func main() {
	// initialize context and signal handler, listen for interrupt and term signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load in environment variables from .env file, a missing file is fine
	envErr := godotenv.Load()

	mode, args := config.ModeRun, os.Args[1:]
	if len(args) > 0 && (args[0] == config.ModeRun || args[0] == config.ModeServe) {
		mode, args = args[0], args[1:]
	}

	cfg, err := config.Load(mode, args)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(l)
	ctx = l.WithContext(ctx)

	if envErr != nil {
		log.Debug().Err(envErr).Msg(".env not loaded")
	}

	switch mode {
	case config.ModeServe:
		err = serve(ctx, cfg)
	default:
		err = run(ctx, cfg)
	}

	if err != nil {
		log.Error().Err(err).Str("mode", mode).Msg("failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	sc := c.ServiceContext{
		Context: ctx,
		Source:  tables.NewSource(cfg.InputPath, cfg.Sheet),
	}

	format := cfg.SinkFormat()
	if format == tables.FormatPostgres {
		postgresConnection, err := r.GetPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer postgresConnection.Close()

		sc.Sink = &tables.PostgresSink{
			Repo:         postgresConnection,
			TableName:    cfg.OutputTable,
			PeriodColumn: cfg.PeriodColumn,
			Suffix:       cfg.RunSettings().ColumnSuffix(),
		}
	} else {
		sink, err := tables.NewFileSink(cfg.OutputPath, cfg.Sheet, format)
		if err != nil {
			return err
		}
		sc.Sink = sink
	}

	report, err := sc.Run(cfg.RunSettings())
	if err != nil {
		return err
	}

	return c.WriteReport(os.Stdout, report)
}

func serve(ctx context.Context, cfg *config.Config) error {
	sc := c.ServiceContext{Context: ctx}

	// get http server, makes all of the endpoints and routes
	s := c.GetHttpServer(sc, cfg.ServerSettings())

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.Addr).Msg("starting rolling returns server")
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// wait here until the context is closed (ie, ctrl+C) or the server fails to start
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("received shutdown signal, shutting down gracefully")

	// this gives the server 10 seconds to shutdown gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info().Msg("server stopped successfully")
	return nil
}
