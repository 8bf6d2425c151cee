// Command fs-api serves a read-only HTTP API over an aggregated dataset.
package main

import (
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/observer"
	"Go2FlavorSpectra/internal/query"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dapr/kit/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
)

var log = logger.NewLogger("flavorspectra.api.server")

func main() {
	cfg := config.Default()

	var configPath, source string
	fs := pflag.NewFlagSet("fs-api", pflag.ExitOnError)
	fs.StringVarP(&configPath, "config", "c", "", "Optional YAML configuration file")
	fs.StringVarP(&cfg.API.DatasetPath, "input", "i", cfg.API.DatasetPath, "CSV dataset written by fs-aggregate")
	fs.StringVarP(&cfg.API.ListenAddr, "listen", "l", cfg.API.ListenAddr, "Listen address")
	fs.StringVar(&source, "source", "csv", "Dataset source: csv, or clickhouse to read the first enabled clickhouse writer's table")
	fs.Parse(os.Args[1:])

	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		if fs.Changed("input") {
			loaded.API.DatasetPath = cfg.API.DatasetPath
		}
		if fs.Changed("listen") {
			loaded.API.ListenAddr = cfg.API.ListenAddr
		}
		cfg = loaded
	}

	logOpts := logger.DefaultOptions()
	logOpts.OutputLevel = string(observer.ParseLevel(cfg.Log.Level))
	logOpts.JSONFormatEnabled = cfg.Log.JSON
	if err := logger.ApplyOptionsToLoggers(&logOpts); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	querier, err := newQuerier(cfg, source)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r, err := query.NewRouter(querier, reg)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	server := &http.Server{
		Addr:              cfg.API.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if c, ok := querier.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warnf("Failed to close querier: %v", err)
		}
	}
	log.Info("API server exited.")
}

func newQuerier(cfg *config.Config, source string) (query.Querier, error) {
	switch source {
	case "csv":
		q, err := query.LoadCSV(cfg.API.DatasetPath)
		if err != nil {
			return nil, err
		}
		log.Infof("Loaded dataset from '%s'", cfg.API.DatasetPath)
		return q, nil
	case "clickhouse":
		for _, def := range cfg.Writers {
			if def.Enabled && def.Type == "clickhouse" {
				return query.NewClickHouseQuerier(def.ClickHouse)
			}
		}
		return nil, fmt.Errorf("no enabled clickhouse writer found in config")
	default:
		return nil, fmt.Errorf("unknown dataset source '%s'", source)
	}
}
