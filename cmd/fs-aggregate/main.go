// Command fs-aggregate merges the per-run measurement logs under a results
// directory into one CSV dataset.
package main

import (
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/engine/manager"
	"Go2FlavorSpectra/internal/model"
	"Go2FlavorSpectra/internal/notification"
	"Go2FlavorSpectra/internal/observer"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dapr/kit/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

var log = logger.NewLogger("flavorspectra.aggregate")

type options struct {
	directory        string
	output           string
	configPath       string
	variant          string
	lenientIntervals bool
	logLevel         string
	logJSON          bool
}

func parseFlags(args []string, stderr io.Writer) (*pflag.FlagSet, *options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("fs-aggregate", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.directory, "directory", "d", "results", "Results root containing <test>/<flavor>/ run directories")
	fs.StringVarP(&opts.output, "output", "o", "combined_results.csv", "Path of the combined CSV dataset")
	fs.StringVarP(&opts.configPath, "config", "c", "", "Optional YAML configuration file")
	fs.StringVar(&opts.variant, "variant", "combined", "Input variant: combined (iperf3.json only) or discrete (ping.log, cwnd.log, iperf3.json)")
	fs.BoolVar(&opts.lenientIntervals, "lenient-intervals", false, "Drop malformed iperf3 intervals instead of skipping the run")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&opts.logJSON, "log-json", false, "Emit logs as JSON")
	if err := fs.Parse(args); err != nil {
		// ContinueOnError leaves reporting to the caller, except for --help.
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(stderr, err)
			fs.Usage()
		}
		return nil, nil, err
	}
	return fs, opts, nil
}

// loadConfig layers defaults, the optional config file, the environment and
// explicitly set flags, in that order.
func loadConfig(fs *pflag.FlagSet, opts *options) (*config.Config, error) {
	var cfg *config.Config
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
	}

	if fs.Changed("directory") {
		cfg.Pipeline.InputRoot = opts.directory
	}
	if fs.Changed("output") {
		cfg.Pipeline.OutputPath = opts.output
	}
	if fs.Changed("variant") {
		cfg.Pipeline.Variant = opts.variant
	}
	if fs.Changed("lenient-intervals") {
		cfg.Pipeline.IntervalPolicy = "abort"
		if opts.lenientIntervals {
			cfg.Pipeline.IntervalPolicy = "skip"
		}
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if fs.Changed("log-json") {
		cfg.Log.JSON = opts.logJSON
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs, opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(fs, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logOpts := logger.DefaultOptions()
	logOpts.OutputLevel = string(observer.ParseLevel(cfg.Log.Level))
	logOpts.JSONFormatEnabled = cfg.Log.JSON
	if err := logger.ApplyOptionsToLoggers(&logOpts); err != nil {
		fmt.Fprintf(stderr, "Failed to configure logging: %v\n", err)
		return 1
	}

	reg := prometheus.NewRegistry()
	metrics, err := observer.NewMetricsObserver(reg)
	if err != nil {
		log.Errorf("Failed to register metrics: %v", err)
		return 1
	}
	events := observer.Multi{observer.NewLogObserver(log), metrics}

	m, err := manager.NewManager(cfg, manager.WithObserver(events), manager.WithMetrics(metrics))
	if err != nil {
		log.Errorf("Failed to create pipeline: %v", err)
		return 1
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warnf("Failed to close writers: %v", err)
		}
	}()

	report, err := m.Run(ctx)
	notify(cfg.Notify, report)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingInput):
			log.Errorf("Results directory '%s' does not exist", cfg.Pipeline.InputRoot)
		case errors.Is(err, context.Canceled):
			log.Warn("Aggregation interrupted, no output written")
		default:
			log.Errorf("Aggregation failed: %v", err)
		}
		return 1
	}

	if !report.Empty {
		log.Infof("Aggregation finished: %s -> %s", report, cfg.Pipeline.OutputPath)
	}
	return 0
}

func notify(cfg config.NotifyConfig, report *manager.Report) {
	if cfg.SMTP.Host == "" || report == nil {
		return
	}
	n, err := notification.NewEmailNotifier(cfg.SMTP)
	if err != nil {
		log.Warnf("Email report disabled: %v", err)
		return
	}
	if err := notification.SendReport(n, report); err != nil {
		log.Warnf("Failed to send email report: %v", err)
		return
	}
	log.Info("Email report sent")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
