package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"
	"github.com/utilitywarehouse/ghopac/syncer"
	"github.com/utilitywarehouse/ghopac/syncpool"
)

const metricsNamespace = "ghopac"

var (
	loggerLevel = new(slog.LevelVar)
	logger      *slog.Logger

	levelStrings = map[string]slog.Level{
		"trace": slog.Level(-8),
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Sources: cli.EnvVars("GHOPAC_CONFIG"),
			Usage:   "Path to the config file. Defaults to ghopac/config.yaml or ghopac/config.json in the XDG config dirs.",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Sources: cli.EnvVars("LOG_LEVEL"),
			Value:   "info",
			Usage:   "Log level (trace, debug, info, warn, error)",
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Sources: cli.EnvVars("GHOPAC_CONCURRENCY"),
			Usage:   "Number of repositories synced in parallel, overrides config value.",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Sources: cli.EnvVars("GHOPAC_VERBOSE"),
			Usage:   "Log every successful clone and update.",
		},
		&cli.StringFlag{
			Name:    "git",
			Sources: cli.EnvVars("GHOPAC_GIT"),
			Usage:   "Path to the git executable, defaults to git from PATH.",
		},
		&cli.StringFlag{
			Name:    "metrics-file",
			Sources: cli.EnvVars("GHOPAC_METRICS_FILE"),
			Usage:   "Write metrics in Prometheus text format to this file after a run.",
		},
		&cli.StringFlag{
			Name:    "schedule",
			Sources: cli.EnvVars("GHOPAC_SCHEDULE"),
			Usage:   "Cron schedule, when set ghopac keeps running and syncs on every tick.",
		},
		&cli.StringFlag{
			Name:    "http-bind-address",
			Sources: cli.EnvVars("GHOPAC_HTTP_BIND_ADDRESS"),
			Value:   ":9001",
			Usage:   "Address the metrics server listens on when running on a schedule.",
		},
	}
)

func init() {
	loggerLevel.Set(slog.LevelInfo)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: loggerLevel,
	}))
}

func main() {
	cmd := &cli.Command{
		Name:  appName,
		Usage: "ghopac clones and updates every repository of your GitHub organisations.",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// set log level according to argument
			if v, ok := levelStrings[strings.ToLower(c.String("log-level"))]; ok {
				loggerLevel.Set(v)
			}

			configPath, err := findConfigFile(c.String("config"))
			if err != nil {
				if c.String("config") != "" {
					logger.Error("unable to find config file", "err", err)
				} else {
					if err := printSampleConfig(os.Stderr, defaultConfigPath()); err != nil {
						logger.Error("unable to print sample config", "err", err)
					}
				}
				os.Exit(1)
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(configSuccess, configSuccessTime)
			syncer.EnableMetrics(metricsNamespace, registry)
			syncpool.EnableMetrics(metricsNamespace, registry)

			opts := runOptions{
				gitExec:     c.String("git"),
				concurrency: c.Int("concurrency"),
				verbose:     c.Bool("verbose"),
			}

			if spec := c.String("schedule"); spec != "" {
				return runDaemon(ctx, spec, c.String("http-bind-address"), configPath, opts, registry)
			}

			conf, err := loadConfig(configPath)
			if err != nil {
				logger.Error("unable to parse config file", "path", configPath, "err", err)
				os.Exit(1)
			}

			res, err := runSync(ctx, conf, opts, githubLister(ctx, conf, logger.With("logger", "github")), logger)
			if err != nil {
				logger.Error("unable to run sync", "err", err)
				os.Exit(1)
			}

			if path := c.String("metrics-file"); path != "" {
				if err := prometheus.WriteToTextfile(path, registry); err != nil {
					logger.Error("unable to write metrics file", "path", path, "err", err)
				}
			}

			os.Exit(res.ExitCode())
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("failed to run app", "err", err)
		os.Exit(1)
	}
}

// runDaemon runs a sync pass on every schedule tick until SIGINT or SIGTERM.
// config is re-read on every tick. Running git commands are never interrupted,
// shutdown waits for the running pass to finish.
func runDaemon(ctx context.Context, spec, bindAddr, configPath string, opts runOptions, registry *prometheus.Registry) error {
	cl := cronLogger{logger.With("logger", "scheduler")}
	scheduler := cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl)))

	if _, err := scheduler.AddFunc(spec, func() { scheduledSync(ctx, configPath, opts) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	server, err := startMetricsServer(bindAddr, registry)
	if err != nil {
		return err
	}

	scheduler.Start()
	logger.Info("scheduler started", "schedule", spec, "metrics", bindAddr)

	//listenForShutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down, waiting for running sync to finish")
	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// startMetricsServer binds to addr and serves /metrics in background.
// bind errors are returned straight away.
func startMetricsServer(addr string, registry *prometheus.Registry) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("unable to start metrics server on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server terminated", "err", err)
		}
	}()

	return server, nil
}

func scheduledSync(ctx context.Context, configPath string, opts runOptions) {
	conf, err := loadConfig(configPath)
	if err != nil {
		logger.Error("unable to reload config file, skipping sync", "path", configPath, "err", err)
		return
	}

	if _, err := runSync(ctx, conf, opts, githubLister(ctx, conf, logger.With("logger", "github")), logger); err != nil {
		logger.Error("unable to run sync", "err", err)
	}
}

// cronLogger implements cron.Logger on top of slog
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "err", err)...)
}
