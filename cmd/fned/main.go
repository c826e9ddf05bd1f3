package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/k9fne/fned/pkg/config"
	"github.com/k9fne/fned/pkg/fne"
	"github.com/k9fne/fned/pkg/logger"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	configFile := flag.String("config", "", "Path to configuration file (required)")
	flag.StringVar(configFile, "c", "", "Path to configuration file (shorthand)")
	logLevel := flag.String("l", "", "Log level, overriding the configuration file's")
	showVersion := flag.Bool("version", false, "Show version information")
	validateOnly := flag.Bool("validate", false, "Validate configuration and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fned %s\n", version)
		fmt.Printf("Git Commit: %s\n", gitCommit)
		fmt.Printf("Built: %s\n", buildTime)
		os.Exit(0)
	}

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "fned: a configuration file is required (-c <config>)")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: "info", Format: "text"})
	log.Info("starting fned",
		logger.String("version", version),
		logger.String("commit", gitCommit),
		logger.String("build_time", buildTime))

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	if *validateOnly {
		log.Info("configuration is valid")
		os.Exit(0)
	}

	log.Info("configuration loaded", logger.String("config_file", *configFile))

	// Reinitialize with the levels named in the loaded config, and
	// redirect output to the configured log file if one is set.
	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if *logLevel != "" {
		logCfg.Level = *logLevel
	}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Warn("failed to open log file, logging to stdout", logger.Error(err), logger.String("path", cfg.Log.File))
		} else {
			logCfg.Output = f
		}
	}
	log = logger.New(logCfg)

	core, err := fne.NewCore(cfg, log.WithComponent("fne"))
	if err != nil {
		log.Error("failed to initialize core", logger.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	runErr := make(chan error, 1)
	go func() {
		runErr <- core.Run(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
		cancel()
		if err := <-runErr; err != nil {
			log.Error("core stopped with error", logger.Error(err))
		}
	case err := <-runErr:
		if err != nil {
			log.Error("core exited with error", logger.Error(err))
			os.Exit(1)
		}
	}

	log.Info("fned stopped")
}
