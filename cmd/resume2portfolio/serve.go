package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume2portfolio/internal/config"
	"github.com/jonathan/resume2portfolio/internal/server"
	"github.com/jonathan/resume2portfolio/internal/server/ratelimit"
	"github.com/jonathan/resume2portfolio/internal/transfer"
)

var (
	servePort       int
	serveBackendURL string
	serveConfigPath string
	serveNoThrottle bool
	serveTimeout    time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start an HTTP server that serves the upload page and the portfolio preview.

Settings are read from --config, then the environment (BACKEND_URL, PORT), then flags;
later sources win and anything left unset falls back to the defaults.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveBackendURL, "backend", config.DefaultBackendURL, "Base URL of the extraction backend")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a JSON config file")
	serveCmd.Flags().BoolVar(&serveNoThrottle, "no-throttle", false, "Disable per-client upload throttling")
	serveCmd.Flags().DurationVar(&serveTimeout, "backend-timeout", 0, "Upper bound for one backend submission (0 = none)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}

	backend, err := transfer.New(cfg.BackendURL, &transfer.Options{Timeout: serveTimeout})
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		Backend:     backend,
		MaxUploadMB: cfg.MaxUploadMB,
		RateLimit: &ratelimit.Config{
			Enabled:         !cfg.DisableThrottle,
			PerMinute:       cfg.UploadsPerMinute,
			Burst:           cfg.UploadBurst,
			CleanupInterval: 5 * time.Minute,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Using backend %s", backend.BaseURL())
	return srv.Start(ctx)
}

// resolveConfig layers config file, environment and explicitly set flags over
// the defaults, then validates the result.
func resolveConfig(cmd *cobra.Command, getenv func(string) string) (config.Config, error) {
	var fileCfg config.Config
	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	envCfg, err := config.FromEnv(getenv)
	if err != nil {
		return config.Config{}, err
	}

	cfg := envCfg.MergeWithDefaults(fileCfg)
	cfg.DisableThrottle = fileCfg.DisableThrottle

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = servePort
	}
	if flags.Changed("backend") {
		cfg.BackendURL = serveBackendURL
	}
	if flags.Changed("no-throttle") {
		cfg.DisableThrottle = serveNoThrottle
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
