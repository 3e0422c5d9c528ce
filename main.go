// Command scopehound watches competitor websites, feeds and launches and
// posts what changed to a team chat channel.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"scopehound/launch"
	"scopehound/llm"
	"scopehound/notify"
	"scopehound/pkg/monitor"
	"scopehound/scan"
	"scopehound/scraper"
	"scopehound/server"
	"scopehound/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "scopehound",
		Short:        "Competitive intelligence change detection",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newScanCmd(), newTickCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the scan triggers and dashboard over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), loadConfig())
			if err != nil {
				return err
			}
			defer a.close()

			srv := server.New(&server.Config{
				Scans:      a.coordinator,
				Dashboards: a.store,
				IsNotFound: storage.IsNotFound,
				Logger:     a.logger,
				Token:      a.cfg.ScanToken,
			})
			if err := srv.ListenAndServe(cmd.Context(), a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Server failed", "error", err)
				return err
			}
			return nil
		},
	}
}

func newScanCmd() *cobra.Command {
	var tenant, configPath string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan and print the number of alerts sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var override *monitor.Config
			if configPath != "" {
				var err error
				if override, err = loadConfigFile(configPath); err != nil {
					return err
				}
			}

			a, err := newApp(cmd.Context(), loadConfig())
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.coordinator.Trigger(cmd.Context(), tenant, override)
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			return printAlertsSent(cmd, n)
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant to scan (empty for single-tenant mode)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML monitor configuration to scan instead of the stored one")
	return cmd
}

func newTickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run the scheduled scan once across all active tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), loadConfig())
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.coordinator.Tick(cmd.Context())
			if err != nil {
				return fmt.Errorf("tick: %w", err)
			}
			return printAlertsSent(cmd, n)
		},
	}
}

func printAlertsSent(cmd *cobra.Command, n int) error {
	return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int{"alertsSent": n})
}

// app holds the wired dependencies shared by every command.
type app struct {
	cfg         config
	logger      *slog.Logger
	kv          storage.KV
	store       *storage.Store
	coordinator *scan.Coordinator
}

func newApp(ctx context.Context, cfg config) (*app, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	kv, err := openKV(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		return nil, err
	}
	store := storage.NewStore(kv, logger)

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var runner llm.Runner
	if cfg.CFAccountID != "" && cfg.CFAPIToken != "" {
		runner = llm.NewWorkersAI(cfg.CFAccountID, cfg.CFAPIToken, logger)
	} else {
		logger.Info("No CF_ACCOUNT_ID/CF_API_TOKEN, model analysis disabled")
	}

	dispatcher := notify.NewDispatcher(httpClient, logger)
	if cfg.DigestEmailTo != "" {
		gmailService, err := initGmailService(ctx, httpClient, cfg.GoogleCreds)
		if err != nil {
			logger.Warn("Failed to initialize Gmail service, digest email disabled", "error", err)
		} else {
			dispatcher.WithMailer(notify.NewGmailProvider(gmailService, logger), cfg.DigestEmailTo)
		}
	}

	scanner := scan.New(
		scraper.New(nil, logger).WithTimeout(cfg.FetchTimeout),
		llm.NewAnalyst(runner, cfg.AIModel, logger),
		launch.New(cfg.LaunchEndpoint, httpClient, logger),
		store,
		dispatcher,
		logger,
	)

	return &app{
		cfg:         cfg,
		logger:      logger,
		kv:          kv,
		store:       store,
		coordinator: scan.NewCoordinator(scanner, store, cfg.MultiTenant, cfg.ScanConcurrency, logger),
	}, nil
}

func (a *app) close() {
	if err := a.kv.Close(); err != nil {
		a.logger.Warn("Failed to close storage", "error", err)
	}
}
