package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"CampusFeed/internal/app"
	"CampusFeed/internal/config"
	"CampusFeed/internal/logging"
)

type runtime struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:           "campusfeed",
		Short:         "University news and activities feed with enrichment and personalized ranking",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if rt.configPath != "" {
				rt.cfg = config.LoadFile(rt.configPath)
			} else {
				rt.cfg = config.Load()
			}
			rt.logger = logging.New(rt.cfg.Logging.Level, rt.cfg.Logging.Format)
		},
	}
	root.PersistentFlags().StringVar(&rt.configPath, "config", "", "path to the YAML config (defaults to $CAMPUSFEED_CONFIG)")

	root.AddCommand(
		newServeCmd(rt),
		newIngestCmd(rt),
		newRefreshCmd(rt),
		newMigrateCmd(rt),
	)
	return root
}

func newServeCmd(rt *runtime) *cobra.Command {
	var addr string
	var noIngest bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the startup ingestion)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				rt.cfg.Server.Address = addr
			}
			if noIngest {
				rt.cfg.Ingestion.RunOnStart = false
			}

			application, err := app.New(cmd.Context(), rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer application.Close()

			return application.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.address")
	cmd.Flags().BoolVar(&noIngest, "no-ingest", false, "do not run the ingestion pipeline on start")
	return cmd
}

func newIngestCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run the ingestion pipeline once in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(cmd.Context(), rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Ingest(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: decision=%s loaded=%d persisted=%d\n",
				report.RunID, report.Decision, report.Loaded, report.Persisted)
			return nil
		},
	}
}

func newRefreshCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch article pages to refresh images and summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(cmd.Context(), rt.cfg, rt.logger)
			if err != nil {
				return err
			}
			defer application.Close()

			report, err := application.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed: images=%d summaries=%d failed=%d\n",
				report.Images, report.Summaries, report.Failed)
			return nil
		},
	}
}

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Migrate(rt.cfg, rt.logger)
		},
	}
}
