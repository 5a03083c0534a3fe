package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chriscorrea/ideascore/internal/app"
	"github.com/chriscorrea/ideascore/internal/config"
	"github.com/chriscorrea/ideascore/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		Long: `Serve starts a small web interface with an idea form, a JSON API at
/api/v1/analyze and a health check at /healthz.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("bind", "", "Address to listen on (default: 127.0.0.1:8080)")
	cmd.Flags().String("report", "", "Also save every web result as CSV to this path")
	cmd.Flags().Bool("no-cache", false, "Always query GitHub, bypassing the corpus cache")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	cfg, exists, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// a long running server logs requests by default
	level := cfg.Logging.Level
	if !exists {
		level = "info"
	}
	setupLogger(debug, level)

	bind, _ := cmd.Flags().GetString("bind")
	if bind == "" {
		bind = cfg.Server.Bind
	}
	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath == "" {
		reportPath = cfg.Server.ReportPath
	}
	if reportPath, err = config.ExpandPath(reportPath); err != nil {
		return err
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	searcher, closer, err := app.NewSearcher(cfg, !noCache)
	if err != nil {
		return fmt.Errorf("corpus cache: %w", err)
	}
	defer closer.Close()

	analyzer := app.New(searcher, app.Options{TopK: cfg.Report.TopK, Language: cfg.GitHub.Language})
	srv := server.New(analyzer, server.Options{
		Bind:       bind,
		ReportPath: reportPath,
		Language:   cfg.GitHub.Language,
		WarnBelow:  cfg.Report.WarnBelow,
	})
	return srv.ListenAndServe(ctx)
}
