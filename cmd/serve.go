package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rayanlekkat/brio-lead-scraper/internal/api"
	"github.com/rayanlekkat/brio-lead-scraper/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and campaign scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	campaignsHandler := api.NewCampaignsHandler(a.leads)
	sched := scheduler.New(a.leads, a.scrape, a.log)
	campaignsHandler.SetScheduler(sched)

	server := api.NewServer(
		a.cfg.Server,
		a.cfg.App.Debug,
		a.log,
		campaignsHandler,
		api.NewDNCHandler(a.registry),
		api.NewJobsHandler(a.scrape, a.extract, a.leads, a.jobs),
		api.NewPoolHandler(a.pool),
	)

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		a.log.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		a.log.Info("context cancelled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
