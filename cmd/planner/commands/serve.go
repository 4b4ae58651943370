package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpHandlers "github.com/fokusplaner/core/internal/adapters/http"
	"github.com/fokusplaner/core/internal/adapters/storage"
	"github.com/fokusplaner/core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the FokusPlaner API server",
		Long:  "Start the HTTP API with the focus timer ticking in the background. With storage.watch set, edits to the data files are picked up.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServer(cmd.Context())
		},
	}
	cmd.Flags().Int("port", 0, "listen port")
	return cmd
}

func (a *app) runServer(ctx context.Context) error {
	handlers := httpHandlers.NewHandlers(a.planner, a.feed, a.log)
	srv := server.New(a.cfg, handlers, a.storage, a.metrics, a.log)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(a.cfg.Server.Address())
	})

	g.Go(func() error {
		return a.planner.Focus.Run(ctx)
	})

	if fs, ok := a.storage.(*storage.FileStorage); ok && a.cfg.Storage.Watch {
		watcher := storage.NewWatcher(fs, a.planner.Store.Reload, a.log)
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	a.log.Infow("FokusPlaner API server started",
		"address", a.cfg.Server.Address(),
		"backend", a.cfg.Storage.Backend,
		"environment", a.cfg.App.Environment,
	)

	return g.Wait()
}
