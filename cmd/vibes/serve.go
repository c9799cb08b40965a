package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibes/internal/logger"
	"github.com/hazadus/go-vibes/internal/server"
)

// createServeCommand создает команду serve с привязкой к экземпляру приложения
func (app *Application) createServeCommand(ctx context.Context) *cobra.Command {
	var (
		addr      string
		logOutput string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over a read-only HTTP API",
		Long:  `Serve tracks, genres and playlist stats as JSON with the same search, genre and sort rules as the TUI.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = app.Config.Server.Addr
			}
			if logOutput != "" {
				closeLog, err := logger.Init(logger.Config{
					Output: logOutput,
					Level:  app.Config.Log.Level,
					File:   app.Config.Log.File,
				})
				if err != nil {
					return err
				}
				defer func() {
					_ = closeLog()
				}()
			}
			return app.serve(ctx, cmd.OutOrStdout(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	cmd.Flags().StringVar(&logOutput, "log-output", "stdout", "log output for the server: stdout, stderr, file")
	return cmd
}

func (app *Application) serve(ctx context.Context, out io.Writer, addr string) error {
	environment := os.Getenv("VIBES_ENV")
	if environment == "" {
		environment = "development"
	}

	srv := server.NewServer(app.Catalog, server.Info{
		Name:        "vibes",
		Version:     appVersion,
		Environment: environment,
		Playlist:    app.Config.Playlist.Title,
	})

	handler := srv.Router(
		middleware.RequestID,
		middleware.RealIP,
		server.Logger,
		middleware.Recoverer,
	)

	fmt.Fprintf(out, "🌐 API каталога доступен по адресу %s (треков: %d)\n", addr, app.Catalog.Len())
	return server.ListenAndServe(ctx, addr, handler)
}
