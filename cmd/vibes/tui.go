package main

import (
	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibes/internal/tui"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface for browsing and playing the playlist.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI()
		},
	}
}

func (app *Application) launchTUI() error {
	res, err := app.resource()
	if err != nil {
		return err
	}
	return tui.NewApp(app.Config, app.Catalog, res).Run()
}
