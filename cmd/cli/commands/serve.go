package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/pkg/api"
)

// ServeCmd creates the serve command, which runs the HTTP API
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := app.Cfg.ListenAddr
			if addr == "" {
				addr = ":8080"
			}

			e := api.NewServer(app.Database, app.Cfg, app.Logger, app.Metrics)
			app.Logger.Info("Starting HTTP server", zap.String("addr", addr))
			return e.Start(addr)
		},
	}
}
