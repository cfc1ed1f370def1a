package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/rotaplan/rotaplan/internal/config"
	"github.com/rotaplan/rotaplan/pkg/db"
	"github.com/rotaplan/rotaplan/pkg/metrics"
)

// AppContext holds the application dependencies shared across all commands.
// It is created empty at startup and populated by the root command's
// PersistentPreRunE before any subcommand runs.
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Metrics  *metrics.Sink
	Logger   *zap.Logger
	Ctx      context.Context
}
