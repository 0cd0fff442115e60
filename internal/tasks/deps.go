// Package tasks implements scheduled background tasks for the Oracle
// service. It includes task definitions, dependencies, and the gocron-based
// scheduler that runs them.
package tasks

import (
	"log/slog"

	"github.com/relatahq/oracle/internal/config"
	"github.com/relatahq/oracle/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
