// Package store records batch runs in SQLite or Postgres.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/zsj-atlas/zsj-cli/internal/model"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = eris.New("run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
}

// Store is the run ledger.
type Store interface {
	CreateRun(ctx context.Context, input model.RunInput) (*model.Run, error)
	// FinishRun marks a run complete, or failed when runErr is non-nil.
	FinishRun(ctx context.Context, runID string, summary model.RunSummary, runErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store for driver, migrated and ready. DriverNone and an
// empty driver return a nil Store and no error.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = "zsj.db"
		}
		s, err = NewSQLite(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, eris.New("store: postgres requires store.database_url")
		}
		s, err = NewPostgres(ctx, dsn)
	case DriverNone, "":
		return nil, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func defaultLimit(n int) int {
	if n <= 0 {
		return 20
	}
	return n
}

func statusFor(runErr error) (model.RunStatus, string) {
	if runErr != nil {
		return model.RunStatusFailed, runErr.Error()
	}
	return model.RunStatusComplete, ""
}
