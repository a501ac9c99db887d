package store

import (
	"fmt"

	"github.com/Iron-Ham/taskstack/internal/config"
	"github.com/Iron-Ham/taskstack/internal/errors"
)

// Open creates the backend selected by cfg.Backend.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(cfg.ResolveDataDir())
	case BackendSQLite:
		return NewSQLiteStore(cfg.ResolveSQLitePath())
	}
	return nil, errors.NewValidationError(fmt.Sprintf("unknown store backend %q", cfg.Backend)).
		WithField("store.backend")
}
