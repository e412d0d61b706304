package batchflow

import (
	"github.com/juju/errors"

	"github.com/hinoue/batchflow/runtime"
	"github.com/hinoue/batchflow/store"
	"github.com/hinoue/batchflow/store/mem"
	"github.com/hinoue/batchflow/store/postgres"
	"github.com/hinoue/batchflow/types"
)

// NewEngine creates a new workflow engine with the given options
func NewEngine(opts ...types.EngineOption) (*runtime.Engine, error) {
	options := types.NewEngineOptions()
	for _, opt := range opts {
		opt(options)
	}

	var s store.Store
	var err error

	// PostgresConfig takes precedence over MemStore
	if options.PostgresConfig != nil {
		pgConfig := &postgres.Config{
			Host:     options.PostgresConfig.Host,
			Port:     options.PostgresConfig.Port,
			User:     options.PostgresConfig.User,
			Password: options.PostgresConfig.Password,
			Database: options.PostgresConfig.Database,
			SSLMode:  options.PostgresConfig.SSLMode,
		}

		s, err = postgres.NewPostgresStore(pgConfig)
		if err != nil {
			return nil, errors.Annotatef(err, "failed to create PostgreSQL store")
		}
	} else if options.MemStore {
		s = mem.NewMemStore()
	} else {
		// Default to mem store if not specified
		s = mem.NewMemStore()
	}

	return runtime.NewEngine(s, options), nil
}
