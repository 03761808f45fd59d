package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/oskarb/docmend/internal/audit"
	"github.com/oskarb/docmend/internal/engine"
	"github.com/oskarb/docmend/internal/registry"
	"github.com/oskarb/docmend/internal/storage"
)

// App bundles the initialized services for one command invocation.
type App struct {
	config *Config

	Registry *registry.DB
	Store    storage.Provider
	Engine   *engine.Engine
	Audit    *audit.Service
}

// Bootstrap initializes logging, storage, the registry, and the services
// over them. The caller owns the returned App and must Close it.
func Bootstrap(opts ...Option) (*App, error) {
	app := &App{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		slog.String("workspace_path", cfg.Workspace.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Workspace.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Workspace.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := registry.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init registry: %w", err)
	}

	app.Registry = db
	app.Store = store
	app.Engine = engine.New(store, db)
	app.Audit = audit.NewService(db)
	return app, nil
}

// Close releases the registry connection.
func (a *App) Close() error {
	if a.Registry != nil {
		return a.Registry.Close()
	}
	return nil
}
