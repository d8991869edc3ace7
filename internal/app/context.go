package app

import (
	"context"
	"database/sql"
	"fmt"

	"portfolio/internal/config"
	"portfolio/internal/db"
	"portfolio/internal/engine"
	"portfolio/internal/migrate"
)

// Env is an opened workspace: migrated database, loaded config and an engine
// over both.
type Env struct {
	Workspace string
	DB        *sql.DB
	Config    *config.Config
	Engine    engine.Engine
}

// Open prepares the workspace for use. A missing folio.yml falls back to the
// built-in config.
func Open(ctx context.Context, workspace string) (*Env, error) {
	if _, err := db.EnsureWorkspace(workspace); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open %s: %w", db.Path(workspace), err)
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Env{
		Workspace: workspace,
		DB:        conn,
		Config:    cfg,
		Engine:    engine.New(conn, cfg),
	}, nil
}

// Close releases the database.
func (e *Env) Close() error {
	return e.DB.Close()
}
