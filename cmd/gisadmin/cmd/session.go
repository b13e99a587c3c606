package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/gisadmin/internal/config"
	"github.com/dbsmedya/gisadmin/internal/database"
	"github.com/dbsmedya/gisadmin/internal/lock"
	"github.com/dbsmedya/gisadmin/internal/logger"
	"github.com/dbsmedya/gisadmin/internal/transfer"
	"github.com/dbsmedya/gisadmin/internal/types"
	"github.com/dbsmedya/gisadmin/internal/workspace"
)

// loadConfig loads the configuration file and applies the CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat, overrides.MaxSelection)
	return cfg, nil
}

// commandContext returns the command's context, cancelled on SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command, log *logger.Logger) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return database.SetupSignalHandler(parent, func(sig os.Signal) {
		log.Warnw("Received shutdown signal, stopping", "signal", sig.String())
	})
}

// workspaceSession is an open workspace with its transfer engine.
type workspaceSession struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.Manager
	ws     *workspace.Workspace
	engine *transfer.Engine
}

// openWorkspace validates the configuration and connects to the workspace.
func openWorkspace(ctx context.Context, cfg *config.Config, log *logger.Logger) (*workspaceSession, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dbManager := database.NewManager(cfg)
	if err := dbManager.Connect(ctx); err != nil {
		return nil, err
	}

	ws, err := workspace.New(dbManager.Workspace, cfg.Workspace.Database, cfg.Workspace.AliasTable, log)
	if err != nil {
		dbManager.Close()
		return nil, err
	}
	engine, err := transfer.NewStoreEngine(ws, log)
	if err != nil {
		dbManager.Close()
		return nil, err
	}

	return &workspaceSession{
		cfg:    cfg,
		log:    log,
		db:     dbManager,
		ws:     ws,
		engine: engine,
	}, nil
}

// Close closes the workspace connection.
func (s *workspaceSession) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Warnw("Failed to close workspace connection", "error", err)
	}
}

// table resolves a configured table name to a table handle.
func (s *workspaceSession) table(name string) types.Table {
	tc := s.cfg.GetTable(name)
	return types.Table{Name: tc.Table, IDField: tc.IDField}
}

// selectWhere applies a selection expression to t. An empty expression
// leaves the table without a selection.
func (s *workspaceSession) selectWhere(ctx context.Context, t types.Table, expr string) error {
	if expr == "" {
		return nil
	}
	p, err := types.ParsePredicate(expr)
	if err != nil {
		return err
	}
	return s.ws.SetSelection(ctx, t, p)
}

// withEditLock runs fn while holding the workspace edit lock, or without it
// when force is set.
func (s *workspaceSession) withEditLock(ctx context.Context, force bool, fn func() error) error {
	schema := s.cfg.Workspace.Database
	if force {
		s.log.Warnw("Skipping workspace edit lock (--force flag used)", "workspace", schema)
		return fn()
	}

	err := lock.WithEditLock(ctx, s.db.Workspace, schema, fn)
	if errors.Is(err, lock.ErrLockHeld) {
		return fmt.Errorf("workspace %q is being edited by another session (use --force to override): %w", schema, err)
	}
	return err
}

// runCommand loads the configuration, builds the logger and runs fn with a
// signal-aware context.
func runCommand(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, log *logger.Logger) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := commandContext(cmd, log)
	defer cancel()

	return fn(ctx, cfg, log)
}

// runWorkspaceCommand is runCommand with an open workspace.
func runWorkspaceCommand(cmd *cobra.Command, fn func(ctx context.Context, s *workspaceSession) error) error {
	return runCommand(cmd, func(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
		s, err := openWorkspace(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer s.Close()

		return fn(ctx, s)
	})
}
