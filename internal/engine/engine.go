// Package engine runs the crowdfunding analysis workflow.
// It connects lazily to the configured warehouse, verifies the base table,
// and executes inspection, cleaning, aggregation, derived objects and
// analytics, recording each run in the state store.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/leapstack-labs/crowdstat/internal/state"
	"github.com/leapstack-labs/crowdstat/pkg/adapter"
	"github.com/leapstack-labs/crowdstat/pkg/core"
)

// DefaultTopLimit is the row count of the top-funded aggregation.
const DefaultTopLimit = 10

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Engine executes the analysis workflow against one base table.
type Engine struct {
	// Database adapter (lazy initialized)
	db          adapter.Adapter
	dbConfig    adapter.Config
	dbConnected bool
	dbMu        sync.Mutex

	// Set once the base table passed CheckSchema
	schemaOK bool

	logger *slog.Logger

	store       core.Store
	environment string
	table       string
	thresholds  core.Thresholds
	topLimit    int
}

// Config holds engine configuration.
type Config struct {
	// AdapterConfig selects and configures the warehouse adapter.
	AdapterConfig adapter.Config
	// Adapter is an already connected adapter. When set, AdapterConfig is ignored.
	Adapter adapter.Adapter
	// StatePath is the path to the SQLite state database (":memory:" when empty).
	StatePath string
	// Environment labels recorded runs (default "dev").
	Environment string
	// Table is the base relation (default "projects").
	Table string
	// Thresholds are the cut-offs used by derived objects (zero value uses defaults).
	Thresholds core.Thresholds
	// TopLimit is the size of the top-funded list (default 10).
	TopLimit int
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine. The warehouse is connected on first use.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	table := cfg.Table
	if table == "" {
		table = core.DefaultTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	env := cfg.Environment
	if env == "" {
		env = "dev"
	}

	thresholds := cfg.Thresholds
	if thresholds == (core.Thresholds{}) {
		thresholds = core.DefaultThresholds()
	}

	topLimit := cfg.TopLimit
	if topLimit < 0 {
		return nil, fmt.Errorf("top limit: %w", core.ErrInvalidLimit)
	}
	if topLimit == 0 {
		topLimit = DefaultTopLimit
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = ":memory:"
	}

	logger.Debug("initializing engine", "table", table, "environment", env, "state_path", statePath)

	store := state.NewSQLiteStore(logger)
	if err := store.Open(statePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.InitSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	dbConfig := cfg.AdapterConfig
	if dbConfig.Type == "" {
		dbConfig.Type = "duckdb"
	}

	return &Engine{
		db:          cfg.Adapter,
		dbConfig:    dbConfig,
		dbConnected: cfg.Adapter != nil,
		logger:      logger,
		store:       store,
		environment: env,
		table:       table,
		thresholds:  thresholds,
		topLimit:    topLimit,
	}, nil
}

// ensureDBConnected lazily connects to the database.
func (e *Engine) ensureDBConnected(ctx context.Context) error {
	e.dbMu.Lock()
	defer e.dbMu.Unlock()

	if e.dbConnected {
		return nil
	}

	e.logger.Debug("connecting to database", "adapter_type", e.dbConfig.Type)

	db, err := adapter.NewAdapter(e.dbConfig, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create database adapter: %w", err)
	}

	if err := db.Connect(ctx, e.dbConfig); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	e.db = db
	e.dbConnected = true

	e.logger.Debug("database connected", "dialect", db.Dialect().Name)
	return nil
}

// prepare connects and verifies the base table once per engine.
func (e *Engine) prepare(ctx context.Context) error {
	if err := e.ensureDBConnected(ctx); err != nil {
		return err
	}
	if e.schemaOK {
		return nil
	}
	if _, err := e.CheckSchema(ctx); err != nil {
		return err
	}
	e.schemaOK = true
	return nil
}

// CheckSchema verifies that the base table exists and has every required column.
func (e *Engine) CheckSchema(ctx context.Context) (*core.TableMetadata, error) {
	if err := e.ensureDBConnected(ctx); err != nil {
		return nil, err
	}

	meta, err := e.db.GetTableMetadata(ctx, e.table)
	if err != nil {
		var missing *core.MissingObjectError
		if errors.As(err, &missing) {
			e.logger.Error("base table missing", "table", e.table)
		}
		return nil, err
	}

	for _, col := range core.RequiredColumns {
		if !meta.HasColumn(col) {
			e.logger.Error("base table column missing", "table", e.table, "column", col)
			return nil, &core.MissingObjectError{Kind: "column", Name: col, Table: e.table}
		}
	}
	return meta, nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")

	var errs []error
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Table returns the base table name.
func (e *Engine) Table() string {
	return e.table
}

// Thresholds returns the cut-offs in effect.
func (e *Engine) Thresholds() core.Thresholds {
	return e.thresholds
}

// StateStore returns the state store.
func (e *Engine) StateStore() core.Store {
	return e.store
}

// Dialect returns the SQL dialect of the connected adapter, or nil before connection.
func (e *Engine) Dialect() *core.Dialect {
	if e.db == nil {
		return nil
	}
	return e.db.Dialect()
}
