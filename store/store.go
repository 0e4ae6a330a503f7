// Package store keeps a history of solver runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"git.solver4all.com/azaryc2s/atsp"
)

// Run is one solved formulation of one instance.
type Run struct {
	ID        int64
	Instance  string
	Points    int
	Model     string
	Objective string
	Value     float64
	Gap       float64
	Runtime   float64
	Status    int
	Found     bool
	Optimal   bool
	Route     []int
	Comment   string
	CreatedAt time.Time
}

// NewRun records sol as computed for the named instance with n points.
func NewRun(instance string, n int, sol *atsp.Solution) Run {
	return Run{
		Instance:  instance,
		Points:    n,
		Model:     sol.Model,
		Objective: sol.Objective,
		Value:     sol.Value,
		Gap:       sol.Gap,
		Runtime:   sol.Runtime,
		Status:    sol.Status,
		Found:     sol.Found,
		Optimal:   sol.Optimal,
		Route:     sol.Route,
		Comment:   sol.Comment,
	}
}

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
	log *zap.Logger
}

// Open opens (or creates) the database at path and runs migrations.
// ":memory:" gives a private in-memory database.
func Open(path string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	// every connection to :memory: is a database of its own
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "ping db")
	}
	d := &DB{sql: sqlDB, log: logger}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "migrate db")
	}
	logger.Debug("Opened run database", zap.String("path", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// a fresh database has no schema_version table yet
	_ = d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS runs (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				instance   TEXT NOT NULL,
				points     INTEGER NOT NULL,
				model      TEXT NOT NULL,
				objective  TEXT NOT NULL,
				value      REAL NOT NULL,
				gap        REAL NOT NULL,
				runtime    REAL NOT NULL,
				status     INTEGER NOT NULL,
				found      INTEGER NOT NULL,
				optimal    INTEGER NOT NULL,
				route      TEXT NOT NULL,
				comment    TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_runs_instance ON runs(instance);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return err
		}
	}
	return nil
}

// Save inserts r and returns its ID. A zero CreatedAt is set to now.
func (d *DB) Save(ctx context.Context, r Run) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Route == nil {
		r.Route = []int{}
	}
	route, err := json.Marshal(r.Route)
	if err != nil {
		return 0, errors.Wrap(err, "encode route")
	}
	res, err := d.sql.ExecContext(ctx, `
		INSERT INTO runs (instance, points, model, objective, value, gap, runtime,
			status, found, optimal, route, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Instance, r.Points, r.Model, r.Objective, r.Value, r.Gap, r.Runtime,
		r.Status, r.Found, r.Optimal, string(route), r.Comment,
		r.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, errors.Wrap(err, "insert run")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "insert run")
	}
	d.log.Debug("Saved run", zap.Int64("id", id), zap.String("instance", r.Instance), zap.String("model", r.Model))
	return id, nil
}

// Runs returns the runs of the named instance in insertion order, or all
// runs when instance is empty.
func (d *DB) Runs(ctx context.Context, instance string) ([]Run, error) {
	query := `SELECT id, instance, points, model, objective, value, gap, runtime,
		status, found, optimal, route, comment, created_at FROM runs`
	var args []interface{}
	if instance != "" {
		query += " WHERE instance = ?"
		args = append(args, instance)
	}
	query += " ORDER BY id"

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			route     string
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.Instance, &r.Points, &r.Model, &r.Objective, &r.Value, &r.Gap,
			&r.Runtime, &r.Status, &r.Found, &r.Optimal, &route, &r.Comment, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		if err := json.Unmarshal([]byte(route), &r.Route); err != nil {
			return nil, errors.Wrapf(err, "decode route of run %d", r.ID)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, errors.Wrapf(err, "decode time of run %d", r.ID)
		}
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "query runs")
}
