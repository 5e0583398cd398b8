// Package sqlstore persists records in SQLite or Postgres through sqlx.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/starford/caseificio/internal/models"
	"github.com/starford/caseificio/internal/state"
	"github.com/starford/caseificio/internal/storage"
)

const postgresDriver = "pgx"

// Store is a storage.Backend over a SQL database.
type Store struct {
	db   *sqlx.DB
	name string
}

var _ storage.Backend = (*Store)(nil)

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlstore: sqlite path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: resolve sqlite path: %w", err)
	}
	db, err := sqlx.Open(sqliteDriver, sqliteDSN(abs))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite: %w", err)
	}
	// One writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)
	return open(ctx, db, "sqlite")
}

// OpenPostgres connects to a Postgres server.
func OpenPostgres(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlstore: postgres dsn required")
	}
	db, err := sqlx.Open(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return open(ctx, db, "postgres")
}

func open(ctx context.Context, db *sqlx.DB, name string) (*Store, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: ping %s: %w", name, err)
	}
	s := &Store{db: db, name: name}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for i, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("sqlstore: schema statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

func (s *Store) Name() string { return s.name }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads every table inside one transaction.
func (s *Store) Load(ctx context.Context) (state.Snapshot, error) {
	var snap state.Snapshot
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var cts []cheeseTypeRow
		if err := tx.SelectContext(ctx, &cts, `SELECT * FROM cheese_types ORDER BY created_at, id`); err != nil {
			return fmt.Errorf("sqlstore: load cheese types: %w", err)
		}
		var ps []productionRow
		if err := tx.SelectContext(ctx, &ps, `SELECT * FROM productions ORDER BY created_at, id`); err != nil {
			return fmt.Errorf("sqlstore: load productions: %w", err)
		}
		var as []activityRow
		if err := tx.SelectContext(ctx, &as, `SELECT * FROM activities ORDER BY created_at, id`); err != nil {
			return fmt.Errorf("sqlstore: load activities: %w", err)
		}

		snap.CheeseTypes = make([]models.CheeseType, 0, len(cts))
		for _, r := range cts {
			m, err := r.model()
			if err != nil {
				return err
			}
			snap.CheeseTypes = append(snap.CheeseTypes, m)
		}
		snap.Productions = make([]models.Production, 0, len(ps))
		for _, r := range ps {
			m, err := r.model()
			if err != nil {
				return err
			}
			snap.Productions = append(snap.Productions, m)
		}
		snap.Activities = make([]models.Activity, 0, len(as))
		for _, r := range as {
			m, err := r.model()
			if err != nil {
				return err
			}
			snap.Activities = append(snap.Activities, m)
		}
		return nil
	})
	return snap, err
}

func (s *Store) SaveCheeseType(ctx context.Context, c models.CheeseType) error {
	if _, err := s.db.NamedExecContext(ctx, upsertCheeseType, toCheeseTypeRow(c)); err != nil {
		return fmt.Errorf("sqlstore: save cheese type %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) DeleteCheeseType(ctx context.Context, id string) error {
	return s.delete(ctx, "cheese_types", id)
}

func (s *Store) SaveProduction(ctx context.Context, p models.Production) error {
	if _, err := s.db.NamedExecContext(ctx, upsertProduction, toProductionRow(p)); err != nil {
		return fmt.Errorf("sqlstore: save production %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) DeleteProduction(ctx context.Context, id string) error {
	return s.delete(ctx, "productions", id)
}

func (s *Store) SaveActivity(ctx context.Context, a models.Activity) error {
	if _, err := s.db.NamedExecContext(ctx, upsertActivity, toActivityRow(a)); err != nil {
		return fmt.Errorf("sqlstore: save activity %s: %w", a.ID, err)
	}
	return nil
}

func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	return s.delete(ctx, "activities", id)
}

// delete removes one row; table is always one of the package constants.
func (s *Store) delete(ctx context.Context, table, id string) error {
	query := s.db.Rebind(`DELETE FROM ` + table + ` WHERE id = ?`)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("sqlstore: delete %s %s: %w", table, id, err)
	}
	return nil
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
