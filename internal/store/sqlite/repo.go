// Package sqlite provides a SQLite-backed alert repository. It is the
// transactional alternative to the in-memory store: the triggered
// transition is a conditional UPDATE, so the at-most-once guarantee
// holds even across processes sharing the database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stockpulse/internal/alerts"
	"stockpulse/internal/model"
)

// RepoConfig configures the SQLite repository.
type RepoConfig struct {
	DBPath string // path to the database file, e.g. "data/alerts.db"
}

// Repository implements alerts.Repository on SQLite.
type Repository struct {
	db *sql.DB
}

var _ alerts.Repository = (*Repository)(nil)

// New opens the database with WAL mode and initializes the schema.
func New(cfg RepoConfig) (*Repository, error) {
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer keeps the conditional updates serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Repository{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS alerts (
			id            TEXT    PRIMARY KEY,
			symbol        TEXT    NOT NULL,
			display_name  TEXT    NOT NULL,
			alert_type    TEXT    NOT NULL,
			target_value  REAL    NOT NULL,
			last_observed REAL,
			is_active     INTEGER NOT NULL DEFAULT 1,
			is_triggered  INTEGER NOT NULL DEFAULT 0,
			triggered_at  INTEGER,
			created_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_created ON alerts (created_at DESC);
	`)
	return err
}

// Close releases the database handle.
func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) Insert(ctx context.Context, a model.Alert) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts
			(id, symbol, display_name, alert_type, target_value, last_observed,
			 is_active, is_triggered, triggered_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Symbol, a.DisplayName, string(a.Type), a.TargetValue, a.LastObserved,
		boolInt(a.IsActive), boolInt(a.IsTriggered), millisPtr(a.TriggeredAt),
		a.CreatedAt.UnixMilli(), a.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite insert: %w", err)
	}
	return nil
}

const alertCols = `id, symbol, display_name, alert_type, target_value, last_observed,
	is_active, is_triggered, triggered_at, created_at, updated_at`

func (r *Repository) Get(ctx context.Context, id string) (model.Alert, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+alertCols+` FROM alerts WHERE id = ?`, id)
	return scanAlert(row)
}

func (r *Repository) List(ctx context.Context, f alerts.Filter) ([]model.Alert, error) {
	q := `SELECT ` + alertCols + ` FROM alerts`
	switch f {
	case alerts.FilterActive:
		q += ` WHERE is_active = 1 AND is_triggered = 0`
	case alerts.FilterTriggered:
		q += ` WHERE is_triggered = 1`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite list: %w", err)
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) SetActive(ctx context.Context, id string, active bool, now time.Time) (model.Alert, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE alerts SET is_active = ?, updated_at = ? WHERE id = ?`,
		boolInt(active), now.UnixMilli(), id)
	if err != nil {
		return model.Alert{}, fmt.Errorf("sqlite set active: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Alert{}, alerts.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return alerts.ErrNotFound
	}
	return nil
}

func (r *Repository) MarkTriggered(ctx context.Context, id string, price float64, now time.Time) (model.Alert, bool, error) {
	// The WHERE clause is the compare-and-set: only an untriggered row
	// transitions, and RowsAffected tells us whether this call won.
	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts
		SET is_triggered = 1, triggered_at = ?, last_observed = ?, updated_at = ?
		WHERE id = ? AND is_triggered = 0`,
		now.UnixMilli(), price, now.UnixMilli(), id)
	if err != nil {
		return model.Alert{}, false, fmt.Errorf("sqlite trigger: %w", err)
	}
	n, _ := res.RowsAffected()

	a, err := r.Get(ctx, id)
	if err != nil {
		return model.Alert{}, false, err
	}
	return a, n == 1, nil
}

func (r *Repository) RecordObservation(ctx context.Context, id string, price float64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET last_observed = ?, updated_at = ?
		WHERE id = ? AND is_triggered = 0`,
		price, now.UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("sqlite observe: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either unknown or already triggered; distinguish for the caller.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlert(row scanner) (model.Alert, error) {
	var (
		a           model.Alert
		typ         string
		active      int
		triggered   int
		triggeredAt sql.NullInt64
		created     int64
		updated     int64
	)
	err := row.Scan(&a.ID, &a.Symbol, &a.DisplayName, &typ, &a.TargetValue, &a.LastObserved,
		&active, &triggered, &triggeredAt, &created, &updated)
	if err == sql.ErrNoRows {
		return model.Alert{}, alerts.ErrNotFound
	}
	if err != nil {
		return model.Alert{}, fmt.Errorf("sqlite scan: %w", err)
	}

	a.Type = model.AlertType(typ)
	a.IsActive = active == 1
	a.IsTriggered = triggered == 1
	if triggeredAt.Valid {
		t := time.UnixMilli(triggeredAt.Int64)
		a.TriggeredAt = &t
	}
	a.CreatedAt = time.UnixMilli(created)
	a.UpdatedAt = time.UnixMilli(updated)
	return a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}
