package localstore

import (
	"context"
	"database/sql"
	"errors"
)

// PrefsStore keeps small operator preferences (last view, default report
// format) between console runs.
type PrefsStore struct {
	db *sql.DB
}

func NewPrefsStore(db *sql.DB) *PrefsStore {
	return &PrefsStore{db: db}
}

func (p *PrefsStore) Get(ctx context.Context, name string) (string, bool, error) {
	var v string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM console_prefs WHERE name = ?`, name).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (p *PrefsStore) Set(ctx context.Context, name, value string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM console_prefs WHERE name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO console_prefs (name, value) VALUES (?, ?)`, name, value); err != nil {
		return err
	}
	return tx.Commit()
}
