package localstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"sge-console/core/rbac"
)

// SavedSession is the durable trace of an authenticated session: an
// identity snapshot plus the encrypted bearer token.
type SavedSession struct {
	Identity  rbac.Identity
	TokenBlob string // base64 AES-GCM blob
	KeySalt   string // base64 argon2 salt
	SavedAt   time.Time
}

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save replaces the single saved session. The token is written only by
// login; there is never more than one.
func (s *SessionStore) Save(ctx context.Context, sess SavedSession) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM console_session`); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO console_session (id, username, full_name, role, token_blob, key_salt, saved_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)`,
		sess.Identity.Username, sess.Identity.FullName, sess.Identity.Role,
		sess.TokenBlob, sess.KeySalt, sess.SavedAt.UTC(),
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the saved session, or ok=false when none exists.
func (s *SessionStore) Load(ctx context.Context) (SavedSession, bool, error) {
	var sess SavedSession
	row := s.db.QueryRowContext(ctx, `
		SELECT username, full_name, role, token_blob, key_salt, saved_at
		FROM console_session WHERE id = 1`)
	err := row.Scan(
		&sess.Identity.Username, &sess.Identity.FullName, &sess.Identity.Role,
		&sess.TokenBlob, &sess.KeySalt, &sess.SavedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedSession{}, false, nil
	}
	if err != nil {
		return SavedSession{}, false, err
	}
	sess.Identity.Active = true
	return sess, true, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM console_session`)
	return err
}
