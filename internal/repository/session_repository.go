package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
)

// SessionRepo persists the single session record (`auth` table) each user
// holds for the magic-link provider.  Every mutation is one UPDATE so that
// concurrent requests never need a lock: the last writer wins.
type SessionRepo struct {
	DB       *sql.DB
	Provider model.Provider
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db, Provider: model.ProviderMagicLink}
}

// SetMagicToken stores tokenID as the pending sign-in identifier,
// overwriting any previous one.  The record is created on first use.
func (r *SessionRepo) SetMagicToken(ctx context.Context, userID, tokenID string) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE auth SET magic_token=?, updated_at=? WHERE user_id=? AND provider=?",
		tokenID, now, userID, string(r.Provider))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO auth (user_id, provider, magic_token, created_at, updated_at) VALUES (?,?,?,?,?)",
		userID, string(r.Provider), tokenID, now, now)
	if isDuplicate(err) {
		// a concurrent request created the record first
		_, err = r.DB.ExecContext(ctx,
			"UPDATE auth SET magic_token=?, updated_at=? WHERE user_id=? AND provider=?",
			tokenID, now, userID, string(r.Provider))
	}
	return err
}

// ConsumeMagicToken clears the identifier and stores the new refresh digest
// in one statement.  ErrNotFound means the identifier is not (or no longer)
// the pending one.
func (r *SessionRepo) ConsumeMagicToken(ctx context.Context, userID, tokenID, refreshDigest string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE auth SET magic_token=NULL, refresh_token=?, updated_at=? WHERE user_id=? AND provider=? AND magic_token=?",
		refreshDigest, time.Now().UTC(), userID, string(r.Provider), tokenID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RefreshDigest returns the stored refresh digest.  A missing record and a
// null column both yield ErrNotFound.
func (r *SessionRepo) RefreshDigest(ctx context.Context, userID string) (string, error) {
	var digest sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT refresh_token FROM auth WHERE user_id=? AND provider=? LIMIT 1",
		userID, string(r.Provider)).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !digest.Valid) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return digest.String, nil
}

// ClearRefresh nulls the refresh digest, revoking every outstanding refresh
// token of the user.
func (r *SessionRepo) ClearRefresh(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE auth SET refresh_token=NULL, updated_at=? WHERE user_id=? AND provider=?",
		time.Now().UTC(), userID, string(r.Provider))
	return err
}

// Get returns the whole record, for admin tooling.
func (r *SessionRepo) Get(ctx context.Context, userID string) (*model.SessionRecord, error) {
	var (
		s       model.SessionRecord
		magic   sql.NullString
		refresh sql.NullString
		prov    string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, provider, magic_token, refresh_token, created_at, updated_at FROM auth WHERE user_id=? AND provider=? LIMIT 1",
		userID, string(r.Provider)).Scan(&s.ID, &s.UserID, &prov, &magic, &refresh, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Provider = model.Provider(prov)
	if magic.Valid {
		s.MagicToken = &magic.String
	}
	if refresh.Valid {
		s.RefreshDigest = &refresh.String
	}
	return &s, nil
}
