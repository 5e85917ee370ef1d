package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, primary_email, secondary_email, full_name, user_name, is_completed, role, is_deleted, created_at, updated_at"

// Create inserts a user with only the primary email set.  The email is
// normalized; a taken address (including a soft-deleted one) yields
// ErrConflict.
func (r *UserRepo) Create(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC().Truncate(time.Second)
	u := &model.User{
		ID:           uuid.NewString(),
		PrimaryEmail: email,
		Role:         model.PlatformUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, primary_email, full_name, user_name, is_completed, role, is_deleted, created_at, updated_at) VALUES (?,?,'','',?,?,?,?,?)",
		u.ID, u.PrimaryEmail, false, string(u.Role), false, now, now)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return u, nil
}

// FindByID fetches an active (not soft-deleted) user.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND is_deleted=0 LIMIT 1", id))
}

// FindByEmail fetches an active user by normalized primary email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE primary_email=? AND is_deleted=0 LIMIT 1", email))
}

// GetAnyByID fetches a user regardless of the soft-delete flag.  It is used
// by admin tooling only.
func (r *UserRepo) GetAnyByID(ctx context.Context, id string) (*model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// ProfileUpdate lists the profile fields a user may change.  Nil fields are
// left untouched.
type ProfileUpdate struct {
	FullName       *string
	UserName       *string
	SecondaryEmail *string
}

// UpdateProfile applies p and marks the profile complete once both name
// fields are non-empty.  It returns the updated user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (*model.User, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.FullName != nil {
		u.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.UserName != nil {
		u.UserName = strings.TrimSpace(*p.UserName)
	}
	if p.SecondaryEmail != nil {
		s := strings.ToLower(strings.TrimSpace(*p.SecondaryEmail))
		if s == "" {
			u.SecondaryEmail = nil
		} else {
			u.SecondaryEmail = &s
		}
	}
	u.IsCompleted = u.FullName != "" && u.UserName != ""
	u.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	var secondary sql.NullString
	if u.SecondaryEmail != nil {
		secondary = sql.NullString{String: *u.SecondaryEmail, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=?, user_name=?, secondary_email=?, is_completed=?, updated_at=? WHERE id=? AND is_deleted=0",
		u.FullName, u.UserName, secondary, u.IsCompleted, u.UpdatedAt, id)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return u, nil
}

// SoftDelete flags the user as deleted.  The row stays so that historical
// events and cohost entries keep their references.
func (r *UserRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_deleted=1, updated_at=? WHERE id=? AND is_deleted=0",
		time.Now().UTC(), id)
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

// PlatformRole returns the platform role of an active user.
func (r *UserRepo) PlatformRole(ctx context.Context, id string) (model.PlatformRole, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT role FROM users WHERE id=? AND is_deleted=0 LIMIT 1", id).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return model.PlatformRole(role), nil
}

// SetPlatformRole changes the platform role of a user.
func (r *UserRepo) SetPlatformRole(ctx context.Context, id string, role model.PlatformRole) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, updated_at=? WHERE id=? AND is_deleted=0",
		string(role), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var (
		u         model.User
		secondary sql.NullString
		role      string
	)
	err := row.Scan(&u.ID, &u.PrimaryEmail, &secondary, &u.FullName, &u.UserName,
		&u.IsCompleted, &role, &u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if secondary.Valid {
		s := secondary.String
		u.SecondaryEmail = &s
	}
	u.Role = model.PlatformRole(role)
	return &u, nil
}
