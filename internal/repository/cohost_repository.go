package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
)

// CohostRepo persists (user, event, role) triples.
type CohostRepo struct{ DB *sql.DB }

func NewCohostRepo(db *sql.DB) *CohostRepo { return &CohostRepo{DB: db} }

// FindRole returns the role userID holds on eventID.  Rows belonging to
// soft-deleted events or users are ignored, so ErrNotFound covers them too.
func (r *CohostRepo) FindRole(ctx context.Context, userID, eventID string) (model.CohostRole, error) {
	const q = `SELECT c.role FROM cohosts c
	           JOIN events e ON e.id = c.event_id
	           JOIN users u ON u.id = c.user_id
	           WHERE c.user_id=? AND c.event_id=? AND e.is_deleted=0 AND u.is_deleted=0 LIMIT 1`
	var role string
	err := r.DB.QueryRowContext(ctx, q, userID, eventID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return model.CohostRole(role), nil
}

// Add grants role on eventID to userID.  CREATOR cannot be granted here;
// it only comes from event creation.
func (r *CohostRepo) Add(ctx context.Context, eventID, userID string, role model.CohostRole) (*model.Cohost, error) {
	if role == model.RoleCreator || !role.Valid() {
		return nil, ErrForbidden
	}
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO cohosts (user_id, event_id, role, created_at) VALUES (?,?,?,?)",
		userID, eventID, string(role), now)
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Cohost{ID: uint64(id), UserID: userID, EventID: eventID, Role: role, CreatedAt: now}, nil
}

// ListByEvent returns the cohosts of an event, creator first.
func (r *CohostRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.Cohost, error) {
	const q = `SELECT c.id, c.user_id, c.event_id, c.role, u.primary_email, u.full_name, c.created_at
	           FROM cohosts c JOIN users u ON u.id = c.user_id
	           WHERE c.event_id=? AND u.is_deleted=0
	           ORDER BY CASE c.role WHEN 'CREATOR' THEN 0 WHEN 'MANAGER' THEN 1 WHEN 'READ_ONLY' THEN 2 ELSE 3 END, c.id`
	rows, err := r.DB.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Cohost
	for rows.Next() {
		c := new(model.Cohost)
		var role string
		if err := rows.Scan(&c.ID, &c.UserID, &c.EventID, &role, &c.Email, &c.FullName, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Role = model.CohostRole(role)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes a non-creator cohost.  Removing the creator returns
// ErrForbidden; a missing row returns ErrNotFound.
func (r *CohostRepo) Remove(ctx context.Context, eventID, userID string) error {
	role, err := r.roleOf(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if role == model.RoleCreator {
		return ErrForbidden
	}
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM cohosts WHERE event_id=? AND user_id=? AND role<>?",
		eventID, userID, string(model.RoleCreator))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CohostRepo) roleOf(ctx context.Context, eventID, userID string) (model.CohostRole, error) {
	var role string
	err := r.DB.QueryRowContext(ctx,
		"SELECT role FROM cohosts WHERE event_id=? AND user_id=? LIMIT 1", eventID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return model.CohostRole(role), nil
}
