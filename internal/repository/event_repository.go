// This file defines the event repository.  An event is created together
// with its CREATOR cohost row in one transaction, which is what keeps the
// one-creator-per-event invariant true.

package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
)

// EventRepo encapsulates all database queries related to events.
type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = "id, creator_id, name, slug, description, venue, start_time, end_time, capacity, is_cancelled, is_deleted, created_at, updated_at"

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify builds a readable slug with a short random suffix so that two
// events with the same name never collide.
func slugify(name string) string {
	base := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if len(base) > 48 {
		base = strings.Trim(base[:48], "-")
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// CreateWithCreator inserts e and a CREATOR cohost row for e.CreatorID.
// ID, Slug and timestamps are filled in on success.
func (r *EventRepo) CreateWithCreator(ctx context.Context, e *model.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)
	e.ID = uuid.NewString()
	e.Slug = slugify(e.Name)
	e.CreatedAt, e.UpdatedAt = now, now

	const qEvent = `INSERT INTO events (id, creator_id, name, slug, description, venue, start_time, end_time, capacity, is_cancelled, is_deleted, created_at, updated_at)
	                VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`
	if _, err := tx.ExecContext(ctx, qEvent, e.ID, e.CreatorID, e.Name, e.Slug, e.Description, e.Venue,
		e.StartTime.UTC(), e.EndTime.UTC(), e.Capacity, false, false, now, now); err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	const qCreator = "INSERT INTO cohosts (user_id, event_id, role, created_at) VALUES (?,?,?,?)"
	if _, err := tx.ExecContext(ctx, qCreator, e.CreatorID, e.ID, string(model.RoleCreator), now); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID fetches an event that is not soft-deleted.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id=? AND is_deleted=0", id).Scan(
		&e.ID, &e.CreatorID, &e.Name, &e.Slug, &e.Description, &e.Venue, &e.StartTime, &e.EndTime,
		&e.Capacity, &e.IsCancelled, &e.IsDeleted, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EventUpdate lists the editable fields of an event.  Nil fields are left
// untouched.
type EventUpdate struct {
	Name        *string
	Description *string
	Venue       *string
	StartTime   *time.Time
	EndTime     *time.Time
	Capacity    *int
	IsCancelled *bool
}

// Update applies u to the event and returns the stored result.
func (r *EventRepo) Update(ctx context.Context, id string, u EventUpdate) (*model.Event, error) {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Venue != nil {
		e.Venue = *u.Venue
	}
	if u.StartTime != nil {
		e.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		e.EndTime = *u.EndTime
	}
	if u.Capacity != nil {
		e.Capacity = *u.Capacity
	}
	if u.IsCancelled != nil {
		e.IsCancelled = *u.IsCancelled
	}
	e.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	const q = `UPDATE events SET name=?, description=?, venue=?, start_time=?, end_time=?, capacity=?, is_cancelled=?, updated_at=?
	           WHERE id=? AND is_deleted=0`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Description, e.Venue, e.StartTime.UTC(), e.EndTime.UTC(),
		e.Capacity, e.IsCancelled, e.UpdatedAt, id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return e, nil
}

// SoftDelete hides the event from every lookup.
func (r *EventRepo) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE events SET is_deleted=1, updated_at=? WHERE id=? AND is_deleted=0", time.Now().UTC(), id)
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
