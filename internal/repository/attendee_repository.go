package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
)

// AttendeeRepo stores RSVPs.
type AttendeeRepo struct{ DB *sql.DB }

func NewAttendeeRepo(db *sql.DB) *AttendeeRepo { return &AttendeeRepo{DB: db} }

// Register records that userID is going to eventID.  An existing RSVP is
// returned unchanged.  When the event's capacity is positive and already
// reached, the new attendee is put on the waiting list.  The event row is
// locked for the duration of the check so concurrent registrations never
// over-admit.
func (r *AttendeeRepo) Register(ctx context.Context, eventID, userID string) (*model.Attendee, error) {
	if a, err := r.find(ctx, eventID, userID); err == nil {
		return a, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// a no-op write takes the row lock; a plain SELECT would not
	res, err := tx.ExecContext(ctx,
		"UPDATE events SET updated_at=updated_at WHERE id=? AND is_deleted=0", eventID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	var capacity int
	if err := tx.QueryRowContext(ctx,
		"SELECT capacity FROM events WHERE id=?", eventID).Scan(&capacity); err != nil {
		return nil, err
	}
	status := model.AttendeeGoing
	if capacity > 0 {
		var going int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM attendees WHERE event_id=? AND status=?",
			eventID, string(model.AttendeeGoing)).Scan(&going); err != nil {
			return nil, err
		}
		if going >= capacity {
			status = model.AttendeeWaiting
		}
	}

	now := time.Now().UTC().Truncate(time.Second)
	res, err = tx.ExecContext(ctx,
		"INSERT INTO attendees (event_id, user_id, status, created_at) VALUES (?,?,?,?)",
		eventID, userID, string(status), now)
	if err != nil {
		if isDuplicate(err) {
			_ = tx.Rollback()
			return r.find(ctx, eventID, userID)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &model.Attendee{ID: uint64(id), EventID: eventID, UserID: userID, Status: status, CreatedAt: now}, nil
}

// ListByEvent returns every RSVP of an event in registration order.
func (r *AttendeeRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.Attendee, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, event_id, user_id, status, created_at FROM attendees WHERE event_id=? ORDER BY id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Attendee
	for rows.Next() {
		a := new(model.Attendee)
		var status string
		if err := rows.Scan(&a.ID, &a.EventID, &a.UserID, &status, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Status = model.AttendeeStatus(status)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AttendeeRepo) find(ctx context.Context, eventID, userID string) (*model.Attendee, error) {
	var (
		a      model.Attendee
		status string
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, event_id, user_id, status, created_at FROM attendees WHERE event_id=? AND user_id=? LIMIT 1",
		eventID, userID).Scan(&a.ID, &a.EventID, &a.UserID, &status, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = model.AttendeeStatus(status)
	return &a, nil
}
