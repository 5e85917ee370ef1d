package model

import "time"

// Event represents a row of the `events` table.  Events are created by a
// user who automatically becomes their single CREATOR cohost.  Deleting an
// event only flips IsDeleted.
//
// Fields:
//
//	ID          – UUID primary key.
//	CreatorID   – users.id of the creator.
//	Name        – title shown on the event page.
//	Slug        – URL-friendly unique name.
//	Description – sanitized HTML description.
//	Venue       – free-form location.
//	StartTime   – when the event begins.
//	EndTime     – when the event ends (must be after StartTime).
//	Capacity    – maximum GOING attendees; 0 means unlimited.
//	IsCancelled – set when hosts cancel the event.
//	IsDeleted   – soft-delete flag.
type Event struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creatorId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Capacity    int       `json:"capacity"`
	IsCancelled bool      `json:"isCancelled"`
	IsDeleted   bool      `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// AttendeeStatus is the RSVP state of an attendee.
type AttendeeStatus string

const (
	AttendeeGoing    AttendeeStatus = "GOING"
	AttendeeNotGoing AttendeeStatus = "NOT_GOING"
	AttendeeWaiting  AttendeeStatus = "WAITING"
)

// Attendee models an entry in the `attendees` table.  A user RSVPs to an
// event at most once.
type Attendee struct {
	ID        uint64         `json:"id"`
	EventID   string         `json:"eventId"`
	UserID    string         `json:"userId"`
	Status    AttendeeStatus `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}
