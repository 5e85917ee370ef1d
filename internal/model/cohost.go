package model

import "time"

// CohostRole is a per-event permission tier.  CREATOR > MANAGER >
// READ_ONLY; CELEBRITY is a non-managerial tag shown on the event page.
type CohostRole string

const (
	RoleCreator   CohostRole = "CREATOR"
	RoleManager   CohostRole = "MANAGER"
	RoleReadOnly  CohostRole = "READ_ONLY"
	RoleCelebrity CohostRole = "CELEBRITY"
)

// Valid reports whether r is one of the known cohost roles.
func (r CohostRole) Valid() bool {
	switch r {
	case RoleCreator, RoleManager, RoleReadOnly, RoleCelebrity:
		return true
	}
	return false
}

// Cohost represents a row of the `cohosts` table joined with the user's
// public fields.  (UserID, EventID) is unique.
type Cohost struct {
	ID        uint64     `json:"id"`
	UserID    string     `json:"userId"`
	EventID   string     `json:"eventId"`
	Role      CohostRole `json:"role"`
	Email     string     `json:"email,omitempty"`
	FullName  string     `json:"fullName,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
