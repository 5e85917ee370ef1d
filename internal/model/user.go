package model

import "time"

// PlatformRole is the platform-wide role stored on the user row.  It is
// independent of any event: an ADMIN may have no cohost role anywhere.
type PlatformRole string

const (
	PlatformAdmin PlatformRole = "ADMIN"
	PlatformUser  PlatformRole = "USER"
)

// User represents an account as stored in the `users` table.  Accounts are
// created the first time someone asks for a sign-in link and are never
// removed; IsDeleted hides them from every lookup used by the auth flow.
//
// Fields:
//
//	ID             – UUID primary key.
//	PrimaryEmail   – unique address the magic link is sent to.
//	SecondaryEmail – optional contact address.
//	FullName       – display name, empty until onboarding.
//	UserName       – public handle, empty until onboarding.
//	IsCompleted    – whether the profile has been filled in.
//	Role           – platform role (ADMIN or USER).
//	IsDeleted      – soft-delete flag.
//	CreatedAt      – timestamp of creation.
//	UpdatedAt      – timestamp of last update.
type User struct {
	ID             string       `json:"id"`
	PrimaryEmail   string       `json:"primaryEmail"`
	SecondaryEmail *string      `json:"secondaryEmail,omitempty"`
	FullName       string       `json:"fullName,omitempty"`
	UserName       string       `json:"userName,omitempty"`
	IsCompleted    bool         `json:"isCompleted"`
	Role           PlatformRole `json:"role"`
	IsDeleted      bool         `json:"isDeleted"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// Provider names the issuer that owns a session record.  Only the
// magic-link issuer exists today; the column keeps room for others.
type Provider string

const ProviderMagicLink Provider = "MAGIC_LINK"

// SessionRecord models a row of the `auth` table: one per user per
// provider.  MagicToken is the pending single-use sign-in identifier and
// RefreshDigest is the SHA-256 hex digest of the only refresh token that
// may renew access for this user.  Both are nullable.
type SessionRecord struct {
	ID            uint64
	UserID        string
	Provider      Provider
	MagicToken    *string
	RefreshDigest *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
