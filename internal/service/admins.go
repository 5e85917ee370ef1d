package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/repository"
)

// AdminUsers is the part of the user repository EnsureAdmins needs.
type AdminUsers interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, email string) (*model.User, error)
	SetPlatformRole(ctx context.Context, id string, role model.PlatformRole) error
}

// EnsureAdmins gives every address in emails the ADMIN platform role,
// creating the account when it does not exist yet.  Addresses belonging to
// soft-deleted accounts are skipped and returned.
func EnsureAdmins(ctx context.Context, users AdminUsers, emails []string) (skipped []string, err error) {
	for _, email := range emails {
		u, err := users.FindByEmail(ctx, email)
		if errors.Is(err, repository.ErrNotFound) {
			u, err = users.Create(ctx, email)
			if errors.Is(err, repository.ErrConflict) {
				skipped = append(skipped, email)
				continue
			}
		}
		if err != nil {
			return skipped, fmt.Errorf("admin %s: %w", email, err)
		}
		if u.Role == model.PlatformAdmin {
			continue
		}
		if err := users.SetPlatformRole(ctx, u.ID, model.PlatformAdmin); err != nil {
			return skipped, fmt.Errorf("promoting %s: %w", email, err)
		}
	}
	return skipped, nil
}
