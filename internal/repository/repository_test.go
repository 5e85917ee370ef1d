package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sudharsan3110/RSVP-2-sub001/internal/database/sqlitetest"
	"github.com/sudharsan3110/RSVP-2-sub001/internal/model"
)

func TestUserCreateAndFind(t *testing.T) {
	db := sqlitetest.Open(t)
	users := NewUserRepo(db)
	ctx := context.Background()

	u, err := users.Create(ctx, " New@Example.com ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.PrimaryEmail != "new@example.com" || u.Role != model.PlatformUser {
		t.Fatalf("created user = %+v", u)
	}
	if _, err := users.Create(ctx, "new@example.com"); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate Create err = %v, want ErrConflict", err)
	}

	got, err := users.FindByEmail(ctx, "NEW@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("FindByEmail = %+v, %v", got, err)
	}
	if got, err := users.FindByID(ctx, u.ID); err != nil || got.PrimaryEmail != u.PrimaryEmail {
		t.Fatalf("FindByID = %+v, %v", got, err)
	}
	if _, err := users.FindByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindByID(missing) err = %v", err)
	}
}

func TestUserSoftDeleteHidesAccount(t *testing.T) {
	db := sqlitetest.Open(t)
	users := NewUserRepo(db)
	ctx := context.Background()
	u, _ := users.Create(ctx, "gone@example.com")

	if err := users.SoftDelete(ctx, u.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := users.FindByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindByID after delete err = %v", err)
	}
	if _, err := users.FindByEmail(ctx, "gone@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindByEmail after delete err = %v", err)
	}
	if _, err := users.PlatformRole(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("PlatformRole after delete err = %v", err)
	}
	row, err := users.GetAnyByID(ctx, u.ID)
	if err != nil || !row.IsDeleted {
		t.Fatalf("GetAnyByID = %+v, %v", row, err)
	}
	// the address stays taken
	if _, err := users.Create(ctx, "gone@example.com"); !errors.Is(err, ErrConflict) {
		t.Fatalf("Create over deleted account err = %v", err)
	}
}

func TestUserProfileAndRole(t *testing.T) {
	db := sqlitetest.Open(t)
	users := NewUserRepo(db)
	ctx := context.Background()
	u, _ := users.Create(ctx, "a@example.com")

	name := "Ada Lovelace"
	updated, err := users.UpdateProfile(ctx, u.ID, ProfileUpdate{FullName: &name})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.IsCompleted {
		t.Fatalf("profile complete without a user name")
	}
	handle, second := "ada", "Ada@Work.example"
	updated, err = users.UpdateProfile(ctx, u.ID, ProfileUpdate{UserName: &handle, SecondaryEmail: &second})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if !updated.IsCompleted || updated.FullName != name || *updated.SecondaryEmail != "ada@work.example" {
		t.Fatalf("updated = %+v", updated)
	}

	if err := users.SetPlatformRole(ctx, u.ID, model.PlatformAdmin); err != nil {
		t.Fatalf("SetPlatformRole: %v", err)
	}
	if role, err := users.PlatformRole(ctx, u.ID); err != nil || role != model.PlatformAdmin {
		t.Fatalf("PlatformRole = %q, %v", role, err)
	}
}

func TestSessionMagicTokenLifecycle(t *testing.T) {
	db := sqlitetest.Open(t)
	users := NewUserRepo(db)
	sessions := NewSessionRepo(db)
	ctx := context.Background()
	u, _ := users.Create(ctx, "a@example.com")

	if err := sessions.SetMagicToken(ctx, u.ID, "tok-1"); err != nil {
		t.Fatalf("SetMagicToken: %v", err)
	}
	if err := sessions.SetMagicToken(ctx, u.ID, "tok-2"); err != nil {
		t.Fatalf("SetMagicToken overwrite: %v", err)
	}
	if _, err := sessions.RefreshDigest(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RefreshDigest before sign-in err = %v", err)
	}

	if err := sessions.ConsumeMagicToken(ctx, u.ID, "tok-1", "digest-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("consuming a replaced token err = %v, want ErrNotFound", err)
	}
	if err := sessions.ConsumeMagicToken(ctx, u.ID, "tok-2", "digest-2"); err != nil {
		t.Fatalf("ConsumeMagicToken: %v", err)
	}
	if err := sessions.ConsumeMagicToken(ctx, u.ID, "tok-2", "digest-3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second consume err = %v, want ErrNotFound", err)
	}
	if d, err := sessions.RefreshDigest(ctx, u.ID); err != nil || d != "digest-2" {
		t.Fatalf("RefreshDigest = %q, %v", d, err)
	}

	rec, err := sessions.Get(ctx, u.ID)
	if err != nil || rec.MagicToken != nil || rec.Provider != model.ProviderMagicLink {
		t.Fatalf("Get = %+v, %v", rec, err)
	}

	if err := sessions.ClearRefresh(ctx, u.ID); err != nil {
		t.Fatalf("ClearRefresh: %v", err)
	}
	if _, err := sessions.RefreshDigest(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RefreshDigest after logout err = %v", err)
	}
}

func newEvent(t *testing.T, events *EventRepo, creatorID string, capacity int) *model.Event {
	t.Helper()
	start := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	e := &model.Event{
		CreatorID: creatorID,
		Name:      "Go Meetup #12",
		Venue:     "Main hall",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Capacity:  capacity,
	}
	if err := events.CreateWithCreator(context.Background(), e); err != nil {
		t.Fatalf("CreateWithCreator: %v", err)
	}
	return e
}

func TestCohostRoles(t *testing.T) {
	db := sqlitetest.Open(t)
	users, events, cohosts := NewUserRepo(db), NewEventRepo(db), NewCohostRepo(db)
	ctx := context.Background()
	owner, _ := users.Create(ctx, "owner@example.com")
	helper, _ := users.Create(ctx, "helper@example.com")
	ev := newEvent(t, events, owner.ID, 0)

	if role, err := cohosts.FindRole(ctx, owner.ID, ev.ID); err != nil || role != model.RoleCreator {
		t.Fatalf("creator role = %q, %v", role, err)
	}
	if _, err := cohosts.FindRole(ctx, helper.ID, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("non-cohost err = %v", err)
	}

	if _, err := cohosts.Add(ctx, ev.ID, helper.ID, model.RoleCreator); !errors.Is(err, ErrForbidden) {
		t.Fatalf("granting CREATOR err = %v, want ErrForbidden", err)
	}
	if _, err := cohosts.Add(ctx, ev.ID, helper.ID, model.RoleManager); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := cohosts.Add(ctx, ev.ID, helper.ID, model.RoleReadOnly); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate Add err = %v, want ErrConflict", err)
	}
	if role, _ := cohosts.FindRole(ctx, helper.ID, ev.ID); role != model.RoleManager {
		t.Fatalf("helper role = %q", role)
	}

	list, err := cohosts.ListByEvent(ctx, ev.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByEvent = %d items, %v", len(list), err)
	}

	if err := cohosts.Remove(ctx, ev.ID, owner.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("removing creator err = %v, want ErrForbidden", err)
	}
	if err := cohosts.Remove(ctx, ev.ID, helper.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := cohosts.Remove(ctx, ev.ID, helper.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Remove err = %v, want ErrNotFound", err)
	}
}

func TestDeletedEventOrUserLosesRole(t *testing.T) {
	db := sqlitetest.Open(t)
	users, events, cohosts := NewUserRepo(db), NewEventRepo(db), NewCohostRepo(db)
	ctx := context.Background()
	owner, _ := users.Create(ctx, "owner@example.com")
	ev := newEvent(t, events, owner.ID, 0)
	other := newEvent(t, events, owner.ID, 0)

	if err := events.SoftDelete(ctx, ev.ID); err != nil {
		t.Fatalf("SoftDelete event: %v", err)
	}
	if _, err := cohosts.FindRole(ctx, owner.ID, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("role on deleted event err = %v", err)
	}
	if _, err := events.GetByID(ctx, ev.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID deleted event err = %v", err)
	}

	if err := users.SoftDelete(ctx, owner.ID); err != nil {
		t.Fatalf("SoftDelete user: %v", err)
	}
	if _, err := cohosts.FindRole(ctx, owner.ID, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("role of deleted user err = %v", err)
	}
}

func TestEventUpdate(t *testing.T) {
	db := sqlitetest.Open(t)
	users, events := NewUserRepo(db), NewEventRepo(db)
	ctx := context.Background()
	owner, _ := users.Create(ctx, "owner@example.com")
	ev := newEvent(t, events, owner.ID, 0)

	venue, capacity := "Rooftop", 40
	got, err := events.Update(ctx, ev.ID, EventUpdate{Venue: &venue, Capacity: &capacity})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Venue != venue || got.Capacity != capacity || got.Name != ev.Name {
		t.Fatalf("updated = %+v", got)
	}
	if _, err := events.Update(ctx, "missing", EventUpdate{Venue: &venue}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update(missing) err = %v", err)
	}
}

func TestAttendeeRegisterHonorsCapacity(t *testing.T) {
	db := sqlitetest.Open(t)
	users, events, attendees := NewUserRepo(db), NewEventRepo(db), NewAttendeeRepo(db)
	ctx := context.Background()
	owner, _ := users.Create(ctx, "owner@example.com")
	a, _ := users.Create(ctx, "a@example.com")
	b, _ := users.Create(ctx, "b@example.com")
	ev := newEvent(t, events, owner.ID, 1)

	first, err := attendees.Register(ctx, ev.ID, a.ID)
	if err != nil || first.Status != model.AttendeeGoing {
		t.Fatalf("first Register = %+v, %v", first, err)
	}
	again, err := attendees.Register(ctx, ev.ID, a.ID)
	if err != nil || again.ID != first.ID {
		t.Fatalf("repeat Register = %+v, %v", again, err)
	}
	second, err := attendees.Register(ctx, ev.ID, b.ID)
	if err != nil || second.Status != model.AttendeeWaiting {
		t.Fatalf("over-capacity Register = %+v, %v", second, err)
	}

	list, err := attendees.ListByEvent(ctx, ev.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByEvent = %d items, %v", len(list), err)
	}
}

func TestAttendeeRegisterConcurrentNeverOverAdmits(t *testing.T) {
	db := sqlitetest.Open(t)
	users, events, attendees := NewUserRepo(db), NewEventRepo(db), NewAttendeeRepo(db)
	ctx := context.Background()
	owner, _ := users.Create(ctx, "owner@example.com")
	ev := newEvent(t, events, owner.ID, 2)

	var ids []string
	for i := 0; i < 6; i++ {
		u, err := users.Create(ctx, fmt.Sprintf("guest%d@example.com", i))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, u.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := attendees.Register(ctx, ev.ID, id); err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Register: %v", err)
	}

	list, err := attendees.ListByEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	going := 0
	for _, a := range list {
		if a.Status == model.AttendeeGoing {
			going++
		}
	}
	if len(list) != 6 || going != 2 {
		t.Fatalf("attendees = %d, going = %d, want 6 and 2", len(list), going)
	}
}

func TestAttendeeRegisterDeletedEvent(t *testing.T) {
	db := sqlitetest.Open(t)
	users, events, attendees := NewUserRepo(db), NewEventRepo(db), NewAttendeeRepo(db)
	ctx := context.Background()
	owner, _ := users.Create(ctx, "owner@example.com")
	ev := newEvent(t, events, owner.ID, 0)
	if err := events.SoftDelete(ctx, ev.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := attendees.Register(ctx, ev.ID, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Register on deleted event err = %v, want ErrNotFound", err)
	}
}
