package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/recurrence"
)

func TestCreateBirthday_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.users.add("owner-1", "owner@example.com", "Owner")
	svc := f.birthdayService()
	ctx := context.Background()

	valid := time.Date(1990, time.March, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name       string
		personName string
		birthDate  time.Time
	}{
		{"empty name", "", valid},
		{"zero date", "Mira", time.Time{}},
		{"future date", "Mira", time.Now().AddDate(1, 0, 0)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, owner.ID, tc.personName, tc.birthDate, "", "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := svc.Create(ctx, owner.ID, "Mira", valid, "sister", "loves sci-fi"); err != nil {
		t.Errorf("valid input should succeed, got %v", err)
	}
}

func TestBirthdayMutation_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.users.add("owner-1", "owner@example.com", "Owner")
	intruder := f.users.add("user-2", "intruder@example.com", "Intruder")
	svc := f.birthdayService()
	ctx := context.Background()

	birthDate := time.Date(1990, time.March, 10, 0, 0, 0, 0, time.UTC)
	b, err := svc.Create(ctx, owner.ID, "Mira", birthDate, "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, intruder.ID, b.ID, "Hacked", birthDate, "", ""); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("non-owner update should be Forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, intruder.ID, b.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("non-owner delete should be Forbidden, got %v", err)
	}
}

func TestGetBirthday_Visibility(t *testing.T) {
	f := newFixture(t)
	owner := f.users.add("owner-1", "owner@example.com", "Owner")
	friend := f.users.add("friend-1", "friend@example.com", "Friend")
	stranger := f.users.add("user-3", "stranger@example.com", "Stranger")
	f.friendships.befriend(owner.ID, friend.ID)
	svc := f.birthdayService()
	ctx := context.Background()

	b, err := svc.Create(ctx, owner.ID, "Mira",
		time.Date(1990, time.March, 10, 0, 0, 0, 0, time.UTC), "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, owner.ID, b.ID); err != nil {
		t.Errorf("owner read failed: %v", err)
	}
	if _, err := svc.Get(ctx, friend.ID, b.ID); err != nil {
		t.Errorf("friend read failed: %v", err)
	}
	if _, err := svc.Get(ctx, stranger.ID, b.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("stranger read should be Forbidden, got %v", err)
	}
}

func TestUpcoming_WindowAndOrder(t *testing.T) {
	f := newFixture(t)
	owner := f.users.add("owner-1", "owner@example.com", "Owner")
	svc := f.birthdayService()
	ctx := context.Background()

	now := time.Now()
	inWindow := now.AddDate(-30, 0, 10)  // 10 days out
	tomorrow := now.AddDate(-25, 0, 1)   // 1 day out
	outside := now.AddDate(-40, 0, 60)   // 60 days out

	for name, date := range map[string]time.Time{
		"Far":  inWindow,
		"Soon": tomorrow,
		"Out":  outside,
	} {
		if _, err := svc.Create(ctx, owner.ID, name, date, "", ""); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	entries, err := svc.Upcoming(ctx, owner.ID, 30)
	if err != nil {
		t.Fatalf("Upcoming() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries inside the 30-day window, got %d", len(entries))
	}
	if entries[0].PersonName != "Soon" || entries[1].PersonName != "Far" {
		t.Errorf("entries out of order: %s, %s", entries[0].PersonName, entries[1].PersonName)
	}
	if entries[0].Kind != recurrence.Tomorrow {
		t.Errorf("nearest entry should classify as tomorrow, got %v", entries[0].Kind)
	}
}

func TestToday_FiltersToReferenceDay(t *testing.T) {
	f := newFixture(t)
	owner := f.users.add("owner-1", "owner@example.com", "Owner")
	svc := f.birthdayService()
	ctx := context.Background()

	now := time.Now()
	if _, err := svc.Create(ctx, owner.ID, "TodayPerson", now.AddDate(-20, 0, 0), "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, owner.ID, "NextWeek", now.AddDate(-20, 0, 7), "", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	entries, err := svc.Today(ctx, owner.ID)
	if err != nil {
		t.Fatalf("Today() error = %v", err)
	}
	if len(entries) != 1 || entries[0].PersonName != "TodayPerson" {
		t.Errorf("Today() = %+v, want just TodayPerson", entries)
	}
	if entries[0].AgeTurning != 20 {
		t.Errorf("AgeTurning = %d, want 20", entries[0].AgeTurning)
	}
}
