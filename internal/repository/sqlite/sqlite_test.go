package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/model"
)

// newTestDB opens a fresh in-memory database per test.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func seedUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()

	u := &model.User{Email: email, DisplayName: "Test " + email}
	if err := db.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return u
}

func seedBirthday(t *testing.T, db *DB, ownerID, name string) *model.Birthday {
	t.Helper()

	b := &model.Birthday{
		OwnerID:    ownerID,
		PersonName: name,
		BirthDate:  time.Date(1990, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := db.CreateBirthday(context.Background(), b); err != nil {
		t.Fatalf("seeding birthday %s: %v", name, err)
	}
	return b
}

func seedGift(t *testing.T, db *DB, birthdayID, name string) *model.Gift {
	t.Helper()

	g := &model.Gift{BirthdayID: birthdayID, GiftName: name, Priority: model.PriorityMedium}
	if err := db.CreateGift(context.Background(), g); err != nil {
		t.Fatalf("seeding gift %s: %v", name, err)
	}
	return g
}

func TestCreateUser_DuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedUser(t, db, "alice@example.com")

	dup := &model.User{Email: "ALICE@example.com", DisplayName: "Imposter"}
	err := db.CreateUser(ctx, dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("expected Conflict for duplicate email (case-insensitive), got %v", err)
	}
}

func TestUpsertGitHub_KeepsInternalID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{GitHubID: 42, Email: "bob@example.com", DisplayName: "Bob"}
	if err := db.UpsertGitHub(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &model.User{GitHubID: 42, Email: "bob@new.example.com", DisplayName: "Bobby"}
	if err := db.UpsertGitHub(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("repeat login changed internal ID: %s != %s", second.ID, first.ID)
	}

	got, err := db.GetUserByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("getting user: %v", err)
	}
	if got.DisplayName != "Bobby" {
		t.Errorf("profile not refreshed: displayName = %q", got.DisplayName)
	}
}

func TestSearchUsersByEmail_EscapesWildcards(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedUser(t, db, "percent%weird@example.com")
	seedUser(t, db, "normal@example.com")

	got, err := db.SearchUsersByEmail(ctx, "percent%weird", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 match, got %d", len(got))
	}

	// A bare % must not act as a match-everything wildcard.
	got, err = db.SearchUsersByEmail(ctx, "%", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("%% should match literally, got %d users", len(got))
	}
}

func TestBirthday_RoundTripsCalendarDay(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	b := seedBirthday(t, db, owner.ID, "Mira")

	got, err := db.GetBirthdayByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("getting birthday: %v", err)
	}
	y, m, d := got.BirthDate.Date()
	if y != 1990 || m != time.March || d != 10 {
		t.Errorf("birth date drifted: got %v", got.BirthDate)
	}
}

func TestBirthday_CorruptDateIsDataIntegrity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	b := seedBirthday(t, db, owner.ID, "Mira")

	// Corrupt the stored date behind the repository's back.
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE birthdays SET birth_date = 'not-a-date' WHERE id = ?`, b.ID); err != nil {
		t.Fatalf("corrupting row: %v", err)
	}

	_, err := db.GetBirthdayByID(ctx, b.ID)
	if !errors.Is(err, apperror.ErrDataIntegrity) {
		t.Errorf("expected DataIntegrity for unparseable birth date, got %v", err)
	}

	_, err = db.ListBirthdaysByOwner(ctx, owner.ID)
	if !errors.Is(err, apperror.ErrDataIntegrity) {
		t.Errorf("list should surface DataIntegrity too, got %v", err)
	}
}

func TestDeleteBirthday_CascadesToGifts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	b := seedBirthday(t, db, owner.ID, "Mira")
	g := seedGift(t, db, b.ID, "Book")

	if err := db.DeleteBirthday(ctx, b.ID); err != nil {
		t.Fatalf("deleting birthday: %v", err)
	}

	_, err := db.GetGiftByID(ctx, g.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("gift should cascade away with its birthday, got %v", err)
	}
}

func TestUpdateClaim_FirstClaimWins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	friend1 := seedUser(t, db, "friend1@example.com")
	friend2 := seedUser(t, db, "friend2@example.com")
	b := seedBirthday(t, db, owner.ID, "Mira")
	g := seedGift(t, db, b.ID, "Book")

	if err := db.UpdateClaim(ctx, g.ID, "", friend1.ID); err != nil {
		t.Fatalf("first claim should succeed: %v", err)
	}

	// The second claimant expected "unclaimed" but the world moved on.
	err := db.UpdateClaim(ctx, g.ID, "", friend2.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second claim should Conflict, got %v", err)
	}

	// And the loser must not have disturbed the winner's claim.
	got, err := db.GetGiftByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("getting gift: %v", err)
	}
	if got.ClaimedByUserID != friend1.ID {
		t.Errorf("claim holder changed after failed CAS: %q", got.ClaimedByUserID)
	}
}

func TestUpdateClaim_Unclaim(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	friend := seedUser(t, db, "friend@example.com")
	b := seedBirthday(t, db, owner.ID, "Mira")
	g := seedGift(t, db, b.ID, "Book")

	if err := db.UpdateClaim(ctx, g.ID, "", friend.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := db.UpdateClaim(ctx, g.ID, friend.ID, ""); err != nil {
		t.Fatalf("unclaim by holder should succeed: %v", err)
	}

	got, err := db.GetGiftByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("getting gift: %v", err)
	}
	if got.Claimed() {
		t.Errorf("gift still claimed by %q after unclaim", got.ClaimedByUserID)
	}
}

func TestUpdateClaim_MissingGiftIsNotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateClaim(context.Background(), "nope", "", "someone")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected NotFound for missing gift, got %v", err)
	}
}

func TestListGiftsByBirthday_PriorityOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	b := seedBirthday(t, db, owner.ID, "Mira")

	for _, p := range []model.Priority{model.PriorityLow, model.PriorityHigh, model.PriorityMedium} {
		g := &model.Gift{BirthdayID: b.ID, GiftName: "gift-" + string(p), Priority: p}
		if err := db.CreateGift(ctx, g); err != nil {
			t.Fatalf("creating gift: %v", err)
		}
	}

	gifts, err := db.ListGiftsByBirthday(ctx, b.ID)
	if err != nil {
		t.Fatalf("listing gifts: %v", err)
	}
	if len(gifts) != 3 {
		t.Fatalf("expected 3 gifts, got %d", len(gifts))
	}

	want := []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow}
	for i, g := range gifts {
		if g.Priority != want[i] {
			t.Errorf("position %d: got priority %s, want %s", i, g.Priority, want[i])
		}
	}
}

func TestFriendship_EitherDirectionLookup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	f := &model.Friendship{RequesterID: alice.ID, RecipientID: bob.ID, Status: model.FriendshipPending}
	if err := db.CreateFriendship(ctx, f); err != nil {
		t.Fatalf("creating friendship: %v", err)
	}

	got, err := db.GetFriendshipBetween(ctx, bob.ID, alice.ID)
	if err != nil {
		t.Fatalf("reverse-direction lookup failed: %v", err)
	}
	if got.ID != f.ID {
		t.Errorf("got friendship %s, want %s", got.ID, f.ID)
	}
}

func TestCreateFriendship_DuplicateConflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	f := &model.Friendship{RequesterID: alice.ID, RecipientID: bob.ID, Status: model.FriendshipPending}
	if err := db.CreateFriendship(ctx, f); err != nil {
		t.Fatalf("creating friendship: %v", err)
	}

	again := &model.Friendship{RequesterID: alice.ID, RecipientID: bob.ID, Status: model.FriendshipPending}
	err := db.CreateFriendship(ctx, again)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("expected Conflict for duplicate request, got %v", err)
	}
}

func TestListFriendshipsForUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	carol := seedUser(t, db, "carol@example.com")

	// alice → bob accepted; carol → alice pending.
	ab := &model.Friendship{RequesterID: alice.ID, RecipientID: bob.ID, Status: model.FriendshipPending}
	if err := db.CreateFriendship(ctx, ab); err != nil {
		t.Fatalf("creating friendship: %v", err)
	}
	if err := db.UpdateFriendshipStatus(ctx, ab.ID, model.FriendshipAccepted); err != nil {
		t.Fatalf("accepting friendship: %v", err)
	}
	ca := &model.Friendship{RequesterID: carol.ID, RecipientID: alice.ID, Status: model.FriendshipPending}
	if err := db.CreateFriendship(ctx, ca); err != nil {
		t.Fatalf("creating friendship: %v", err)
	}

	friends, err := db.ListFriendshipsForUser(ctx, alice.ID, model.FriendshipAccepted)
	if err != nil {
		t.Fatalf("listing accepted: %v", err)
	}
	if len(friends) != 1 || friends[0].FriendID != bob.ID {
		t.Errorf("accepted list wrong: %+v", friends)
	}

	pending, err := db.ListFriendshipsForUser(ctx, alice.ID, model.FriendshipPending)
	if err != nil {
		t.Fatalf("listing pending: %v", err)
	}
	if len(pending) != 1 || pending[0].FriendID != carol.ID {
		t.Errorf("pending list wrong: %+v", pending)
	}

	// bob sees no pending requests: his only row is an outgoing-accepted.
	bobPending, err := db.ListFriendshipsForUser(ctx, bob.ID, model.FriendshipPending)
	if err != nil {
		t.Fatalf("listing bob pending: %v", err)
	}
	if len(bobPending) != 0 {
		t.Errorf("bob should have no incoming pending requests, got %d", len(bobPending))
	}
}
