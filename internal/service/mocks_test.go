package service

// Hand-written in-memory mocks for the repository interfaces. The mocks
// reproduce the behavior the services rely on: NotFound/Conflict domain
// errors and the compare-and-swap semantics of UpdateClaim.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/model"
	"github.com/sakif/giftwish/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// ---- users ----

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(id, email, name string) *model.User {
	u := &model.User{ID: id, Email: email, DisplayName: name}
	m.users[id] = u
	return u
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.Conflict("email already registered")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.GitHubID == user.GitHubID && u.GitHubID != 0 {
			user.ID = u.ID
			u.Email = user.Email
			u.DisplayName = user.DisplayName
			u.AvatarURL = user.AvatarURL
			return nil
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) SearchUsersByEmail(_ context.Context, fragment string, limit int) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Email), strings.ToLower(fragment)) {
			result = append(result, *u)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

func (m *mockUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) ListUsers(_ context.Context, opts repository.ListOptions) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	return result, nil
}

// ---- birthdays ----

type mockBirthdayRepo struct {
	birthdays map[string]*model.Birthday
	nextID    int
}

func newMockBirthdayRepo() *mockBirthdayRepo {
	return &mockBirthdayRepo{birthdays: make(map[string]*model.Birthday)}
}

func (m *mockBirthdayRepo) CreateBirthday(_ context.Context, b *model.Birthday) error {
	m.nextID++
	b.ID = fmt.Sprintf("bday-%d", m.nextID)
	stored := *b
	m.birthdays[b.ID] = &stored
	return nil
}

func (m *mockBirthdayRepo) GetBirthdayByID(_ context.Context, id string) (*model.Birthday, error) {
	b, ok := m.birthdays[id]
	if !ok {
		return nil, apperror.NotFound("birthday", id)
	}
	result := *b
	return &result, nil
}

func (m *mockBirthdayRepo) ListBirthdaysByOwner(_ context.Context, ownerID string) ([]model.Birthday, error) {
	var result []model.Birthday
	for _, b := range m.birthdays {
		if b.OwnerID == ownerID {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (m *mockBirthdayRepo) UpdateBirthday(_ context.Context, b *model.Birthday) error {
	if _, ok := m.birthdays[b.ID]; !ok {
		return apperror.NotFound("birthday", b.ID)
	}
	stored := *b
	m.birthdays[b.ID] = &stored
	return nil
}

func (m *mockBirthdayRepo) DeleteBirthday(_ context.Context, id string) error {
	if _, ok := m.birthdays[id]; !ok {
		return apperror.NotFound("birthday", id)
	}
	delete(m.birthdays, id)
	return nil
}

// ---- gifts ----

type mockGiftRepo struct {
	gifts  map[string]*model.Gift
	nextID int
}

func newMockGiftRepo() *mockGiftRepo {
	return &mockGiftRepo{gifts: make(map[string]*model.Gift)}
}

func (m *mockGiftRepo) CreateGift(_ context.Context, g *model.Gift) error {
	m.nextID++
	g.ID = fmt.Sprintf("gift-%d", m.nextID)
	stored := *g
	m.gifts[g.ID] = &stored
	return nil
}

func (m *mockGiftRepo) GetGiftByID(_ context.Context, id string) (*model.Gift, error) {
	g, ok := m.gifts[id]
	if !ok {
		return nil, apperror.NotFound("gift", id)
	}
	result := *g
	return &result, nil
}

func (m *mockGiftRepo) ListGiftsByBirthday(_ context.Context, birthdayID string) ([]model.Gift, error) {
	var result []model.Gift
	for _, g := range m.gifts {
		if g.BirthdayID == birthdayID {
			result = append(result, *g)
		}
	}
	return result, nil
}

// UpdateClaim mirrors the conditional UPDATE: the write only happens if
// the stored claimant matches the expectation.
func (m *mockGiftRepo) UpdateClaim(_ context.Context, giftID, expectedClaimant, newClaimant string) error {
	g, ok := m.gifts[giftID]
	if !ok {
		return apperror.NotFound("gift", giftID)
	}
	if g.ClaimedByUserID != expectedClaimant {
		return apperror.Conflict("gift claim changed")
	}
	g.ClaimedByUserID = newClaimant
	return nil
}

func (m *mockGiftRepo) SetPurchased(_ context.Context, giftID string, purchased bool) error {
	g, ok := m.gifts[giftID]
	if !ok {
		return apperror.NotFound("gift", giftID)
	}
	g.IsPurchased = purchased
	return nil
}

func (m *mockGiftRepo) DeleteGift(_ context.Context, id string) error {
	if _, ok := m.gifts[id]; !ok {
		return apperror.NotFound("gift", id)
	}
	delete(m.gifts, id)
	return nil
}

// ---- friendships ----

type mockFriendshipRepo struct {
	friendships map[string]*model.Friendship
	users       *mockUserRepo
	nextID      int
}

func newMockFriendshipRepo(users *mockUserRepo) *mockFriendshipRepo {
	return &mockFriendshipRepo{
		friendships: make(map[string]*model.Friendship),
		users:       users,
	}
}

// befriend seeds an accepted friendship directly.
func (m *mockFriendshipRepo) befriend(a, b string) *model.Friendship {
	f := &model.Friendship{RequesterID: a, RecipientID: b, Status: model.FriendshipAccepted}
	m.nextID++
	f.ID = fmt.Sprintf("friend-%d", m.nextID)
	m.friendships[f.ID] = f
	return f
}

func (m *mockFriendshipRepo) CreateFriendship(_ context.Context, f *model.Friendship) error {
	for _, existing := range m.friendships {
		if existing.Involves(f.RequesterID) && existing.Involves(f.RecipientID) {
			return apperror.Conflict("a friend request between these users already exists")
		}
	}
	m.nextID++
	f.ID = fmt.Sprintf("friend-%d", m.nextID)
	stored := *f
	m.friendships[f.ID] = &stored
	return nil
}

func (m *mockFriendshipRepo) GetFriendshipByID(_ context.Context, id string) (*model.Friendship, error) {
	f, ok := m.friendships[id]
	if !ok {
		return nil, apperror.NotFound("friendship", id)
	}
	result := *f
	return &result, nil
}

func (m *mockFriendshipRepo) GetFriendshipBetween(_ context.Context, userA, userB string) (*model.Friendship, error) {
	for _, f := range m.friendships {
		if f.Involves(userA) && f.Involves(userB) && userA != userB {
			result := *f
			return &result, nil
		}
	}
	return nil, apperror.NotFound("friendship", userA+"/"+userB)
}

func (m *mockFriendshipRepo) ListFriendshipsForUser(ctx context.Context, userID string, status model.FriendshipStatus) ([]model.FriendshipView, error) {
	var result []model.FriendshipView
	for _, f := range m.friendships {
		if f.Status != status || !f.Involves(userID) {
			continue
		}
		if status == model.FriendshipPending && f.RecipientID != userID {
			continue
		}
		view := model.FriendshipView{Friendship: *f, FriendID: f.Other(userID)}
		if m.users != nil {
			if u, err := m.users.GetUserByID(ctx, view.FriendID); err == nil {
				view.FriendDisplayName = u.DisplayName
				view.FriendEmail = u.Email
			}
		}
		result = append(result, view)
	}
	return result, nil
}

func (m *mockFriendshipRepo) UpdateFriendshipStatus(_ context.Context, id string, status model.FriendshipStatus) error {
	f, ok := m.friendships[id]
	if !ok {
		return apperror.NotFound("friendship", id)
	}
	f.Status = status
	return nil
}

func (m *mockFriendshipRepo) DeleteFriendship(_ context.Context, id string) error {
	if _, ok := m.friendships[id]; !ok {
		return apperror.NotFound("friendship", id)
	}
	delete(m.friendships, id)
	return nil
}

// ---- fixture bundling everything a gift/birthday test needs ----

type fixture struct {
	users       *mockUserRepo
	birthdays   *mockBirthdayRepo
	gifts       *mockGiftRepo
	friendships *mockFriendshipRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := newMockUserRepo()
	return &fixture{
		users:       users,
		birthdays:   newMockBirthdayRepo(),
		gifts:       newMockGiftRepo(),
		friendships: newMockFriendshipRepo(users),
	}
}

func (f *fixture) giftService() *GiftService {
	return NewGiftService(f.gifts, f.birthdays, f.friendships, f.users, testLogger())
}

func (f *fixture) birthdayService() *BirthdayService {
	return NewBirthdayService(f.birthdays, f.friendships, testLogger())
}

func (f *fixture) friendService(n FriendRequestNotifier) *FriendService {
	return NewFriendService(f.friendships, f.users, n, testLogger())
}
