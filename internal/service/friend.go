package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/model"
	"github.com/sakif/giftwish/internal/repository"
)

const MaxSearchResults = 10

// FriendRequestNotifier sends a best-effort "you have a friend request"
// email. Implemented by the email package; a nil notifier disables it.
type FriendRequestNotifier interface {
	SendFriendRequest(ctx context.Context, toEmail, fromName string) error
}

// FriendService manages the friendship lifecycle:
// pending → accepted, or pending → deleted (decline/withdraw), plus
// blocking, which freezes the pair in both directions.
type FriendService struct {
	friendships repository.FriendshipRepository
	users       repository.UserRepository
	notifier    FriendRequestNotifier
	logger      *slog.Logger
}

func NewFriendService(
	friendships repository.FriendshipRepository,
	users repository.UserRepository,
	notifier FriendRequestNotifier,
	logger *slog.Logger,
) *FriendService {
	return &FriendService{
		friendships: friendships,
		users:       users,
		notifier:    notifier,
		logger:      logger,
	}
}

// Request sends a friend request from requester to recipient.
//
// Any existing row between the pair — pending in either direction,
// accepted, or blocked — refuses a new request: Conflict for the first
// two, Forbidden for blocked.
func (s *FriendService) Request(ctx context.Context, requesterID, recipientID string) (*model.Friendship, error) {
	if recipientID == "" {
		return nil, apperror.ValidationFailed("userId", "recipient is required")
	}
	if requesterID == recipientID {
		return nil, apperror.ValidationFailed("userId", "you cannot send a friend request to yourself")
	}

	recipient, err := s.users.GetUserByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	existing, err := s.friendships.GetFriendshipBetween(ctx, requesterID, recipientID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/friend: checking existing friendship: %w", err)
	}
	if existing != nil {
		switch existing.Status {
		case model.FriendshipBlocked:
			return nil, apperror.Forbidden("a friend request cannot be sent to this user")
		case model.FriendshipAccepted:
			return nil, apperror.Conflict("you are already friends")
		default:
			return nil, apperror.Conflict("a friend request is already pending")
		}
	}

	friendship := &model.Friendship{
		RequesterID: requesterID,
		RecipientID: recipientID,
		Status:      model.FriendshipPending,
	}
	if err := s.friendships.CreateFriendship(ctx, friendship); err != nil {
		return nil, err
	}

	s.logger.Info("friend request sent",
		slog.String("requesterID", requesterID),
		slog.String("recipientID", recipientID),
	)

	// Notification is best effort — a mail outage never fails the request.
	if s.notifier != nil {
		requester, err := s.users.GetUserByID(ctx, requesterID)
		if err == nil {
			if err := s.notifier.SendFriendRequest(ctx, recipient.Email, requester.DisplayName); err != nil {
				s.logger.Warn("friend request email failed",
					slog.String("recipientID", recipientID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return friendship, nil
}

// Accept turns a pending request into an accepted friendship. Only the
// recipient can accept.
func (s *FriendService) Accept(ctx context.Context, actorID, requestID string) (*model.Friendship, error) {
	friendship, err := s.friendships.GetFriendshipByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if friendship.RecipientID != actorID {
		return nil, apperror.Forbidden("only the recipient can accept a friend request")
	}
	if friendship.Status != model.FriendshipPending {
		return nil, apperror.Conflict("this request is no longer pending")
	}

	if err := s.friendships.UpdateFriendshipStatus(ctx, requestID, model.FriendshipAccepted); err != nil {
		return nil, err
	}
	friendship.Status = model.FriendshipAccepted

	s.logger.Info("friend request accepted", slog.String("friendshipID", requestID))
	return friendship, nil
}

// Remove deletes a friendship row. Covers three user actions with one
// rule: the recipient declining a pending request, the requester
// withdrawing one, or either side unfriending an accepted friendship.
func (s *FriendService) Remove(ctx context.Context, actorID, friendshipID string) error {
	friendship, err := s.friendships.GetFriendshipByID(ctx, friendshipID)
	if err != nil {
		return err
	}
	if !friendship.Involves(actorID) {
		return apperror.Forbidden("you are not part of this friendship")
	}
	if friendship.Status == model.FriendshipBlocked {
		// Blocks are lifted by the blocker, not deleted through this path.
		return apperror.Forbidden("blocked relationships cannot be removed here")
	}

	if err := s.friendships.DeleteFriendship(ctx, friendshipID); err != nil {
		return err
	}

	s.logger.Info("friendship removed",
		slog.String("friendshipID", friendshipID),
		slog.String("actorID", actorID),
	)
	return nil
}

// Block freezes the relationship with another user. An existing row is
// moved to blocked; absent one, a blocked row is created so future
// requests bounce.
func (s *FriendService) Block(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return apperror.ValidationFailed("userId", "you cannot block yourself")
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return err
	}

	existing, err := s.friendships.GetFriendshipBetween(ctx, actorID, targetID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("service/friend: checking existing friendship: %w", err)
	}

	if existing != nil {
		if existing.Status == model.FriendshipBlocked {
			return nil
		}
		if err := s.friendships.UpdateFriendshipStatus(ctx, existing.ID, model.FriendshipBlocked); err != nil {
			return err
		}
	} else {
		blocked := &model.Friendship{
			RequesterID: actorID,
			RecipientID: targetID,
			Status:      model.FriendshipBlocked,
		}
		if err := s.friendships.CreateFriendship(ctx, blocked); err != nil {
			return err
		}
	}

	s.logger.Info("user blocked",
		slog.String("actorID", actorID),
		slog.String("targetID", targetID),
	)
	return nil
}

// ListFriends returns the user's accepted friendships with counterpart
// profiles.
func (s *FriendService) ListFriends(ctx context.Context, userID string) ([]model.FriendshipView, error) {
	views, err := s.friendships.ListFriendshipsForUser(ctx, userID, model.FriendshipAccepted)
	if err != nil {
		return nil, fmt.Errorf("service/friend: listing friends: %w", err)
	}
	return views, nil
}

// ListRequests returns pending requests addressed to the user.
func (s *FriendService) ListRequests(ctx context.Context, userID string) ([]model.FriendshipView, error) {
	views, err := s.friendships.ListFriendshipsForUser(ctx, userID, model.FriendshipPending)
	if err != nil {
		return nil, fmt.Errorf("service/friend: listing requests: %w", err)
	}
	return views, nil
}

// Search finds users by email substring so friends can be added by
// address. Results are capped and never include the caller.
func (s *FriendService) Search(ctx context.Context, callerID, emailFragment string) ([]model.User, error) {
	emailFragment = strings.TrimSpace(emailFragment)
	if len(emailFragment) < 3 {
		return nil, apperror.ValidationFailed("email", "search needs at least 3 characters")
	}

	found, err := s.users.SearchUsersByEmail(ctx, emailFragment, MaxSearchResults)
	if err != nil {
		return nil, fmt.Errorf("service/friend: searching users: %w", err)
	}

	users := found[:0]
	for _, u := range found {
		if u.ID == callerID {
			continue
		}
		// Blocked pairs are invisible to each other, in both directions.
		existing, err := s.friendships.GetFriendshipBetween(ctx, callerID, u.ID)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("service/friend: checking block status: %w", err)
		}
		if existing != nil && existing.Status == model.FriendshipBlocked {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}
