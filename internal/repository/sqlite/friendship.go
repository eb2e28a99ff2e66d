package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/model"
	"github.com/sakif/giftwish/internal/repository"
)

// Compile-time check that *DB implements repository.FriendshipRepository.
var _ repository.FriendshipRepository = (*DB)(nil)

const friendshipColumns = `id, requester_id, recipient_id, status, created_at, updated_at`

func scanFriendship(row interface{ Scan(...any) error }) (*model.Friendship, error) {
	var f model.Friendship
	err := row.Scan(
		&f.ID,
		&f.RequesterID,
		&f.RecipientID,
		&f.Status,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFriendship inserts a friendship row. The UNIQUE(requester_id,
// recipient_id) constraint catches a duplicate request in the same
// direction; the reverse direction is the service's job to check.
func (db *DB) CreateFriendship(ctx context.Context, friendship *model.Friendship) error {
	now := time.Now()
	friendship.ID = xid.New().String()
	friendship.CreatedAt = now
	friendship.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO friendships (id, requester_id, recipient_id, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		friendship.ID,
		friendship.RequesterID,
		friendship.RecipientID,
		friendship.Status,
		friendship.CreatedAt,
		friendship.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperror.Conflict("a friend request between these users already exists")
		}
		return fmt.Errorf("sqlite: creating friendship: %w", err)
	}

	return nil
}

// GetFriendshipByID retrieves a single friendship row.
func (db *DB) GetFriendshipByID(ctx context.Context, id string) (*model.Friendship, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+friendshipColumns+` FROM friendships WHERE id = ?`, id)

	f, err := scanFriendship(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("friendship", id)
		}
		return nil, fmt.Errorf("sqlite: getting friendship %s: %w", id, err)
	}
	return f, nil
}

// GetFriendshipBetween finds the row linking two users in either
// direction — a pair has at most one row regardless of who asked first.
func (db *DB) GetFriendshipBetween(ctx context.Context, userA, userB string) (*model.Friendship, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+friendshipColumns+` FROM friendships
		 WHERE (requester_id = ? AND recipient_id = ?)
		    OR (requester_id = ? AND recipient_id = ?)`,
		userA, userB, userB, userA,
	)

	f, err := scanFriendship(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("friendship", userA+"/"+userB)
		}
		return nil, fmt.Errorf("sqlite: getting friendship between %s and %s: %w", userA, userB, err)
	}
	return f, nil
}

// ListFriendshipsForUser returns rows with the given status involving the
// user, each joined with the counterpart's profile. For pending rows only
// requests ADDRESSED TO the user are returned — an outgoing request isn't
// something the user acts on.
func (db *DB) ListFriendshipsForUser(ctx context.Context, userID string, status model.FriendshipStatus) ([]model.FriendshipView, error) {
	query := `
		SELECT f.id, f.requester_id, f.recipient_id, f.status, f.created_at, f.updated_at,
		       u.id, u.display_name, u.email
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.requester_id = ? THEN f.recipient_id ELSE f.requester_id END
		WHERE f.status = ? AND (f.requester_id = ? OR f.recipient_id = ?)
		ORDER BY f.created_at DESC`
	args := []any{userID, status, userID, userID}

	if status == model.FriendshipPending {
		query = `
		SELECT f.id, f.requester_id, f.recipient_id, f.status, f.created_at, f.updated_at,
		       u.id, u.display_name, u.email
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.status = ? AND f.recipient_id = ?
		ORDER BY f.created_at DESC`
		args = []any{status, userID}
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing friendships: %w", err)
	}
	defer rows.Close()

	var views []model.FriendshipView
	for rows.Next() {
		var v model.FriendshipView
		if err := rows.Scan(
			&v.ID, &v.RequesterID, &v.RecipientID, &v.Status, &v.CreatedAt, &v.UpdatedAt,
			&v.FriendID, &v.FriendDisplayName, &v.FriendEmail,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning friendship row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating friendships: %w", err)
	}

	return views, nil
}

// UpdateFriendshipStatus moves a row to a new status (accept, block).
func (db *DB) UpdateFriendshipStatus(ctx context.Context, id string, status model.FriendshipStatus) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE friendships SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating friendship %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("friendship", id)
	}

	return nil
}

// DeleteFriendship removes a row (decline or unfriend).
func (db *DB) DeleteFriendship(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM friendships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting friendship %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("friendship", id)
	}

	return nil
}
