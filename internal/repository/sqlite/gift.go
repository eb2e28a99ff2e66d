package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/giftwish/internal/apperror"
	"github.com/sakif/giftwish/internal/model"
	"github.com/sakif/giftwish/internal/repository"
)

// Compile-time check that *DB implements repository.GiftRepository.
var _ repository.GiftRepository = (*DB)(nil)

const giftColumns = `id, birthday_id, gift_name, gift_url, price_range, priority, is_purchased, notes, claimed_by_user_id, created_at, updated_at`

func scanGift(row interface{ Scan(...any) error }) (*model.Gift, error) {
	var (
		g       model.Gift
		claimed sql.NullString
	)
	err := row.Scan(
		&g.ID,
		&g.BirthdayID,
		&g.GiftName,
		&g.GiftURL,
		&g.PriceRange,
		&g.Priority,
		&g.IsPurchased,
		&g.Notes,
		&claimed,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if claimed.Valid {
		g.ClaimedByUserID = claimed.String
	}
	return &g, nil
}

// nullable maps the empty string ("unclaimed") to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateGift inserts a gift under a birthday. Gifts are born unclaimed.
func (db *DB) CreateGift(ctx context.Context, gift *model.Gift) error {
	now := time.Now()
	gift.ID = xid.New().String()
	gift.CreatedAt = now
	gift.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO gifts (id, birthday_id, gift_name, gift_url, price_range, priority, is_purchased, notes, claimed_by_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		gift.ID,
		gift.BirthdayID,
		gift.GiftName,
		gift.GiftURL,
		gift.PriceRange,
		gift.Priority,
		gift.IsPurchased,
		gift.Notes,
		gift.CreatedAt,
		gift.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating gift: %w", err)
	}

	return nil
}

// GetGiftByID retrieves a single gift.
func (db *DB) GetGiftByID(ctx context.Context, id string) (*model.Gift, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+giftColumns+` FROM gifts WHERE id = ?`, id)

	g, err := scanGift(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("gift", id)
		}
		return nil, fmt.Errorf("sqlite: getting gift %s: %w", id, err)
	}
	return g, nil
}

// ListGiftsByBirthday returns a birthday's wishlist, highest priority first,
// then newest first within a priority (matches the upstream ordering).
func (db *DB) ListGiftsByBirthday(ctx context.Context, birthdayID string) ([]model.Gift, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+giftColumns+` FROM gifts
		 WHERE birthday_id = ?
		 ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
		          created_at DESC`,
		birthdayID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing gifts: %w", err)
	}
	defer rows.Close()

	var gifts []model.Gift
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning gift row: %w", err)
		}
		gifts = append(gifts, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating gifts: %w", err)
	}

	return gifts, nil
}

// UpdateClaim performs the compare-and-swap on the claim column.
//
// The WHERE clause carries the expectation: the UPDATE only matches when
// the stored claimant is exactly expectedClaimant (NULL for ""). Two
// concurrent claims therefore serialize inside SQLite — one matches and
// writes, the other matches zero rows and is told Conflict. No explicit
// transaction or lock is needed; a single UPDATE is atomic.
func (db *DB) UpdateClaim(ctx context.Context, giftID, expectedClaimant, newClaimant string) error {
	var (
		result sql.Result
		err    error
	)
	if expectedClaimant == "" {
		result, err = db.conn.ExecContext(ctx,
			`UPDATE gifts SET claimed_by_user_id = ?, updated_at = ?
			 WHERE id = ? AND claimed_by_user_id IS NULL`,
			nullable(newClaimant), time.Now(), giftID,
		)
	} else {
		result, err = db.conn.ExecContext(ctx,
			`UPDATE gifts SET claimed_by_user_id = ?, updated_at = ?
			 WHERE id = ? AND claimed_by_user_id = ?`,
			nullable(newClaimant), time.Now(), giftID, expectedClaimant,
		)
	}
	if err != nil {
		return fmt.Errorf("sqlite: updating claim on gift %s: %w", giftID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	// Zero rows: either the gift is gone or the claimant changed under
	// us. Distinguish so callers can report the right thing.
	var exists int
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM gifts WHERE id = ?`, giftID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking gift %s: %w", giftID, err)
	}
	if exists == 0 {
		return apperror.NotFound("gift", giftID)
	}
	return apperror.Conflict("gift claim changed — someone else got there first")
}

// SetPurchased flips the owner's purchased flag. Independent of claims.
func (db *DB) SetPurchased(ctx context.Context, giftID string, purchased bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE gifts SET is_purchased = ?, updated_at = ? WHERE id = ?`,
		purchased, time.Now(), giftID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting purchased on gift %s: %w", giftID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("gift", giftID)
	}

	return nil
}

// DeleteGift removes a gift entirely — no tombstone, claims included.
func (db *DB) DeleteGift(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM gifts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting gift %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("gift", id)
	}

	return nil
}
