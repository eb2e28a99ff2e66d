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

// Compile-time check that *DB implements repository.BirthdayRepository.
var _ repository.BirthdayRepository = (*DB)(nil)

// CreateBirthday inserts a birthday. The ID and timestamps are generated here and
// written back onto the caller's struct (pointer receiver on purpose).
func (db *DB) CreateBirthday(ctx context.Context, birthday *model.Birthday) error {
	now := time.Now()
	birthday.ID = xid.New().String()
	birthday.CreatedAt = now
	birthday.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO birthdays (id, owner_id, person_name, birth_date, relationship, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		birthday.ID,
		birthday.OwnerID,
		birthday.PersonName,
		birthday.BirthDate.Format(dateLayout),
		birthday.Relationship,
		birthday.Notes,
		birthday.CreatedAt,
		birthday.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating birthday: %w", err)
	}

	return nil
}

// scanBirthday reads one row. The stored birth_date is TEXT; a value that
// fails to parse is a data-integrity fault surfaced as such, not a
// generic database error — the caller can't retry its way out of it.
func scanBirthday(row interface{ Scan(...any) error }) (*model.Birthday, error) {
	var (
		b       model.Birthday
		rawDate string
	)
	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.PersonName,
		&rawDate,
		&b.Relationship,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.BirthDate, err = time.Parse(dateLayout, rawDate)
	if err != nil {
		return nil, apperror.DataIntegrity("birthDate",
			fmt.Sprintf("birthday %s has unparseable birth date %q", b.ID, rawDate))
	}

	return &b, nil
}

const birthdayColumns = `id, owner_id, person_name, birth_date, relationship, notes, created_at, updated_at`

// GetBirthdayByID retrieves a single birthday.
func (db *DB) GetBirthdayByID(ctx context.Context, id string) (*model.Birthday, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+birthdayColumns+` FROM birthdays WHERE id = ?`, id)

	b, err := scanBirthday(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("birthday", id)
		}
		if _, ok := err.(*apperror.AppError); ok {
			return nil, err
		}
		return nil, fmt.Errorf("sqlite: getting birthday %s: %w", id, err)
	}
	return b, nil
}

// ListBirthdaysByOwner returns all birthdays tracked by one user. Name order keeps
// plain list views stable; recurrence order is computed in the service.
func (db *DB) ListBirthdaysByOwner(ctx context.Context, ownerID string) ([]model.Birthday, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+birthdayColumns+` FROM birthdays
		 WHERE owner_id = ?
		 ORDER BY person_name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing birthdays: %w", err)
	}
	defer rows.Close()

	var birthdays []model.Birthday
	for rows.Next() {
		b, err := scanBirthday(rows)
		if err != nil {
			if _, ok := err.(*apperror.AppError); ok {
				return nil, err
			}
			return nil, fmt.Errorf("sqlite: scanning birthday row: %w", err)
		}
		birthdays = append(birthdays, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating birthdays: %w", err)
	}

	return birthdays, nil
}

// UpdateBirthday modifies an existing birthday. ID, owner and created_at are
// immutable.
func (db *DB) UpdateBirthday(ctx context.Context, birthday *model.Birthday) error {
	birthday.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE birthdays
		 SET person_name = ?, birth_date = ?, relationship = ?, notes = ?, updated_at = ?
		 WHERE id = ?`,
		birthday.PersonName,
		birthday.BirthDate.Format(dateLayout),
		birthday.Relationship,
		birthday.Notes,
		birthday.UpdatedAt,
		birthday.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating birthday %s: %w", birthday.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("birthday", birthday.ID)
	}

	return nil
}

// DeleteBirthday removes a birthday; its gifts cascade away with it.
func (db *DB) DeleteBirthday(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM birthdays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting birthday %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("birthday", id)
	}

	return nil
}
