package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/store"
)

// flagColumns is the ordered list of columns selected in flag queries.
// Must match the scan order in scanFlag.
const flagColumns = `id, label, entity_type, flag_short_text, unflag_short_text, weight, global, created_at, updated_at`

func scanFlag(scanner interface{ Scan(dest ...any) error }) (*domain.Flag, error) {
	var (
		f         domain.Flag
		global    int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&f.ID,
		&f.Label,
		&f.EntityType,
		&f.FlagShortText,
		&f.UnflagShortText,
		&f.Weight,
		&global,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.Global = global != 0
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFlag inserts a new flag.
// Returns store.ErrAlreadyExists on duplicate machine name.
func (s *Store) CreateFlag(ctx context.Context, f *domain.Flag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flags (`+flagColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.Label,
		f.EntityType,
		f.FlagShortText,
		f.UnflagShortText,
		f.Weight,
		boolToInt(f.Global),
		formatTime(f.CreatedAt),
		formatTime(f.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("flag %q already exists", f.ID))
		}
		return fmt.Errorf("insert flag: %w", err)
	}
	return nil
}

// UpdateFlag overwrites the configurable fields of an existing flag.
// Returns store.ErrNotFound if the flag does not exist.
func (s *Store) UpdateFlag(ctx context.Context, f *domain.Flag) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE flags SET
			label = ?, entity_type = ?, flag_short_text = ?, unflag_short_text = ?,
			weight = ?, global = ?, updated_at = ?
		WHERE id = ?`,
		f.Label,
		f.EntityType,
		f.FlagShortText,
		f.UnflagShortText,
		f.Weight,
		boolToInt(f.Global),
		formatTime(f.UpdatedAt),
		f.ID,
	)
	if err != nil {
		return fmt.Errorf("update flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(fmt.Sprintf("flag %q not found", f.ID))
	}
	return nil
}

// GetFlag retrieves a flag by machine name.
// Returns store.ErrNotFound if the flag does not exist.
func (s *Store) GetFlag(ctx context.Context, flagID string) (*domain.Flag, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+flagColumns+` FROM flags WHERE id = ?`, flagID)

	f, err := scanFlag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("flag %q not found", flagID))
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListFlags returns all flags ordered by weight, then machine name.
func (s *Store) ListFlags(ctx context.Context) ([]*domain.Flag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+flagColumns+` FROM flags ORDER BY weight ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := []*domain.Flag{}
	for rows.Next() {
		f, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}

// DeleteFlag removes a flag. Its flaggings go with it through ON DELETE CASCADE.
// Returns store.ErrNotFound if the flag does not exist.
func (s *Store) DeleteFlag(ctx context.Context, flagID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM flags WHERE id = ?`, flagID)
	if err != nil {
		return fmt.Errorf("delete flag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(fmt.Sprintf("flag %q not found", flagID))
	}
	return nil
}
