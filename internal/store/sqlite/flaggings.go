package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/store"
)

const flaggingColumns = `id, flag_id, entity_type, entity_id, user_id, session_id, created_at`

func scanFlagging(scanner interface{ Scan(dest ...any) error }) (*domain.Flagging, error) {
	var (
		f         domain.Flagging
		createdAt string
	)
	err := scanner.Scan(
		&f.ID,
		&f.FlagID,
		&f.EntityType,
		&f.EntityID,
		&f.UserID,
		&f.SessionID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFlagging inserts a flagging.
// Returns store.ErrAlreadyExists when the owner already flagged the entity,
// and store.ErrNotFound when the flag or entity row is missing.
func (s *Store) CreateFlagging(ctx context.Context, f *domain.Flagging) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flaggings (`+flaggingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.FlagID,
		f.EntityType,
		f.EntityID,
		f.UserID,
		f.SessionID,
		formatTime(f.CreatedAt),
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return store.ErrAlreadyExists.WithMessage("entity is already flagged")
		case isForeignKeyViolation(err):
			return store.ErrNotFound.WithMessage("flag or entity not found")
		}
		return fmt.Errorf("insert flagging: %w", err)
	}
	return nil
}

// GetFlagging retrieves the flagging identified by key.
// Returns store.ErrNotFound if there is none.
func (s *Store) GetFlagging(ctx context.Context, key domain.FlaggingKey) (*domain.Flagging, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+flaggingColumns+` FROM flaggings
		WHERE flag_id = ? AND entity_type = ? AND entity_id = ? AND user_id = ? AND session_id = ?`,
		key.FlagID, key.EntityType, key.EntityID, key.UserID, key.SessionID)

	f, err := scanFlagging(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("flagging not found")
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFlagging removes the flagging identified by key.
// Returns store.ErrNotFound if there is none.
func (s *Store) DeleteFlagging(ctx context.Context, key domain.FlaggingKey) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM flaggings
		WHERE flag_id = ? AND entity_type = ? AND entity_id = ? AND user_id = ? AND session_id = ?`,
		key.FlagID, key.EntityType, key.EntityID, key.UserID, key.SessionID)
	if err != nil {
		return fmt.Errorf("delete flagging: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("flagging not found")
	}
	return nil
}

// CountFlaggings returns how many owners flagged the entity with flagID.
func (s *Store) CountFlaggings(ctx context.Context, flagID, entityType string, entityID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM flaggings
		WHERE flag_id = ? AND entity_type = ? AND entity_id = ?`,
		flagID, entityType, entityID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count flaggings: %w", err)
	}
	return n, nil
}

// ListFlaggingsByOwner returns the owner's flaggings, newest first.
func (s *Store) ListFlaggingsByOwner(ctx context.Context, owner domain.Actor) ([]*domain.Flagging, error) {
	if owner.IsZero() {
		return []*domain.Flagging{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+flaggingColumns+` FROM flaggings
		WHERE user_id = ? AND session_id = ?
		ORDER BY created_at DESC, id ASC`,
		owner.UserID, owner.SessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flaggings := []*domain.Flagging{}
	for rows.Next() {
		f, err := scanFlagging(rows)
		if err != nil {
			return nil, err
		}
		flaggings = append(flaggings, f)
	}
	return flaggings, rows.Err()
}
