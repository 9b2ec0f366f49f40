package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/store"
)

const entityColumns = `entity_type, id, label, created_at`

func scanEntity(scanner interface{ Scan(dest ...any) error }) (*domain.Entity, error) {
	var (
		e         domain.Entity
		createdAt string
	)
	if err := scanner.Scan(&e.Type, &e.ID, &e.Label, &createdAt); err != nil {
		return nil, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = t
	return &e, nil
}

// SaveEntity inserts an entity or updates its label.
func (s *Store) SaveEntity(ctx context.Context, e *domain.Entity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entities (`+entityColumns+`)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (entity_type, id) DO UPDATE SET label = excluded.label`,
		e.Type,
		e.ID,
		e.Label,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save entity: %w", err)
	}
	return nil
}

// GetEntity retrieves an entity by type and id.
// Returns store.ErrNotFound if the entity does not exist.
func (s *Store) GetEntity(ctx context.Context, entityType string, entityID int64) (*domain.Entity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE entity_type = ? AND id = ?`,
		entityType, entityID)

	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("%s %d not found", entityType, entityID))
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEntities returns all entities of a type ordered by id.
// An empty type lists every entity.
func (s *Store) ListEntities(ctx context.Context, entityType string) ([]*domain.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities`
	var args []any
	if entityType != "" {
		query += ` WHERE entity_type = ?`
		args = append(args, entityType)
	}
	query += ` ORDER BY entity_type ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := []*domain.Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// DeleteEntity removes an entity and, through ON DELETE CASCADE, its flaggings.
func (s *Store) DeleteEntity(ctx context.Context, entityType string, entityID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entities WHERE entity_type = ? AND id = ?`, entityType, entityID)
	if err != nil {
		return fmt.Errorf("delete entity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(fmt.Sprintf("%s %d not found", entityType, entityID))
	}
	return nil
}
