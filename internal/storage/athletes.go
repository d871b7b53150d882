package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertAthlete inserts an athlete row.
func (db *DB) InsertAthlete(ctx context.Context, row models.AthleteRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO athletes (id, name, role, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		row.ID, row.Name, row.Role, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting athlete: %w", err)
	}
	return nil
}

// GetAthlete retrieves an athlete by ID.
func (db *DB) GetAthlete(ctx context.Context, id uuid.UUID) (*models.AthleteRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, role, created_at, updated_at FROM athletes WHERE id = $1`, id)

	var a models.AthleteRow
	err := row.Scan(&a.ID, &a.Name, &a.Role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("athlete %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying athlete: %w", err)
	}
	return &a, nil
}

// ListAthletes returns athletes, optionally filtered by role.
func (db *DB) ListAthletes(ctx context.Context, role models.Role) ([]models.AthleteRow, error) {
	query := `SELECT id, name, role, created_at, updated_at FROM athletes ORDER BY name`
	args := []any{}
	if role != "" {
		query = `SELECT id, name, role, created_at, updated_at FROM athletes WHERE role = $1 ORDER BY name`
		args = append(args, role)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying athletes: %w", err)
	}
	defer rows.Close()

	var result []models.AthleteRow
	for rows.Next() {
		var a models.AthleteRow
		if err := rows.Scan(&a.ID, &a.Name, &a.Role, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning athlete: %w", err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
