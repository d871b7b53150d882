package service

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"
)

// CreateAthlete registers a new athlete.
func (s *Service) CreateAthlete(ctx context.Context, name string, role models.Role, now time.Time) (*models.AthleteRow, error) {
	if name == "" {
		return nil, fmt.Errorf("athlete name is required")
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	row := models.AthleteRow{
		ID:        uuid.New(),
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertAthlete(ctx, row); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListAthletes returns athletes, optionally filtered by role (empty role
// means all).
func (s *Service) ListAthletes(ctx context.Context, role models.Role) ([]models.AthleteRow, error) {
	if role != "" && !role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", role)
	}
	return s.store.ListAthletes(ctx, role)
}
