package models

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes trainees, who appear on leaderboards and earn XP, from
// staff accounts used by coaches.
type Role string

const (
	RoleTrainee Role = "trainee"
	RoleStaff   Role = "staff"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	return r == RoleTrainee || r == RoleStaff
}

// AthleteRow is a row of the athletes table.
type AthleteRow struct {
	ID        uuid.UUID
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
