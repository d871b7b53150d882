package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/claude/liftcamp/internal/config"
	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/claude/liftcamp/internal/storage"
	"github.com/google/uuid"
)

var (
	// ErrUnknownField is returned when a submission carries a field the
	// current result schema does not know.
	ErrUnknownField = errors.New("unknown result field")

	// ErrAlreadyCompleted is returned when a draft is saved over a
	// completed session. Completion is terminal for drafts; a full
	// resubmission may still amend values.
	ErrAlreadyCompleted = errors.New("session is already completed")

	// ErrNotTrainee is returned when a program operation targets a staff
	// account. Staff have no schedule or ledger.
	ErrNotTrainee = errors.New("athlete is not a trainee")
)

// Store is the persistence surface the service needs. *storage.DB satisfies
// it; tests substitute an in-memory fake.
type Store interface {
	InsertAthlete(ctx context.Context, row models.AthleteRow) error
	GetAthlete(ctx context.Context, id uuid.UUID) (*models.AthleteRow, error)
	ListAthletes(ctx context.Context, role models.Role) ([]models.AthleteRow, error)

	InsertBlockPlan(ctx context.Context, athleteID uuid.UUID, plan program.BlockPlan) (*models.BlockRow, error)
	ListBlocks(ctx context.Context, athleteID uuid.UUID) ([]models.BlockRow, error)
	GetBlockBySeq(ctx context.Context, athleteID uuid.UUID, seq int) (*models.BlockRow, error)
	DeleteBlock(ctx context.Context, athleteID, blockID uuid.UUID) error
	ListSessions(ctx context.Context, athleteID uuid.UUID) ([]models.SessionRow, error)
	GetSession(ctx context.Context, athleteID, sessionID uuid.UUID) (*models.SessionRow, error)
	ApplyShifts(ctx context.Context, cfg config.ProgramConfig, athleteID uuid.UUID, shifts []program.BlockShift) error

	UpsertResult(ctx context.Context, schema program.ResultSchema, row models.ResultRow) error
	GetResultBySession(ctx context.Context, schema program.ResultSchema, athleteID, sessionID uuid.UUID) (*models.ResultRow, error)
	GetResultsByAthlete(ctx context.Context, schema program.ResultSchema, athleteID uuid.UUID) (map[uuid.UUID]*models.ResultRow, error)

	ReplaceLedger(ctx context.Context, athleteID uuid.UUID, entries []models.LedgerEntryRow, snapshot models.SnapshotRow) error
	ListLedger(ctx context.Context, athleteID uuid.UUID) ([]models.LedgerEntryRow, error)
	GetSnapshot(ctx context.Context, athleteID uuid.UUID) (*models.SnapshotRow, error)
	ListTraineeSnapshots(ctx context.Context) ([]storage.TraineeSnapshot, error)
}

// LeaderboardCache caches assembled leaderboard rows. A nil cache is valid
// and means every request hits the database.
type LeaderboardCache interface {
	Get(ctx context.Context, kind string, dest any) (bool, error)
	Set(ctx context.Context, kind string, value any) error
	Invalidate(ctx context.Context) error
}

// Service implements the training program operations on top of a Store.
type Service struct {
	store  Store
	cache  LeaderboardCache
	cfg    config.ProgramConfig
	schema program.ResultSchema
	log    *slog.Logger
}

// New creates a Service. cache may be nil.
func New(store Store, cache LeaderboardCache, cfg config.ProgramConfig, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		cfg:    cfg,
		schema: program.SchemaForVersion(cfg.ResultSchemaVersion),
		log:    log,
	}
}

// trainee loads an athlete and checks they are enrolled program-side.
func (s *Service) trainee(ctx context.Context, id uuid.UUID) (*models.AthleteRow, error) {
	athlete, err := s.store.GetAthlete(ctx, id)
	if err != nil {
		return nil, err
	}
	if athlete.Role != models.RoleTrainee {
		return nil, ErrNotTrainee
	}
	return athlete, nil
}
