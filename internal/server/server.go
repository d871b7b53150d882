package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/claude/liftcamp/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ProgramService is the slice of the service layer the handlers use.
// *service.Service satisfies it; tests substitute a stub.
type ProgramService interface {
	CreateAthlete(ctx context.Context, name string, role models.Role, now time.Time) (*models.AthleteRow, error)
	ListAthletes(ctx context.Context, role models.Role) ([]models.AthleteRow, error)

	Enroll(ctx context.Context, athleteID uuid.UUID, start time.Time, weeks int) (*models.BlockRow, error)
	AdvanceBlock(ctx context.Context, athleteID uuid.UUID, weeks int) (*models.BlockRow, error)
	GetSchedule(ctx context.Context, athleteID uuid.UUID, now time.Time) (*service.ScheduleView, error)
	RescheduleFrom(ctx context.Context, athleteID uuid.UUID, seq int, newStart, now time.Time) error
	DeleteBlock(ctx context.Context, athleteID uuid.UUID, seq int, now time.Time) error

	SaveDraft(ctx context.Context, athleteID, sessionID uuid.UUID, values map[program.Field]float64, now time.Time) (*models.ResultRow, error)
	SubmitResult(ctx context.Context, athleteID, sessionID uuid.UUID, values map[program.Field]float64, now time.Time) (*models.ResultRow, error)

	GetStats(ctx context.Context, athleteID uuid.UUID, now time.Time) (*service.StatsView, error)
	GetLedger(ctx context.Context, athleteID uuid.UUID) ([]models.LedgerEntryRow, error)
	GetLeaderboard(ctx context.Context, kind string, viewer uuid.UUID) (*service.Leaderboard, error)
	Recompute(ctx context.Context, athleteID uuid.UUID, now time.Time) error
	RecomputeAll(ctx context.Context, now time.Time) (succeeded, failed int)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    ProgramService
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc ProgramService, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Unauthenticated liveness probe
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Post("/athletes", s.handleCreateAthlete)
		r.Get("/athletes", s.handleListAthletes)

		r.Route("/athletes/{athleteID}", func(r chi.Router) {
			r.Post("/enroll", s.handleEnroll)
			r.Post("/advance", s.handleAdvanceBlock)
			r.Post("/reschedule", s.handleReschedule)
			r.Delete("/blocks/{seq}", s.handleDeleteBlock)
			r.Post("/recompute", s.handleRecompute)
			r.Get("/schedule", s.handleGetSchedule)
			r.Get("/stats", s.handleGetStats)
			r.Get("/ledger", s.handleGetLedger)

			r.Put("/sessions/{sessionID}/draft", s.handleSaveDraft)
			r.Post("/sessions/{sessionID}/result", s.handleSubmitResult)
		})

		r.Get("/leaderboard/{kind}", s.handleLeaderboard)
		r.Post("/recompute", s.handleRecomputeAll)
	})
}
