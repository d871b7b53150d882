package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/service"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DataSource abstracts the program service for MCP tools.
// *service.Service satisfies it.
type DataSource interface {
	ListAthletes(ctx context.Context, role models.Role) ([]models.AthleteRow, error)
	GetSchedule(ctx context.Context, athleteID uuid.UUID, now time.Time) (*service.ScheduleView, error)
	GetStats(ctx context.Context, athleteID uuid.UUID, now time.Time) (*service.StatsView, error)
	GetLedger(ctx context.Context, athleteID uuid.UUID) ([]models.LedgerEntryRow, error)
	GetLeaderboard(ctx context.Context, kind string, viewer uuid.UUID) (*service.Leaderboard, error)
}

// Compile-time check: *service.Service satisfies DataSource.
var _ DataSource = (*service.Service)(nil)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LiftCamp", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LiftCamp youth training program server. Query athlete schedules, session states, XP stats, and leaderboards."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListAthletes, Handler: h.listAthletes},
		server.ServerTool{Tool: toolGetSchedule, Handler: h.getSchedule},
		server.ServerTool{Tool: toolGetAthleteStats, Handler: h.getAthleteStats},
		server.ServerTool{Tool: toolGetXPLedger, Handler: h.getXPLedger},
		server.ServerTool{Tool: toolGetLeaderboard, Handler: h.getLeaderboard},
	)

	s.AddResources(
		server.ServerResource{Resource: resLeaderboards, Handler: h.leaderboards},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resLeaderboards = mcp.NewResource(
	"liftcamp://leaderboards",
	"Leaderboards",
	mcp.WithResourceDescription("Current strength and consistency leaderboards over all trainees"),
	mcp.WithMIMEType("application/json"),
)

func (h *handlers) leaderboards(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	strength, err := h.ds.GetLeaderboard(ctx, service.LeaderboardStrength, uuid.UUID{})
	if err != nil {
		return nil, err
	}
	consistency, err := h.ds.GetLeaderboard(ctx, service.LeaderboardConsistency, uuid.UUID{})
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(map[string]any{
		"strength":    strength.Strength,
		"consistency": consistency.Consistency,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
