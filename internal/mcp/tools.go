package mcp

import (
	"context"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// parseAsOf reads an optional as_of date, defaulting to now.
func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// --- Tool definitions ---

var toolListAthletes = mcp.NewTool("list_athletes",
	mcp.WithDescription("List registered athletes with their IDs and roles."),
	mcp.WithString("role", mcp.Description("Filter by role."), mcp.Enum("trainee", "staff")),
)

var toolGetSchedule = mcp.NewTool("get_schedule",
	mcp.WithDescription("Get an athlete's full training schedule: blocks, sessions, release dates, and each session's state (locked/available/completed)."),
	mcp.WithString("athlete_id", mcp.Required(), mcp.Description("Athlete UUID")),
	mcp.WithString("as_of", mcp.Description("View the schedule as of this date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetAthleteStats = mcp.NewTool("get_athlete_stats",
	mcp.WithDescription("Get an athlete's total XP, level, progress toward the next level, and consistency percentage."),
	mcp.WithString("athlete_id", mcp.Required(), mcp.Description("Athlete UUID")),
	mcp.WithString("as_of", mcp.Description("Compute consistency as of this date. Defaults to now.")),
)

var toolGetXPLedger = mcp.NewTool("get_xp_ledger",
	mcp.WithDescription("Get an athlete's XP ledger entries in award order, with the source of each award."),
	mcp.WithString("athlete_id", mcp.Required(), mcp.Description("Athlete UUID")),
)

var toolGetLeaderboard = mcp.NewTool("get_leaderboard",
	mcp.WithDescription("Get a ranked leaderboard over all trainees. Ties share a rank."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("Leaderboard kind"), mcp.Enum("strength", "consistency")),
	mcp.WithString("viewer_id", mcp.Description("Athlete UUID whose row gets the is_you flag")),
)

// --- Tool handlers ---

func (h *handlers) listAthletes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athletes, err := h.ds.ListAthletes(ctx, models.Role(req.GetString("role", "")))
	if err != nil {
		h.log.Error("mcp list_athletes", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(athletes)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athleteID, errResult := h.athleteID(req)
	if errResult != nil {
		return errResult, nil
	}

	asOf, err := parseAsOf(req.GetString("as_of", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid as_of date: " + err.Error()), nil
	}

	schedule, err := h.ds.GetSchedule(ctx, athleteID, asOf)
	if err != nil {
		h.log.Error("mcp get_schedule", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(schedule)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getAthleteStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athleteID, errResult := h.athleteID(req)
	if errResult != nil {
		return errResult, nil
	}

	asOf, err := parseAsOf(req.GetString("as_of", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid as_of date: " + err.Error()), nil
	}

	stats, err := h.ds.GetStats(ctx, athleteID, asOf)
	if err != nil {
		h.log.Error("mcp get_athlete_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getXPLedger(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	athleteID, errResult := h.athleteID(req)
	if errResult != nil {
		return errResult, nil
	}

	entries, err := h.ds.GetLedger(ctx, athleteID)
	if err != nil {
		h.log.Error("mcp get_xp_ledger", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getLeaderboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("kind parameter is required"), nil
	}

	var viewer uuid.UUID
	if v := req.GetString("viewer_id", ""); v != "" {
		viewer, err = uuid.Parse(v)
		if err != nil {
			return mcp.NewToolResultError("invalid viewer_id"), nil
		}
	}

	board, err := h.ds.GetLeaderboard(ctx, kind, viewer)
	if err != nil {
		h.log.Error("mcp get_leaderboard", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(board)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) athleteID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString("athlete_id")
	if err != nil {
		return uuid.UUID{}, mcp.NewToolResultError("athlete_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, mcp.NewToolResultError("athlete_id must be a UUID")
	}
	return id, nil
}
