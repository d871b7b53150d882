package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/claude/liftcamp/internal/service"
	"github.com/claude/liftcamp/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateAthlete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string      `json:"name"`
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	athlete, err := s.svc.CreateAthlete(r.Context(), req.Name, req.Role, requestTime(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, athlete)
}

func (s *Server) handleListAthletes(w http.ResponseWriter, r *http.Request) {
	athletes, err := s.svc.ListAthletes(r.Context(), models.Role(r.URL.Query().Get("role")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, athletes)
}

func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathUUID(w, r, "athleteID")
	if !ok {
		return
	}

	var req struct {
		StartDate string `json:"start_date"`
		Weeks     int    `json:"weeks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start_date must be YYYY-MM-DD"})
		return
	}

	block, err := s.svc.Enroll(r.Context(), athleteID, start.UTC(), req.Weeks)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (s *Server) handleAdvanceBlock(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathUUID(w, r, "athleteID")
	if !ok {
		return
	}

	var req struct {
		Weeks int `json:"weeks"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
	}

	block, err := s.svc.AdvanceBlock(r.Context(), athleteID, req.Weeks)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (s *Server) handleReschedule(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathUUID(w, r, "athleteID")
	if !ok {
		return
	}

	var req struct {
		Seq      int    `json:"seq"`
		NewStart string `json:"new_start"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	newStart, err := time.Parse("2006-01-02", req.NewStart)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "new_start must be YYYY-MM-DD"})
		return
	}

	if err := s.svc.RescheduleFrom(r.Context(), athleteID, req.Seq, newStart.UTC(), requestTime(r)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rescheduled"})
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathUUID(w, r, "athleteID")
	if !ok {
		return
	}
	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid block sequence"})
		return
	}

	if err := s.svc.DeleteBlock(r.Context(), athleteID, seq, requestTime(r)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathUUID(w, r, "athleteID")
	if !ok {
		return
	}

	schedule, err := s.svc.GetSchedule(r.Context(), athleteID, requestTime(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathUUID(w, r, "athleteID")
	if !ok {
		return
	}

	stats, err := s.svc.GetStats(r.Context(), athleteID, requestTime(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathUUID(w, r, "athleteID")
	if !ok {
		return
	}

	entries, err := s.svc.GetLedger(r.Context(), athleteID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	s.handleResultWrite(w, r, s.svc.SaveDraft)
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	s.handleResultWrite(w, r, s.svc.SubmitResult)
}

func (s *Server) handleResultWrite(w http.ResponseWriter, r *http.Request,
	write func(ctx context.Context, athleteID, sessionID uuid.UUID, values map[program.Field]float64, now time.Time) (*models.ResultRow, error)) {

	athleteID, ok := pathUUID(w, r, "athleteID")
	if !ok {
		return
	}
	sessionID, ok := pathUUID(w, r, "sessionID")
	if !ok {
		return
	}

	var req struct {
		Values map[program.Field]float64 `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := write(r.Context(), athleteID, sessionID, req.Values, requestTime(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")

	var viewer uuid.UUID
	if v := r.URL.Query().Get("viewer"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid viewer id"})
			return
		}
		viewer = id
	}

	board, err := s.svc.GetLeaderboard(r.Context(), kind, viewer)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := pathUUID(w, r, "athleteID")
	if !ok {
		return
	}

	if err := s.svc.Recompute(r.Context(), athleteID, requestTime(r)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "recomputed"})
}

func (s *Server) handleRecomputeAll(w http.ResponseWriter, r *http.Request) {
	succeeded, failed := s.svc.RecomputeAll(r.Context(), requestTime(r))
	writeJSON(w, http.StatusOK, map[string]int{"succeeded": succeeded, "failed": failed})
}

// writeError maps service and domain errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, program.ErrIncompleteSubmission):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, program.ErrScheduleConflict),
		errors.Is(err, program.ErrSessionLocked),
		errors.Is(err, storage.ErrConcurrencyConflict),
		errors.Is(err, service.ErrAlreadyCompleted):
		status = http.StatusConflict
	case errors.Is(err, program.ErrInvalidDuration),
		errors.Is(err, program.ErrRestSession),
		errors.Is(err, service.ErrUnknownField),
		errors.Is(err, service.ErrNotTrainee):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requestTime reads the optional now query parameter, used to view the
// schedule as of another date. Defaults to the server clock.
func requestTime(r *http.Request) time.Time {
	if v := r.URL.Query().Get("now"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC()
		}
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.UUID{}, false
	}
	return id, true
}
