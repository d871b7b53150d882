package service

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/google/uuid"
)

// translateValues maps logical fields to storage columns, rejecting any
// field the current schema does not know.
func (s *Service) translateValues(values map[program.Field]float64) (map[string]*float64, error) {
	out := make(map[string]*float64, len(values))
	for f, v := range values {
		col, ok := s.schema.Column(f)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
		v := v
		out[col] = &v
	}
	return out, nil
}

// loadForWrite fetches the session and any existing result, and checks the
// session accepts writes at the given time.
func (s *Service) loadForWrite(ctx context.Context, athleteID, sessionID uuid.UUID, now time.Time) (*models.SessionRow, *models.ResultRow, error) {
	sess, err := s.store.GetSession(ctx, athleteID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !sess.Type.Workable() {
		return nil, nil, program.ErrRestSession
	}
	if now.Before(sess.ReleaseDate) {
		return nil, nil, fmt.Errorf("session releases %s: %w",
			sess.ReleaseDate.Format("2006-01-02"), program.ErrSessionLocked)
	}

	existing, err := s.store.GetResultBySession(ctx, s.schema, athleteID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return sess, existing, nil
}

// merged overlays new values onto an existing result's values.
func merged(existing *models.ResultRow, values map[string]*float64) map[string]*float64 {
	out := make(map[string]*float64)
	if existing != nil {
		for col, v := range existing.Values {
			if v != nil {
				out[col] = v
			}
		}
	}
	for col, v := range values {
		out[col] = v
	}
	return out
}

// SaveDraft stores partial values for a released session without completing
// it. Drafts never earn XP and never appear in the ledger.
func (s *Service) SaveDraft(ctx context.Context, athleteID, sessionID uuid.UUID, values map[program.Field]float64, now time.Time) (*models.ResultRow, error) {
	if _, err := s.trainee(ctx, athleteID); err != nil {
		return nil, err
	}
	cols, err := s.translateValues(values)
	if err != nil {
		return nil, err
	}

	_, existing, err := s.loadForWrite(ctx, athleteID, sessionID, now)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.CompletedAt != nil {
		return nil, ErrAlreadyCompleted
	}

	row := models.ResultRow{
		ID:        uuid.New(),
		SessionID: sessionID,
		AthleteID: athleteID,
		Values:    merged(existing, cols),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	}
	if err := s.store.UpsertResult(ctx, s.schema, row); err != nil {
		return nil, err
	}
	return &row, nil
}

// SubmitResult completes a session. The submitted values are merged over any
// saved draft and the completeness predicate must hold for the merged record,
// otherwise nothing is saved and the error names the missing fields. On
// success the athlete's ledger is recomputed in the same call.
//
// Resubmitting a completed session amends its values but keeps the original
// completion timestamp, so recomputed ledger entries keep their dates.
func (s *Service) SubmitResult(ctx context.Context, athleteID, sessionID uuid.UUID, values map[program.Field]float64, now time.Time) (*models.ResultRow, error) {
	if _, err := s.trainee(ctx, athleteID); err != nil {
		return nil, err
	}
	cols, err := s.translateValues(values)
	if err != nil {
		return nil, err
	}

	sess, existing, err := s.loadForWrite(ctx, athleteID, sessionID, now)
	if err != nil {
		return nil, err
	}

	completedAt := now
	if existing != nil && existing.CompletedAt != nil {
		completedAt = *existing.CompletedAt
	}

	row := models.ResultRow{
		ID:          uuid.New(),
		SessionID:   sessionID,
		AthleteID:   athleteID,
		Values:      merged(existing, cols),
		CompletedAt: &completedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if existing != nil {
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	}

	if missing := program.MissingFields(s.schema, sess.Type, &row); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", program.ErrIncompleteSubmission, missing)
	}

	if err := s.store.UpsertResult(ctx, s.schema, row); err != nil {
		return nil, err
	}
	if err := s.Recompute(ctx, athleteID, now); err != nil {
		return nil, fmt.Errorf("result saved but recompute failed: %w", err)
	}
	return &row, nil
}
