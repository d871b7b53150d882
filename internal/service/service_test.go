package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/claude/liftcamp/internal/config"
	"github.com/claude/liftcamp/internal/models"
	"github.com/claude/liftcamp/internal/program"
	"github.com/claude/liftcamp/internal/storage"
	"github.com/google/uuid"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	athletes map[uuid.UUID]models.AthleteRow
	blocks   map[uuid.UUID][]models.BlockRow
	sessions map[uuid.UUID][]models.SessionRow
	results  map[uuid.UUID]*models.ResultRow
	ledgers  map[uuid.UUID][]models.LedgerEntryRow
	snaps    map[uuid.UUID]models.SnapshotRow

	failBlocksFor map[uuid.UUID]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		athletes:      make(map[uuid.UUID]models.AthleteRow),
		blocks:        make(map[uuid.UUID][]models.BlockRow),
		sessions:      make(map[uuid.UUID][]models.SessionRow),
		results:       make(map[uuid.UUID]*models.ResultRow),
		ledgers:       make(map[uuid.UUID][]models.LedgerEntryRow),
		snaps:         make(map[uuid.UUID]models.SnapshotRow),
		failBlocksFor: make(map[uuid.UUID]bool),
	}
}

func (f *fakeStore) InsertAthlete(_ context.Context, row models.AthleteRow) error {
	f.athletes[row.ID] = row
	return nil
}

func (f *fakeStore) GetAthlete(_ context.Context, id uuid.UUID) (*models.AthleteRow, error) {
	a, ok := f.athletes[id]
	if !ok {
		return nil, fmt.Errorf("athlete %s: %w", id, storage.ErrNotFound)
	}
	return &a, nil
}

func (f *fakeStore) ListAthletes(_ context.Context, role models.Role) ([]models.AthleteRow, error) {
	var out []models.AthleteRow
	for _, a := range f.athletes {
		if role == "" || a.Role == role {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) InsertBlockPlan(_ context.Context, athleteID uuid.UUID, plan program.BlockPlan) (*models.BlockRow, error) {
	block := models.BlockRow{
		ID:        uuid.New(),
		AthleteID: athleteID,
		Seq:       plan.Seq,
		StartDate: plan.StartDate,
		EndDate:   plan.EndDate,
		Weeks:     plan.Weeks,
	}
	f.blocks[athleteID] = append(f.blocks[athleteID], block)
	for _, sp := range plan.Sessions {
		f.sessions[athleteID] = append(f.sessions[athleteID], models.SessionRow{
			ID:          uuid.New(),
			BlockID:     block.ID,
			AthleteID:   athleteID,
			Week:        sp.Week,
			Number:      sp.Number,
			Type:        sp.Type,
			ReleaseDate: sp.ReleaseDate,
		})
	}
	return &block, nil
}

func (f *fakeStore) ListBlocks(_ context.Context, athleteID uuid.UUID) ([]models.BlockRow, error) {
	if f.failBlocksFor[athleteID] {
		return nil, errors.New("boom")
	}
	out := append([]models.BlockRow(nil), f.blocks[athleteID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (f *fakeStore) GetBlockBySeq(_ context.Context, athleteID uuid.UUID, seq int) (*models.BlockRow, error) {
	for _, b := range f.blocks[athleteID] {
		if b.Seq == seq {
			return &b, nil
		}
	}
	return nil, fmt.Errorf("block %d: %w", seq, storage.ErrNotFound)
}

func (f *fakeStore) DeleteBlock(_ context.Context, athleteID, blockID uuid.UUID) error {
	kept := f.blocks[athleteID][:0]
	for _, b := range f.blocks[athleteID] {
		if b.ID != blockID {
			kept = append(kept, b)
		}
	}
	f.blocks[athleteID] = kept

	sessions := f.sessions[athleteID][:0]
	for _, s := range f.sessions[athleteID] {
		if s.BlockID != blockID {
			sessions = append(sessions, s)
		}
	}
	f.sessions[athleteID] = sessions
	return nil
}

func (f *fakeStore) ListSessions(_ context.Context, athleteID uuid.UUID) ([]models.SessionRow, error) {
	return append([]models.SessionRow(nil), f.sessions[athleteID]...), nil
}

func (f *fakeStore) GetSession(_ context.Context, athleteID, sessionID uuid.UUID) (*models.SessionRow, error) {
	for _, s := range f.sessions[athleteID] {
		if s.ID == sessionID {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
}

func (f *fakeStore) ApplyShifts(_ context.Context, cfg config.ProgramConfig, athleteID uuid.UUID, shifts []program.BlockShift) error {
	for _, shift := range shifts {
		for i, b := range f.blocks[athleteID] {
			if b.ID == shift.BlockID {
				f.blocks[athleteID][i].StartDate = shift.StartDate
				f.blocks[athleteID][i].EndDate = shift.EndDate
			}
		}
		for i, s := range f.sessions[athleteID] {
			if s.BlockID == shift.BlockID {
				f.sessions[athleteID][i].ReleaseDate = program.ReleaseDate(cfg, shift.StartDate, s.Week, s.Number)
			}
		}
	}
	return nil
}

func (f *fakeStore) UpsertResult(_ context.Context, _ program.ResultSchema, row models.ResultRow) error {
	f.results[row.SessionID] = &row
	return nil
}

func (f *fakeStore) GetResultBySession(_ context.Context, _ program.ResultSchema, _, sessionID uuid.UUID) (*models.ResultRow, error) {
	return f.results[sessionID], nil
}

func (f *fakeStore) GetResultsByAthlete(_ context.Context, _ program.ResultSchema, athleteID uuid.UUID) (map[uuid.UUID]*models.ResultRow, error) {
	out := make(map[uuid.UUID]*models.ResultRow)
	for id, r := range f.results {
		if r.AthleteID == athleteID {
			out[id] = r
		}
	}
	return out, nil
}

func (f *fakeStore) ReplaceLedger(_ context.Context, athleteID uuid.UUID, entries []models.LedgerEntryRow, snapshot models.SnapshotRow) error {
	f.ledgers[athleteID] = entries
	f.snaps[athleteID] = snapshot
	return nil
}

func (f *fakeStore) ListLedger(_ context.Context, athleteID uuid.UUID) ([]models.LedgerEntryRow, error) {
	return append([]models.LedgerEntryRow(nil), f.ledgers[athleteID]...), nil
}

func (f *fakeStore) GetSnapshot(_ context.Context, athleteID uuid.UUID) (*models.SnapshotRow, error) {
	s, ok := f.snaps[athleteID]
	if !ok {
		return nil, fmt.Errorf("snapshot: %w", storage.ErrNotFound)
	}
	return &s, nil
}

func (f *fakeStore) ListTraineeSnapshots(_ context.Context) ([]storage.TraineeSnapshot, error) {
	var out []storage.TraineeSnapshot
	for _, a := range f.athletes {
		if a.Role != models.RoleTrainee {
			continue
		}
		t := storage.TraineeSnapshot{AthleteID: a.ID, Name: a.Name}
		if s, ok := f.snaps[a.ID]; ok {
			t.Snapshot = s
		} else {
			t.Snapshot = models.SnapshotRow{AthleteID: a.ID, Level: 1}
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeCache counts invalidations and never serves a hit.
type fakeCache struct {
	sets          int
	invalidations int
}

func newFakeCache() *fakeCache { return &fakeCache{} }

func (c *fakeCache) Get(context.Context, string, any) (bool, error) { return false, nil }

func (c *fakeCache) Set(context.Context, string, any) error {
	c.sets++
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalidations++
	return nil
}

func testService(store Store) *Service {
	return New(store, nil, config.DefaultProgram(), slog.New(slog.DiscardHandler))
}

func addTrainee(t *testing.T, f *fakeStore, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.athletes[id] = models.AthleteRow{ID: id, Name: name, Role: models.RoleTrainee}
	return id
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parsing %q: %v", s, err)
	}
	return d.UTC()
}

// sessionAt finds a session by week and number.
func sessionAt(t *testing.T, f *fakeStore, athleteID uuid.UUID, week, number int) models.SessionRow {
	t.Helper()
	for _, s := range f.sessions[athleteID] {
		if s.Week == week && s.Number == number {
			return s
		}
	}
	t.Fatalf("no session for week %d number %d", week, number)
	return models.SessionRow{}
}

func trainingValues() map[program.Field]float64 {
	return map[program.Field]float64{
		program.FieldWarmupScore:       7,
		program.FieldStrengthScore:     8,
		program.FieldConditioningScore: 6,
	}
}

// TestEnrollCreatesBlock verifies enrollment materializes the full first
// block: correct session counts and no duplicate enrollment.
func TestEnrollCreatesBlock(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")

	block, err := svc.Enroll(context.Background(), athlete, start, 0)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if block.Seq != 1 || block.Weeks != 12 {
		t.Errorf("block seq=%d weeks=%d, want 1 and 12", block.Seq, block.Weeks)
	}

	workable := 0
	for _, s := range f.sessions[athlete] {
		if s.Type.Workable() {
			workable++
		}
	}
	if workable != 20 {
		t.Errorf("workable sessions = %d, want 20", workable)
	}

	if _, err := svc.Enroll(context.Background(), athlete, start.AddDate(0, 0, 7), 0); !errors.Is(err, program.ErrScheduleConflict) {
		t.Errorf("second Enroll error = %v, want ErrScheduleConflict", err)
	}
}

// TestEnrollStaffRejected verifies staff accounts have no schedule.
func TestEnrollStaffRejected(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	id := uuid.New()
	f.athletes[id] = models.AthleteRow{ID: id, Name: "Coach", Role: models.RoleStaff}

	if _, err := svc.Enroll(context.Background(), id, day(t, "2025-01-06"), 0); !errors.Is(err, ErrNotTrainee) {
		t.Errorf("Enroll error = %v, want ErrNotTrainee", err)
	}
}

// TestAdvanceBlockAppends verifies the next block starts the day after the
// previous one ends with the next sequence number.
func TestAdvanceBlockAppends(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")

	first, err := svc.Enroll(context.Background(), athlete, start, 0)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	second, err := svc.AdvanceBlock(context.Background(), athlete, 0)
	if err != nil {
		t.Fatalf("AdvanceBlock: %v", err)
	}

	if second.Seq != 2 {
		t.Errorf("second block seq = %d, want 2", second.Seq)
	}
	wantStart := first.EndDate.AddDate(0, 0, 1)
	if !second.StartDate.Equal(wantStart) {
		t.Errorf("second block starts %v, want %v", second.StartDate, wantStart)
	}
}

// TestSubmitResultCompletesAndAwards verifies the submit path end to end:
// the session shows completed in the schedule and XP lands in the ledger.
func TestSubmitResultCompletesAndAwards(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	sess := sessionAt(t, f, athlete, 1, 1)
	now := start.Add(12 * time.Hour)
	if _, err := svc.SubmitResult(context.Background(), athlete, sess.ID, trainingValues(), now); err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}

	sched, err := svc.GetSchedule(context.Background(), athlete, now)
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	var state program.SessionState
	for _, sv := range sched.Blocks[0].Sessions {
		if sv.ID == sess.ID {
			state = sv.State
		}
	}
	if state != program.StateCompleted {
		t.Errorf("session state = %q, want completed", state)
	}

	stats, err := svc.GetStats(context.Background(), athlete, now)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	want := config.DefaultProgram().Awards.SessionCompletion
	if stats.TotalXP != want {
		t.Errorf("TotalXP = %d, want %d", stats.TotalXP, want)
	}
	if stats.Completed != 1 {
		t.Errorf("Completed = %d, want 1", stats.Completed)
	}
}

// TestSubmitIncompleteRejected verifies a submission missing a required
// field saves nothing.
func TestSubmitIncompleteRejected(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	sess := sessionAt(t, f, athlete, 1, 1)
	partial := map[program.Field]float64{program.FieldWarmupScore: 7}
	_, err := svc.SubmitResult(context.Background(), athlete, sess.ID, partial, start.Add(time.Hour))
	if !errors.Is(err, program.ErrIncompleteSubmission) {
		t.Fatalf("SubmitResult error = %v, want ErrIncompleteSubmission", err)
	}
	if f.results[sess.ID] != nil {
		t.Error("partial submission was saved")
	}
}

// TestSubmitLockedAndRest verifies unreleased and rest sessions reject
// submissions with the right sentinel.
func TestSubmitLockedAndRest(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	week2 := sessionAt(t, f, athlete, 2, 1)
	_, err := svc.SubmitResult(context.Background(), athlete, week2.ID, trainingValues(), start.Add(time.Hour))
	if !errors.Is(err, program.ErrSessionLocked) {
		t.Errorf("locked session error = %v, want ErrSessionLocked", err)
	}

	rest := sessionAt(t, f, athlete, 7, 1)
	_, err = svc.SubmitResult(context.Background(), athlete, rest.ID, trainingValues(), start.AddDate(0, 0, 7*8))
	if !errors.Is(err, program.ErrRestSession) {
		t.Errorf("rest session error = %v, want ErrRestSession", err)
	}
}

// TestSaveDraftThenSubmit verifies drafts merge into the final submission
// and never earn XP on their own.
func TestSaveDraftThenSubmit(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	sess := sessionAt(t, f, athlete, 1, 1)
	now := start.Add(time.Hour)
	draft := map[program.Field]float64{program.FieldWarmupScore: 7}
	if _, err := svc.SaveDraft(context.Background(), athlete, sess.ID, draft, now); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if len(f.ledgers[athlete]) != 0 {
		t.Fatal("draft produced ledger entries")
	}

	rest := map[program.Field]float64{
		program.FieldStrengthScore:     8,
		program.FieldConditioningScore: 6,
	}
	result, err := svc.SubmitResult(context.Background(), athlete, sess.ID, rest, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("SubmitResult after draft: %v", err)
	}
	if got := result.Value("score_warmup"); got == nil || *got != 7 {
		t.Error("draft value did not survive the merge")
	}

	if _, err := svc.SaveDraft(context.Background(), athlete, sess.ID, draft, now.Add(2*time.Hour)); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("draft over completed session error = %v, want ErrAlreadyCompleted", err)
	}
}

// TestResubmitKeepsCompletionTime verifies amending a completed session does
// not move its ledger dates.
func TestResubmitKeepsCompletionTime(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	sess := sessionAt(t, f, athlete, 1, 1)
	first := start.Add(time.Hour)
	if _, err := svc.SubmitResult(context.Background(), athlete, sess.ID, trainingValues(), first); err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}

	amended := trainingValues()
	amended[program.FieldStrengthScore] = 9
	result, err := svc.SubmitResult(context.Background(), athlete, sess.ID, amended, first.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !result.CompletedAt.Equal(first) {
		t.Errorf("CompletedAt moved to %v, want %v", result.CompletedAt, first)
	}
	for _, e := range f.ledgers[athlete] {
		if !e.AwardedAt.Equal(first) {
			t.Errorf("ledger entry awarded at %v, want %v", e.AwardedAt, first)
		}
	}
}

// TestGetStatsZeroForNewTrainee verifies a trainee without any snapshot gets
// zeroed stats at level 1 instead of an error.
func TestGetStatsZeroForNewTrainee(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")

	stats, err := svc.GetStats(context.Background(), athlete, day(t, "2025-01-06"))
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalXP != 0 || stats.Level != 1 || stats.Consistency != 0 {
		t.Errorf("stats = %+v, want zeroed at level 1", stats)
	}
}

// TestGetLeaderboardFlagsViewer verifies ranking order and the viewer flag.
func TestGetLeaderboardFlagsViewer(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	a := addTrainee(t, f, "Ava")
	b := addTrainee(t, f, "Ben")
	f.snaps[a] = models.SnapshotRow{AthleteID: a, TotalXP: 50, Level: 3}
	f.snaps[b] = models.SnapshotRow{AthleteID: b, TotalXP: 80, Level: 4}

	board, err := svc.GetLeaderboard(context.Background(), LeaderboardStrength, a)
	if err != nil {
		t.Fatalf("GetLeaderboard: %v", err)
	}
	rows := board.Strength
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].AthleteID != b || rows[0].Rank != 1 {
		t.Errorf("first row = %+v, want Ben at rank 1", rows[0])
	}
	if !rows[1].IsYou || rows[0].IsYou {
		t.Error("viewer flag on the wrong row")
	}

	if _, err := svc.GetLeaderboard(context.Background(), "bogus", a); err == nil {
		t.Error("unknown kind accepted")
	}
}

// TestRescheduleFromCascades verifies moving a block pushes later blocks and
// recomputes session release dates.
func TestRescheduleFromCascades(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, err := svc.AdvanceBlock(context.Background(), athlete, 0); err != nil {
		t.Fatalf("AdvanceBlock: %v", err)
	}

	newStart := day(t, "2025-01-20")
	if err := svc.RescheduleFrom(context.Background(), athlete, 1, newStart, newStart); err != nil {
		t.Fatalf("RescheduleFrom: %v", err)
	}

	blocks, _ := f.ListBlocks(context.Background(), athlete)
	if !blocks[0].StartDate.Equal(newStart) {
		t.Errorf("block 1 starts %v, want %v", blocks[0].StartDate, newStart)
	}
	wantSecond := blocks[0].EndDate.AddDate(0, 0, 1)
	if !blocks[1].StartDate.Equal(wantSecond) {
		t.Errorf("block 2 starts %v, want %v", blocks[1].StartDate, wantSecond)
	}

	sess := sessionAt(t, f, athlete, 1, 1)
	if !sess.ReleaseDate.Equal(newStart) {
		t.Errorf("week 1 session releases %v, want %v", sess.ReleaseDate, newStart)
	}
}

// TestRescheduleFromRejectsOverlap verifies a block cannot be moved onto
// dates still occupied by its predecessor, and that nothing is persisted
// when the move is rejected.
func TestRescheduleFromRejectsOverlap(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, err := svc.AdvanceBlock(context.Background(), athlete, 0); err != nil {
		t.Fatalf("AdvanceBlock: %v", err)
	}
	secondStart := f.blocks[athlete][1].StartDate

	// Block 1 runs 2025-01-06..2025-03-30; 2025-02-03 falls inside it.
	err := svc.RescheduleFrom(context.Background(), athlete, 2, day(t, "2025-02-03"), start)
	if !errors.Is(err, program.ErrScheduleConflict) {
		t.Fatalf("RescheduleFrom error = %v, want ErrScheduleConflict", err)
	}

	blocks, _ := f.ListBlocks(context.Background(), athlete)
	if !blocks[1].StartDate.Equal(secondStart) {
		t.Errorf("block 2 moved to %v despite the conflict", blocks[1].StartDate)
	}
}

// TestRescheduleFromUnknownBlock verifies an unknown sequence number is a
// not-found error, not an internal one.
func TestRescheduleFromUnknownBlock(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	err := svc.RescheduleFrom(context.Background(), athlete, 5, day(t, "2025-06-02"), start)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("RescheduleFrom error = %v, want ErrNotFound", err)
	}
}

// TestRescheduleFromRefreshesSnapshot verifies a reschedule recomputes the
// stat snapshot and drops cached leaderboards: release dates feed the
// consistency score, so the stored value must track the move.
func TestRescheduleFromRefreshesSnapshot(t *testing.T) {
	f := newFakeStore()
	cache := newFakeCache()
	svc := New(f, cache, config.DefaultProgram(), slog.New(slog.DiscardHandler))
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-02-03")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	sess := sessionAt(t, f, athlete, 1, 1)
	now := start.Add(12 * time.Hour)
	if _, err := svc.SubmitResult(context.Background(), athlete, sess.ID, trainingValues(), now); err != nil {
		t.Fatalf("SubmitResult: %v", err)
	}
	if got := f.snaps[athlete].Consistency; got != 100 {
		t.Fatalf("snapshot consistency after submit = %v, want 100", got)
	}

	// Pull the block four weeks earlier: many more sessions are now released
	// at the same instant, so consistency must drop.
	invalidations := cache.invalidations
	if err := svc.RescheduleFrom(context.Background(), athlete, 1, day(t, "2025-01-06"), now); err != nil {
		t.Fatalf("RescheduleFrom: %v", err)
	}

	stats, err := svc.GetStats(context.Background(), athlete, now)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	snap := f.snaps[athlete]
	if snap.Consistency == 100 {
		t.Error("snapshot consistency unchanged after reschedule")
	}
	if snap.Consistency != stats.Consistency {
		t.Errorf("snapshot consistency = %v, live value = %v", snap.Consistency, stats.Consistency)
	}
	if cache.invalidations <= invalidations {
		t.Error("leaderboard cache not invalidated by reschedule")
	}
}

// TestDeleteBlockOnlyTrailingFuture verifies only the final, not-yet-started
// block can be discarded.
func TestDeleteBlockOnlyTrailingFuture(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	athlete := addTrainee(t, f, "Dana")
	start := day(t, "2025-01-06")
	if _, err := svc.Enroll(context.Background(), athlete, start, 0); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, err := svc.AdvanceBlock(context.Background(), athlete, 0); err != nil {
		t.Fatalf("AdvanceBlock: %v", err)
	}
	now := start.Add(time.Hour)

	if err := svc.DeleteBlock(context.Background(), athlete, 1, now); !errors.Is(err, program.ErrScheduleConflict) {
		t.Errorf("deleting non-trailing block error = %v, want ErrScheduleConflict", err)
	}

	if err := svc.DeleteBlock(context.Background(), athlete, 2, now); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}
	if len(f.blocks[athlete]) != 1 {
		t.Errorf("blocks remaining = %d, want 1", len(f.blocks[athlete]))
	}

	if err := svc.DeleteBlock(context.Background(), athlete, 1, now); !errors.Is(err, program.ErrScheduleConflict) {
		t.Errorf("deleting started block error = %v, want ErrScheduleConflict", err)
	}
}

// TestRecomputeAllIsolatesFailures verifies one broken athlete does not stop
// the fleet-wide sweep.
func TestRecomputeAllIsolatesFailures(t *testing.T) {
	f := newFakeStore()
	svc := testService(f)
	good := addTrainee(t, f, "Ava")
	bad := addTrainee(t, f, "Ben")
	f.failBlocksFor[bad] = true

	succeeded, failed := svc.RecomputeAll(context.Background(), day(t, "2025-01-06"))
	if succeeded != 1 || failed != 1 {
		t.Errorf("succeeded=%d failed=%d, want 1 and 1", succeeded, failed)
	}
	if _, ok := f.snaps[good]; !ok {
		t.Error("healthy athlete was not recomputed")
	}
}
