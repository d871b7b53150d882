package program

import "github.com/claude/liftcamp/internal/models"

// Field is a logical result-field name. Business rules (the completeness
// predicate, the importer, the API) speak in logical fields only; the mapping
// to storage columns lives in exactly one place, ResultSchema, and is
// versioned. A storage rename that forgets to bump the schema breaks the
// round-trip test instead of silently breaking completeness checks.
type Field string

const (
	// Training session scores.
	FieldWarmupScore       Field = "warmup_score"
	FieldStrengthScore     Field = "strength_score"
	FieldConditioningScore Field = "conditioning_score"

	// Testing session maxes.
	FieldSquatMax    Field = "squat_max"
	FieldBenchMax    Field = "bench_max"
	FieldDeadliftMax Field = "deadlift_max"

	// Optional testing bonus measurement. Never gates completeness.
	FieldBroadJump Field = "broad_jump"
)

// ResultSchema maps logical fields to the storage columns of one schema
// version.
type ResultSchema struct {
	Version int
	Columns map[Field]string
}

// SchemaV2 is the current results schema. V1 used the legacy single-word
// column names from the original app; the importer translates those through
// the logical field set.
func SchemaV2() ResultSchema {
	return ResultSchema{
		Version: 2,
		Columns: map[Field]string{
			FieldWarmupScore:       "score_warmup",
			FieldStrengthScore:     "score_strength",
			FieldConditioningScore: "score_conditioning",
			FieldSquatMax:          "max_squat_kg",
			FieldBenchMax:          "max_bench_kg",
			FieldDeadliftMax:       "max_deadlift_kg",
			FieldBroadJump:         "broad_jump_cm",
		},
	}
}

// SchemaV1 is the legacy results schema, kept for the importer.
func SchemaV1() ResultSchema {
	return ResultSchema{
		Version: 1,
		Columns: map[Field]string{
			FieldWarmupScore:       "warmup",
			FieldStrengthScore:     "strength",
			FieldConditioningScore: "conditioning",
			FieldSquatMax:          "squat",
			FieldBenchMax:          "bench",
			FieldDeadliftMax:       "deadlift",
			FieldBroadJump:         "jump",
		},
	}
}

// SchemaForVersion returns the schema matching a configured version,
// defaulting to the current one.
func SchemaForVersion(version int) ResultSchema {
	if version == 1 {
		return SchemaV1()
	}
	return SchemaV2()
}

// RequiredFields returns the logical fields that gate completeness for a
// session type. Rest sessions have none and are never completable.
func RequiredFields(t models.SessionType) []Field {
	switch t {
	case models.SessionTraining:
		return []Field{FieldWarmupScore, FieldStrengthScore, FieldConditioningScore}
	case models.SessionTesting:
		return []Field{FieldSquatMax, FieldBenchMax, FieldDeadliftMax}
	default:
		return nil
	}
}

// AllFields returns every logical field a session type may carry, including
// the optional bonus field.
func AllFields(t models.SessionType) []Field {
	fields := RequiredFields(t)
	if t == models.SessionTesting {
		fields = append(fields, FieldBroadJump)
	}
	return fields
}

// Column resolves a logical field to its storage column. The second return
// is false when the schema does not know the field — callers must treat that
// as "value absent", never guess a column name.
func (s ResultSchema) Column(f Field) (string, bool) {
	col, ok := s.Columns[f]
	return col, ok
}
