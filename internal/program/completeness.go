package program

import "github.com/claude/liftcamp/internal/models"

// Complete reports whether a result record satisfies the completeness rule
// for its session type: every required field present and non-nil, resolved
// through the schema. The testing bonus field never gates completeness.
// Rest sessions are never complete, and a nil result never is either.
//
// Complete only inspects field values; whether CompletedAt is set is the
// state resolver's concern.
func Complete(schema ResultSchema, t models.SessionType, result *models.ResultRow) bool {
	if result == nil || !t.Workable() {
		return false
	}
	for _, f := range RequiredFields(t) {
		col, ok := schema.Column(f)
		if !ok {
			// Schema doesn't know the field: fail closed.
			return false
		}
		if result.Value(col) == nil {
			return false
		}
	}
	return true
}

// MissingFields returns the required logical fields a result lacks, for
// rejection messages. Order follows RequiredFields.
func MissingFields(schema ResultSchema, t models.SessionType, result *models.ResultRow) []Field {
	var missing []Field
	for _, f := range RequiredFields(t) {
		col, ok := schema.Column(f)
		if !ok || result.Value(col) == nil {
			missing = append(missing, f)
		}
	}
	return missing
}
