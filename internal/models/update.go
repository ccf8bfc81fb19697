package models

import "fmt"

// ScoreField names a writable cell of a subject record.
type ScoreField string

const (
	FieldAssignments   ScoreField = "assignments"
	FieldMidterm       ScoreField = "midterm"
	FieldFinal         ScoreField = "final"
	FieldStatus        ScoreField = "status"
	FieldRewardRights  ScoreField = "rewardRights"
	FieldRedeemedCount ScoreField = "redeemedCount"
)

func (f ScoreField) IsValid() bool {
	switch f {
	case FieldAssignments, FieldMidterm, FieldFinal, FieldStatus, FieldRewardRights, FieldRedeemedCount:
		return true
	}
	return false
}

// IsScoreComponent reports whether an edit to this field changes the graded
// result and therefore requires the reward balance to be recomputed.
func (f ScoreField) IsScoreComponent() bool {
	switch f {
	case FieldAssignments, FieldMidterm, FieldFinal, FieldStatus:
		return true
	}
	return false
}

// FieldUpdate is the single-cell command sent to the store.
type FieldUpdate struct {
	StudentID string
	Subject   SubjectCode
	Field     ScoreField
	Index     int // assignment slot, only read for FieldAssignments
	Value     int
	Status    OverrideStatus // only read for FieldStatus
}

func (u FieldUpdate) Validate() error {
	if u.StudentID == "" {
		return fmt.Errorf("student id is required")
	}
	if !u.Subject.IsValid() {
		return fmt.Errorf("unknown subject %q", u.Subject)
	}
	if !u.Field.IsValid() {
		return fmt.Errorf("unknown field %q", u.Field)
	}
	if u.Field == FieldAssignments && (u.Index < 0 || u.Index >= AssignmentCount) {
		return fmt.Errorf("assignment index %d out of range", u.Index)
	}
	if u.Field == FieldStatus && !u.Status.IsValid() {
		return fmt.Errorf("unknown status %q", u.Status)
	}
	return nil
}

// Clamped returns the update with its numeric value forced into the field's
// allowed range. Out-of-range input is corrected here, never rejected.
func (u FieldUpdate) Clamped() FieldUpdate {
	switch u.Field {
	case FieldAssignments:
		u.Value = ClampAssignmentScore(u.Value)
	case FieldMidterm, FieldFinal:
		u.Value = ClampExamScore(u.Value)
	case FieldRewardRights, FieldRedeemedCount:
		if u.Value < 0 {
			u.Value = 0
		}
	}
	return u
}

// Apply returns a copy of rec with the update applied.
func (u FieldUpdate) Apply(rec SubjectRecord) SubjectRecord {
	switch u.Field {
	case FieldAssignments:
		return rec.WithAssignment(u.Index, u.Value)
	case FieldMidterm:
		return rec.WithMidterm(u.Value)
	case FieldFinal:
		return rec.WithFinal(u.Value)
	case FieldStatus:
		return rec.WithStatus(u.Status)
	case FieldRewardRights:
		return rec.WithRewardRights(u.Value)
	case FieldRedeemedCount:
		return rec.WithRedeemedCount(u.Value)
	}
	return rec
}
