package postgres

import (
	"testing"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnFor(t *testing.T) {
	tests := []struct {
		update models.FieldUpdate
		column string
		value  interface{}
	}{
		{models.FieldUpdate{Field: models.FieldAssignments, Index: 0, Value: 4}, "a1", 4},
		{models.FieldUpdate{Field: models.FieldAssignments, Index: 5, Value: 9}, "a6", 9},
		{models.FieldUpdate{Field: models.FieldMidterm, Value: 12}, "midterm", 12},
		{models.FieldUpdate{Field: models.FieldFinal, Value: 18}, "final", 18},
		{models.FieldUpdate{Field: models.FieldStatus, Status: models.StatusRetake}, "status", "Retake"},
		{models.FieldUpdate{Field: models.FieldRewardRights, Value: 2}, "reward_rights", 2},
		{models.FieldUpdate{Field: models.FieldRedeemedCount, Value: 1}, "redeemed_count", 1},
	}
	for _, tt := range tests {
		column, value, err := columnFor(tt.update)
		require.NoError(t, err)
		assert.Equal(t, tt.column, column)
		assert.Equal(t, tt.value, value)
	}

	_, _, err := columnFor(models.FieldUpdate{Field: models.FieldAssignments, Index: 6})
	assert.ErrorIs(t, err, repositories.ErrInvalidField)
	_, _, err = columnFor(models.FieldUpdate{Field: "bogus"})
	assert.ErrorIs(t, err, repositories.ErrInvalidField)
}

func TestScoreRowRoundTrip(t *testing.T) {
	in := repositories.Row{
		StudentID:   "65001",
		StudentName: "Malee",
		Subject:     models.SubjectM5History,
		Record: models.SubjectRecord{
			Scores:        models.ScoreData{Assignments: [6]int{1, 2, 3, 4, 5, 6}, Midterm: 15, Final: 17},
			Status:        models.StatusNoAssessment,
			RewardRights:  2,
			RedeemedCount: 1,
			RowIndex:      7,
		},
	}

	row := NewScoreRow(in)
	assert.Equal(t, 6, row.A6)
	assert.Equal(t, "NoAssessment", row.Status)
	assert.Equal(t, in, row.toRow())
}

func TestScoreRow_UnknownStatusReadsAsNormal(t *testing.T) {
	row := ScoreRow{StudentID: "x", Subject: models.SubjectM1Social, Status: "???"}
	assert.Equal(t, models.StatusNormal, row.toRow().Record.Status)
}
