package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/gradequest-service/internal/events"
	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/rewards"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const subject = models.SubjectM5History

func TestGradebookService_Redeem_LazySyncThenSpend(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 0, 0))
	ctx := context.Background()

	view, err := env.gradebook.Redeem(ctx, "65001", subject)
	require.NoError(t, err)

	assert.True(t, view.Redeemed)
	assert.Equal(t, rewards.OutcomeRedeemed, view.Outcome)
	assert.Equal(t, msgRedeemed, view.Message)
	assert.True(t, view.Corrected)
	assert.Equal(t, 3, view.CorrectedTo)
	assert.Equal(t, 2, view.Record.Rewards.Stored)
	assert.Equal(t, 1, view.Record.Rewards.Redeemed)
	assert.Equal(t, []rewards.State{
		rewards.StateStale, rewards.StateReconciling, rewards.StateSynced, rewards.StateRedeeming, rewards.StateSynced,
	}, view.Trace)

	resynced := env.publisher.EventsOfType(events.EventRewardBalanceResynced)
	require.Len(t, resynced, 1)
	payload := resynced[0].Data.(events.RewardBalanceEvent)
	assert.Equal(t, 0, payload.Previous)
	assert.Equal(t, 3, payload.Balance)
	assert.Equal(t, "pre_spend", payload.Reason)
	assert.Len(t, env.publisher.EventsOfType(events.EventRewardRedeemed), 1)
}

func TestGradebookService_Redeem_DeniedIsNotAnError(t *testing.T) {
	// Three credits already spent: entitlement 0, balance 0.
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 0, 3))

	view, err := env.gradebook.Redeem(context.Background(), "65001", subject)
	require.NoError(t, err)

	assert.False(t, view.Redeemed)
	assert.Equal(t, rewards.OutcomeDenied, view.Outcome)
	assert.Equal(t, msgDenied, view.Message)
	assert.False(t, view.Corrected)
	assert.Equal(t, 0, view.Record.Rewards.Stored)
	assert.Equal(t, 3, view.Record.Rewards.Redeemed)
	assert.Len(t, env.publisher.EventsOfType(events.EventRewardRedemptionDenied), 1)
}

func TestGradebookService_Redeem_UnknownRecord(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 0, 0))

	_, err := env.gradebook.Redeem(context.Background(), "65001", models.SubjectM6Social)
	assert.ErrorIs(t, err, ErrSubjectNotEnrolled)
	assert.True(t, IsNotFound(err))

	_, err = env.gradebook.Redeem(context.Background(), "65001", "X9")
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestGradebookService_UpdateScore_ResyncsBalance(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 3, 0))
	ctx := context.Background()

	view, err := env.gradebook.UpdateScore(ctx, &ScoreUpdateRequest{
		StudentID: "65001",
		Subject:   subject,
		Field:     models.FieldMidterm,
		Value:     20,
	}, "teacher")
	require.NoError(t, err)

	assert.Equal(t, 80, view.Total)
	assert.Equal(t, "4", view.Grade)
	assert.Equal(t, scoring.RankDiamond, view.Rank)
	assert.Equal(t, 4, view.Rewards.Stored)
	assert.Equal(t, 4, view.Rewards.Entitlement)
	assert.Empty(t, view.SyncWarning)

	updated := env.publisher.EventsOfType(events.EventScoreUpdated)
	require.Len(t, updated, 1)
	payload := updated[0].Data.(events.ScoreUpdatedEvent)
	assert.Equal(t, "midterm", payload.Field)
	assert.Equal(t, "20", payload.Value)
	assert.Nil(t, payload.Index)
	assert.Len(t, env.publisher.EventsOfType(events.EventRewardBalanceResynced), 1)
}

func TestGradebookService_UpdateScore_ClampsAssignment(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 3, 0))

	view, err := env.gradebook.UpdateScore(context.Background(), &ScoreUpdateRequest{
		StudentID: "65001",
		Subject:   subject,
		Field:     models.FieldAssignments,
		Index:     intPtr(0),
		Value:     -4,
	}, "teacher")
	require.NoError(t, err)

	assert.Equal(t, 0, view.Scores.Assignments[0])
	assert.Equal(t, 50, view.Total)
	assert.Equal(t, 2, view.Rewards.Stored)

	payload := env.publisher.EventsOfType(events.EventScoreUpdated)[0].Data.(events.ScoreUpdatedEvent)
	require.NotNil(t, payload.Index)
	assert.Equal(t, 0, *payload.Index)
	assert.Equal(t, "0", payload.Value)
}

func TestGradebookService_UpdateScore_Rejections(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 3, 0))
	ctx := context.Background()

	tests := []struct {
		name string
		req  *ScoreUpdateRequest
	}{
		{"status goes through its own endpoint", &ScoreUpdateRequest{StudentID: "65001", Subject: subject, Field: models.FieldStatus}},
		{"balance goes through the rewards endpoint", &ScoreUpdateRequest{StudentID: "65001", Subject: subject, Field: models.FieldRewardRights, Value: 9}},
		{"redeemed count is not editable", &ScoreUpdateRequest{StudentID: "65001", Subject: subject, Field: models.FieldRedeemedCount, Value: 0}},
		{"assignment needs an index", &ScoreUpdateRequest{StudentID: "65001", Subject: subject, Field: models.FieldAssignments, Value: 5}},
		{"assignment index out of range", &ScoreUpdateRequest{StudentID: "65001", Subject: subject, Field: models.FieldAssignments, Index: intPtr(6), Value: 5}},
		{"unknown field", &ScoreUpdateRequest{StudentID: "65001", Subject: subject, Field: "bonus", Value: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.gradebook.UpdateScore(ctx, tt.req, "teacher")
			require.Error(t, err)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestGradebookService_RedeemedCountCannotBeRewound(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 0, 3))
	ctx := context.Background()

	view, err := env.gradebook.Redeem(ctx, "65001", subject)
	require.NoError(t, err)
	require.False(t, view.Redeemed)

	_, err = env.gradebook.UpdateScore(ctx, &ScoreUpdateRequest{
		StudentID: "65001",
		Subject:   subject,
		Field:     models.FieldRedeemedCount,
		Value:     0,
	}, "teacher")
	require.Error(t, err)
	assert.True(t, IsValidation(err), "got %v", err)

	extra := 0
	for i := 0; i < 5; i++ {
		view, err := env.gradebook.Redeem(ctx, "65001", subject)
		require.NoError(t, err)
		if view.Redeemed {
			extra++
		}
	}
	assert.Zero(t, extra)

	student, err := env.gradebook.GetStudent(ctx, "65001")
	require.NoError(t, err)
	require.Len(t, student.Subjects, 1)
	assert.Equal(t, 3, student.Subjects[0].Rewards.Redeemed)
}

func TestGradebookService_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 3, 0))

	_, err := env.gradebook.UpdateStatus(context.Background(), &StatusUpdateRequest{
		StudentID: "65001",
		Subject:   subject,
		Status:    "Absent",
	}, "teacher")
	require.Error(t, err)
	assert.True(t, IsValidation(err), "got %v", err)
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestGradebookService_UpdateStatus_SuppressesRewards(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 3, 0))

	view, err := env.gradebook.UpdateStatus(context.Background(), &StatusUpdateRequest{
		StudentID: "65001",
		Subject:   subject,
		Status:    "Retake",
	}, "teacher")
	require.NoError(t, err)

	assert.Equal(t, models.StatusRetake, view.Status)
	assert.Equal(t, "Retake", view.Grade)
	assert.Equal(t, scoring.RankBronze, view.Rank)
	assert.Equal(t, 0, view.Rewards.Stored)
	assert.False(t, view.Rewards.CanRedeem)

	_, err = env.gradebook.UpdateStatus(context.Background(), &StatusUpdateRequest{
		StudentID: "65001", Subject: subject, Status: "Expelled",
	}, "teacher")
	assert.True(t, IsValidation(err))
}

func TestGradebookService_OverrideBalance(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 3, 0))
	ctx := context.Background()

	view, err := env.gradebook.OverrideBalance(ctx, &BalanceOverrideRequest{
		StudentID: "65001", Subject: subject, Balance: intPtr(10),
	}, "teacher")
	require.NoError(t, err)
	assert.Equal(t, 10, view.Rewards.Stored)
	assert.Equal(t, 3, view.Rewards.Entitlement)

	view, err = env.gradebook.OverrideBalance(ctx, &BalanceOverrideRequest{
		StudentID: "65001", Subject: subject, Delta: intPtr(-25),
	}, "teacher")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Rewards.Stored)

	overridden := env.publisher.EventsOfType(events.EventRewardBalanceOverridden)
	require.Len(t, overridden, 2)
	assert.Equal(t, 10, overridden[1].Data.(events.RewardBalanceEvent).Previous)

	_, err = env.gradebook.OverrideBalance(ctx, &BalanceOverrideRequest{
		StudentID: "65001", Subject: subject, Balance: intPtr(1), Delta: intPtr(1),
	}, "teacher")
	assert.True(t, IsValidation(err))
}

func TestGradebookService_OverrideAboveEntitlementIsSpentAsIs(t *testing.T) {
	env := newTestEnv(t, row60("65001", "Malee", subject, 0, 3, 0))
	ctx := context.Background()

	_, err := env.gradebook.OverrideBalance(ctx, &BalanceOverrideRequest{
		StudentID: "65001", Subject: subject, Balance: intPtr(5),
	}, "teacher")
	require.NoError(t, err)

	view, err := env.gradebook.Redeem(ctx, "65001", subject)
	require.NoError(t, err)
	assert.True(t, view.Redeemed)
	assert.False(t, view.Corrected)
	assert.Equal(t, 4, view.Record.Rewards.Stored)
}

func TestGradebookService_SubjectBoard(t *testing.T) {
	env := newTestEnv(t,
		row60("65002", "Somchai", subject, 1, 0, 0),
		row60("65001", "Malee", subject, 0, 0, 0),
		row60("65003", "Kanya", models.SubjectM1History, 0, 0, 0),
	)
	ctx := context.Background()

	board, err := env.gradebook.SubjectBoard(ctx, subject, "")
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, "65001", board[0].StudentID)
	assert.Equal(t, "65002", board[1].StudentID)
	assert.Equal(t, subject.DisplayName(), board[0].Record.SubjectName)

	filtered, err := env.gradebook.SubjectBoard(ctx, subject, "SOMCH")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "65002", filtered[0].StudentID)

	byID, err := env.gradebook.SubjectBoard(ctx, subject, "65001")
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	_, err = env.gradebook.SubjectBoard(ctx, "Z1", "")
	assert.ErrorIs(t, err, ErrInvalidSubject)
}

func TestGradebookService_GetStudent(t *testing.T) {
	env := newTestEnv(t,
		row60("65001", "Malee", subject, 0, 0, 0),
		row60("65001", "Malee", models.SubjectM1History, 0, 1, 0),
	)
	ctx := context.Background()

	student, err := env.gradebook.GetStudent(ctx, "65001")
	require.NoError(t, err)
	assert.Equal(t, "Malee", student.Name)
	assert.Len(t, student.Subjects, 2)

	_, err = env.gradebook.GetStudent(ctx, "99999")
	assert.ErrorIs(t, err, ErrStudentNotFound)

	_, err = env.gradebook.GetStudent(ctx, "  ")
	assert.True(t, IsValidation(err))

	all, err := env.gradebook.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
