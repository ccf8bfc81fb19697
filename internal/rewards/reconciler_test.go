package rewards

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRedeem_LazySyncThenSpend(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(record60(0, 0))
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	result, err := r.Redeem(ctx, testStudent, testSubject)
	require.NoError(t, err)

	assert.Equal(t, OutcomeRedeemed, result.Outcome)
	assert.True(t, result.Corrected)
	assert.Equal(t, 0, result.CorrectedFrom)
	assert.Equal(t, 3, result.CorrectedTo)
	assert.Equal(t, 2, result.Record.RewardRights)
	assert.Equal(t, 1, result.Record.RedeemedCount)
	assert.Equal(t, 2, result.Entitlement)
	assert.Equal(t, []State{StateStale, StateReconciling, StateSynced, StateRedeeming, StateSynced}, result.Trace)

	stored, err := store.GetRecord(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RewardRights)
	assert.Equal(t, 1, stored.RedeemedCount)
}

func TestRedeem_DeniedAtZero(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(record60(0, 3))
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	result, err := r.Redeem(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, result.Outcome)
	assert.False(t, result.Corrected)
	assert.Equal(t, StateDenied, result.State)
	assert.Equal(t, 0, result.Record.RewardRights)
	assert.Equal(t, 3, result.Record.RedeemedCount)
}

func TestRedeem_ManualOverrideIsSpentNotLowered(t *testing.T) {
	ctx := context.Background()
	rec := record60(2, 0).WithStatus(models.StatusRetake)
	store := newMemoryStore(rec)
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	result, err := r.Redeem(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRedeemed, result.Outcome)
	assert.False(t, result.Corrected)
	assert.Equal(t, 1, result.Record.RewardRights)
	assert.Equal(t, []State{StateStale, StateRedeeming, StateSynced}, result.Trace)
}

func TestRedeem_ConcurrentRequestsNeverOverspend(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(record60(0, 0))
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	redeemed := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := r.Redeem(ctx, testStudent, testSubject)
			if assert.NoError(t, err) && result.Outcome == OutcomeRedeemed {
				mu.Lock()
				redeemed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, redeemed)
	stored, err := store.GetRecord(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.RewardRights)
	assert.Equal(t, 3, stored.RedeemedCount)
}

func TestRedeem_CorrectionWriteFails(t *testing.T) {
	ctx := context.Background()
	store := new(mockGradebook)
	store.On("GetRecord", ctx, testStudent, testSubject).Return(record60(0, 0), nil)
	store.On("UpdateField", ctx, mock.Anything).Return(errors.New("connection reset"))

	r := NewReconciler(newTestPolicy(t, "current"), store, nil)
	result, err := r.Redeem(ctx, testStudent, testSubject)

	assert.Nil(t, result)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "correct balance", storeErr.Op)
	store.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything, mock.Anything)
}

func TestRedeem_TransportFailureOnDecrement(t *testing.T) {
	ctx := context.Background()
	store := new(mockGradebook)
	store.On("GetRecord", ctx, testStudent, testSubject).Return(record60(3, 0), nil)
	store.On("Redeem", ctx, testStudent, testSubject).Return(false, errors.New("timeout"))

	r := NewReconciler(newTestPolicy(t, "current"), store, nil)
	_, err := r.Redeem(ctx, testStudent, testSubject)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "redeem", storeErr.Op)
	store.AssertNotCalled(t, "UpdateField", mock.Anything, mock.Anything)
}

func TestRedeem_RefetchFailureUsesStoreAnswer(t *testing.T) {
	ctx := context.Background()
	store := new(mockGradebook)
	store.On("GetRecord", ctx, testStudent, testSubject).Return(record60(3, 0), nil).Once()
	store.On("Redeem", ctx, testStudent, testSubject).Return(true, nil)
	store.On("GetRecord", ctx, testStudent, testSubject).Return(models.SubjectRecord{}, errors.New("timeout")).Once()

	r := NewReconciler(newTestPolicy(t, "current"), store, nil)
	result, err := r.Redeem(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Record.RewardRights)
	assert.Equal(t, 1, result.Record.RedeemedCount)
}

func TestRedeem_UnknownRecord(t *testing.T) {
	r := NewReconciler(newTestPolicy(t, "current"), newMemoryStore(record60(0, 0)), nil)
	_, err := r.Redeem(context.Background(), "nobody", testSubject)
	assert.ErrorIs(t, err, repositories.ErrRecordNotFound)
}

func TestApplyEdit_RaisingScoreWritesNewEntitlement(t *testing.T) {
	ctx := context.Background()
	// 59 points: Gold, two credits, balance at its ceiling.
	rec := models.SubjectRecord{
		Scores:       models.ScoreData{Assignments: [6]int{10, 10, 10, 10, 10, 9}},
		Status:       models.StatusNormal,
		RewardRights: 2,
	}
	store := newMemoryStore(rec)
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	result, err := r.ApplyEdit(ctx, models.FieldUpdate{
		StudentID: testStudent,
		Subject:   testSubject,
		Field:     models.FieldAssignments,
		Index:     5,
		Value:     10,
	})
	require.NoError(t, err)
	assert.True(t, result.BalanceWritten)
	assert.Equal(t, 3, result.Entitlement)
	assert.Equal(t, 3, result.Record.RewardRights)
	assert.Equal(t, 2, result.Before.RewardRights)

	stored, err := store.GetRecord(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.RewardRights)
	assert.Equal(t, 10, stored.Scores.Assignments[5])
}

func TestApplyEdit_LoweringBelowRedeemedFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(record60(1, 2))
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	result, err := r.ApplyEdit(ctx, models.FieldUpdate{
		StudentID: testStudent,
		Subject:   testSubject,
		Field:     models.FieldAssignments,
		Index:     0,
		Value:     0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Entitlement)
	assert.Equal(t, 0, result.Record.RewardRights)

	redeem, err := r.Redeem(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, redeem.Outcome)
}

func TestApplyEdit_ClampsOutOfRange(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(record60(3, 0))
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	result, err := r.ApplyEdit(ctx, models.FieldUpdate{
		StudentID: testStudent,
		Subject:   testSubject,
		Field:     models.FieldMidterm,
		Value:     45,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, result.Record.Scores.Midterm)
}

func TestApplyEdit_StatusChangeZeroesBalance(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(record60(3, 0))
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	result, err := r.ApplyEdit(ctx, models.FieldUpdate{
		StudentID: testStudent,
		Subject:   testSubject,
		Field:     models.FieldStatus,
		Status:    models.StatusNoAssessment,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Record.RewardRights)
	assert.True(t, result.BalanceWritten)
}

func TestApplyEdit_ResyncFailureKeepsRecomputedView(t *testing.T) {
	ctx := context.Background()
	store := new(mockGradebook)
	store.On("GetRecord", ctx, testStudent, testSubject).Return(record60(3, 0), nil)
	store.On("UpdateField", ctx, mock.MatchedBy(func(u models.FieldUpdate) bool {
		return u.Field == models.FieldMidterm
	})).Return(nil)
	store.On("UpdateField", ctx, mock.MatchedBy(func(u models.FieldUpdate) bool {
		return u.Field == models.FieldRewardRights
	})).Return(errors.New("quota exceeded"))

	r := NewReconciler(newTestPolicy(t, "current"), store, nil)
	result, err := r.ApplyEdit(ctx, models.FieldUpdate{
		StudentID: testStudent,
		Subject:   testSubject,
		Field:     models.FieldMidterm,
		Value:     20,
	})
	require.NoError(t, err)
	assert.False(t, result.BalanceWritten)
	assert.Error(t, result.SyncErr)
	// 80 points: Diamond, four credits.
	assert.Equal(t, 4, result.Record.RewardRights)
}

func TestApplyEdit_PrimaryWriteFails(t *testing.T) {
	ctx := context.Background()
	store := new(mockGradebook)
	store.On("GetRecord", ctx, testStudent, testSubject).Return(record60(3, 0), nil)
	store.On("UpdateField", ctx, mock.Anything).Return(errors.New("offline"))

	r := NewReconciler(newTestPolicy(t, "current"), store, nil)
	_, err := r.ApplyEdit(ctx, models.FieldUpdate{
		StudentID: testStudent,
		Subject:   testSubject,
		Field:     models.FieldFinal,
		Value:     10,
	})
	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestApplyEdit_InvalidField(t *testing.T) {
	r := NewReconciler(newTestPolicy(t, "current"), newMemoryStore(record60(0, 0)), nil)
	_, err := r.ApplyEdit(context.Background(), models.FieldUpdate{
		StudentID: testStudent,
		Subject:   testSubject,
		Field:     "attendance",
	})
	assert.ErrorIs(t, err, repositories.ErrInvalidField)
}

func TestApplyEdit_RedeemedCountNeverRewinds(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(record60(0, 3))
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	_, err := r.ApplyEdit(ctx, models.FieldUpdate{
		StudentID: testStudent,
		Subject:   testSubject,
		Field:     models.FieldRedeemedCount,
		Value:     0,
	})
	assert.ErrorIs(t, err, repositories.ErrInvalidField)

	stored, err := store.GetRecord(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.RedeemedCount)

	result, err := r.Redeem(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.NotEqual(t, OutcomeRedeemed, result.Outcome)
}

func TestOverride(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(record60(3, 0))
	r := NewReconciler(newTestPolicy(t, "current"), store, nil)

	result, err := r.Override(ctx, testStudent, testSubject, AdjustBy(1))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Before.RewardRights)
	assert.Equal(t, 4, result.Record.RewardRights)

	result, err = r.Override(ctx, testStudent, testSubject, SetBalance(-5))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Record.RewardRights)

	stored, err := store.GetRecord(ctx, testStudent, testSubject)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.RewardRights)

	// The next score edit recomputes and overwrites the override.
	edit, err := r.ApplyEdit(ctx, models.FieldUpdate{
		StudentID: testStudent,
		Subject:   testSubject,
		Field:     models.FieldFinal,
		Value:     0,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, edit.Record.RewardRights)

	_, err = r.Override(ctx, testStudent, testSubject, Adjustment{})
	assert.ErrorIs(t, err, ErrInvalidAdjustment)
}
