package rewards

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/repositories"
)

// Outcome of a redemption request. A denial is an expected answer, not an
// error.
type Outcome string

const (
	OutcomeRedeemed Outcome = "redeemed"
	OutcomeDenied   Outcome = "denied"
)

// EditResult describes a single-field edit and any balance resync it caused.
type EditResult struct {
	Before      models.SubjectRecord
	Record      models.SubjectRecord
	Entitlement int
	// BalanceWritten is true when the recomputed balance reached the store.
	BalanceWritten bool
	// SyncErr holds a failed resync write. Record still shows the recomputed
	// balance; the next refresh from the store is authoritative.
	SyncErr error
}

type RedemptionResult struct {
	Outcome     Outcome
	Record      models.SubjectRecord
	Entitlement int
	// Corrected is true when the stored balance was raised before spending.
	Corrected     bool
	CorrectedFrom int
	CorrectedTo   int
	State         State
	Trace         []State
}

type OverrideResult struct {
	Before models.SubjectRecord
	Record models.SubjectRecord
}

// StoreError wraps a transport failure. The caller's last known-good view
// remains valid; retrying means running the whole operation again.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("rewards: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Reconciler applies the policy against a gradebook store. Operations on the
// same (student, subject) are serialised within this process; across
// processes only the store's atomic redeem is relied upon.
type Reconciler struct {
	policy *Policy
	store  repositories.GradebookRepository
	logger *slog.Logger

	locks sync.Map // recordKey -> *sync.Mutex
}

type recordKey struct {
	studentID string
	subject   models.SubjectCode
}

func NewReconciler(policy *Policy, store repositories.GradebookRepository, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		policy: policy,
		store:  store,
		logger: logger.With("component", "reward_reconciler"),
	}
}

func (r *Reconciler) Policy() *Policy { return r.policy }

func (r *Reconciler) lock(studentID string, subject models.SubjectCode) func() {
	v, _ := r.locks.LoadOrStore(recordKey{studentID, subject}, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (r *Reconciler) load(ctx context.Context, studentID string, subject models.SubjectCode) (models.SubjectRecord, error) {
	rec, err := r.store.GetRecord(ctx, studentID, subject)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return rec, err
		}
		return rec, &StoreError{Op: "load record", Err: err}
	}
	return rec, nil
}

// ApplyEdit writes one clamped field and, for score components, rewrites the
// stored balance to the new entitlement when the two differ.
func (r *Reconciler) ApplyEdit(ctx context.Context, update models.FieldUpdate) (*EditResult, error) {
	update = update.Clamped()
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrInvalidField, err)
	}

	defer r.lock(update.StudentID, update.Subject)()

	before, err := r.load(ctx, update.StudentID, update.Subject)
	if err != nil {
		return nil, err
	}
	// The redeemed counter only moves forward.
	if update.Field == models.FieldRedeemedCount && update.Value < before.RedeemedCount {
		return nil, fmt.Errorf("%w: redeemed count cannot go from %d to %d",
			repositories.ErrInvalidField, before.RedeemedCount, update.Value)
	}
	if err := r.store.UpdateField(ctx, update); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, err
		}
		return nil, &StoreError{Op: "update " + string(update.Field), Err: err}
	}

	after := update.Apply(before)
	result := &EditResult{Before: before, Record: after, Entitlement: r.policy.Entitlement(after)}
	if !update.Field.IsScoreComponent() {
		return result, nil
	}

	target, differs := r.policy.ResyncTarget(after)
	if !differs {
		return result, nil
	}

	result.Record = after.WithRewardRights(target)
	err = r.store.UpdateField(ctx, models.FieldUpdate{
		StudentID: update.StudentID,
		Subject:   update.Subject,
		Field:     models.FieldRewardRights,
		Value:     target,
	})
	if err != nil {
		result.SyncErr = &StoreError{Op: "resync balance", Err: err}
		r.logger.WarnContext(ctx, "Balance resync failed",
			"student_id", update.StudentID,
			"subject", update.Subject,
			"target", target,
			"error", err)
		return result, nil
	}
	result.BalanceWritten = true
	return result, nil
}

// Redeem runs lazy-sync-then-redeem: raise a lagging stored balance to the
// entitlement, then ask the store for its atomic decrement.
func (r *Reconciler) Redeem(ctx context.Context, studentID string, subject models.SubjectCode) (*RedemptionResult, error) {
	defer r.lock(studentID, subject)()

	rec, err := r.load(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}

	ent := r.policy.Entitlement(rec)
	tracker := NewTracker(StateOf(rec.RewardRights, ent))
	result := &RedemptionResult{Entitlement: ent}

	if target, lagging := r.policy.PreSpendTarget(rec); lagging {
		tracker.must(StateReconciling)
		err := r.store.UpdateField(ctx, models.FieldUpdate{
			StudentID: studentID,
			Subject:   subject,
			Field:     models.FieldRewardRights,
			Value:     target,
		})
		if err != nil {
			return nil, &StoreError{Op: "correct balance", Err: err}
		}
		result.Corrected = true
		result.CorrectedFrom = rec.RewardRights
		result.CorrectedTo = target
		rec = rec.WithRewardRights(target)
		tracker.must(StateSynced)
	}

	tracker.must(StateRedeeming)
	ok, err := r.store.Redeem(ctx, studentID, subject)
	if err != nil {
		return nil, &StoreError{Op: "redeem", Err: err}
	}

	if ok {
		tracker.must(StateSynced)
		result.Outcome = OutcomeRedeemed
	} else {
		tracker.must(StateDenied)
		result.Outcome = OutcomeDenied
		r.logger.WarnContext(ctx, "Redemption denied by store",
			"student_id", studentID,
			"subject", subject,
			"stored_balance", rec.RewardRights)
	}

	result.Record = r.refresh(ctx, studentID, subject, rec, ok)
	result.Entitlement = r.policy.Entitlement(result.Record)
	result.State = tracker.State()
	result.Trace = tracker.Trace()
	return result, nil
}

// refresh re-reads the record after a redemption. If the read fails the
// store's answer is applied to the last known record instead.
func (r *Reconciler) refresh(ctx context.Context, studentID string, subject models.SubjectCode, known models.SubjectRecord, redeemed bool) models.SubjectRecord {
	fresh, err := r.store.GetRecord(ctx, studentID, subject)
	if err == nil {
		return fresh
	}
	r.logger.WarnContext(ctx, "Refetch after redemption failed",
		"student_id", studentID,
		"subject", subject,
		"error", err)
	if !redeemed {
		return known
	}
	return known.
		WithRewardRights(known.RewardRights - 1).
		WithRedeemedCount(known.RedeemedCount + 1)
}

// Override writes a teacher-chosen balance without recomputation.
func (r *Reconciler) Override(ctx context.Context, studentID string, subject models.SubjectCode, adj Adjustment) (*OverrideResult, error) {
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	defer r.lock(studentID, subject)()

	before, err := r.load(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}
	balance := adj.Apply(before.RewardRights)
	err = r.store.UpdateField(ctx, models.FieldUpdate{
		StudentID: studentID,
		Subject:   subject,
		Field:     models.FieldRewardRights,
		Value:     balance,
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, err
		}
		return nil, &StoreError{Op: "override balance", Err: err}
	}
	return &OverrideResult{Before: before, Record: before.WithRewardRights(balance)}, nil
}
