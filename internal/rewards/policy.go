// Package rewards keeps the persisted reward balance consistent with the
// entitlement recomputed from scores and redemption history.
//
// The store stays authoritative for spending: redemption is always the
// store's atomic check-and-decrement. Recomputation only corrects the stored
// balance upward before a spend and rewrites it after score edits.
package rewards

import (
	"github.com/SAP-F-2025/gradequest-service/internal/models"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
)

// Policy derives entitlements from a scoring engine. It is pure.
type Policy struct {
	engine *scoring.Engine
}

func NewPolicy(engine *scoring.Engine) *Policy {
	return &Policy{engine: engine}
}

func (p *Policy) Engine() *scoring.Engine {
	return p.engine
}

// Entitlement is max(0, maxRewardsForScore(total) - redeemedCount). A status
// that forfeits rewards yields 0.
func (p *Policy) Entitlement(rec models.SubjectRecord) int {
	if p.engine.RewardsSuppressed(rec.Status) {
		return 0
	}
	ent := p.engine.MaxRewardsForScore(scoring.TotalScore(rec.Scores)) - rec.RedeemedCount
	if ent < 0 {
		return 0
	}
	return ent
}

// ResyncTarget is the balance a score edit must write back, if any.
func (p *Policy) ResyncTarget(rec models.SubjectRecord) (int, bool) {
	ent := p.Entitlement(rec)
	return ent, ent != rec.RewardRights
}

// PreSpendTarget is the correction issued before a redemption. Only a balance
// lagging behind entitlement is raised; a higher stored balance is a manual
// override and is left alone.
func (p *Policy) PreSpendTarget(rec models.SubjectRecord) (int, bool) {
	ent := p.Entitlement(rec)
	return ent, ent > rec.RewardRights
}

// Assessment is the reward view of one record.
type Assessment struct {
	Stored      int   `json:"stored_balance"`
	Entitlement int   `json:"entitlement"`
	Redeemed    int   `json:"redeemed_count"`
	State       State `json:"state"`
	// CanRedeem reports whether a redemption would be attempted after the
	// pre-spend correction. The store still has the final word.
	CanRedeem bool `json:"can_redeem"`
}

func (p *Policy) Assess(rec models.SubjectRecord) Assessment {
	ent := p.Entitlement(rec)
	available := rec.RewardRights
	if ent > available {
		available = ent
	}
	return Assessment{
		Stored:      rec.RewardRights,
		Entitlement: ent,
		Redeemed:    rec.RedeemedCount,
		State:       StateOf(rec.RewardRights, ent),
		CanRedeem:   available > 0,
	}
}

// Adjustment is a manual balance change: an absolute Balance or a relative
// Delta, never both.
type Adjustment struct {
	Balance *int `json:"balance,omitempty"`
	Delta   *int `json:"delta,omitempty"`
}

func SetBalance(balance int) Adjustment { return Adjustment{Balance: &balance} }

func AdjustBy(delta int) Adjustment { return Adjustment{Delta: &delta} }

func (a Adjustment) Validate() error {
	if (a.Balance == nil) == (a.Delta == nil) {
		return ErrInvalidAdjustment
	}
	return nil
}

// Apply returns the new balance, floored at 0.
func (a Adjustment) Apply(current int) int {
	next := current
	switch {
	case a.Balance != nil:
		next = *a.Balance
	case a.Delta != nil:
		next = current + *a.Delta
	}
	if next < 0 {
		return 0
	}
	return next
}
