package config

import (
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
)

// ScoringConfig selects the tier ladder. A file takes precedence over a
// preset name; the flag overrides apply to either.
type ScoringConfig struct {
	Ladder                    string
	LadderFile                string
	RankFloorOnOverride       *bool
	SuppressRewardsOnOverride *bool
}

// Explicit reports whether a ladder was chosen rather than defaulted.
func (c ScoringConfig) Explicit() bool {
	return c.Ladder != "" || c.LadderFile != ""
}

func (c ScoringConfig) LoadPolicy() (scoring.Policy, error) {
	var (
		policy scoring.Policy
		err    error
	)
	switch {
	case c.LadderFile != "":
		policy, err = scoring.LoadPolicyFile(c.LadderFile)
	case c.Ladder != "":
		policy, err = scoring.LoadPreset(c.Ladder)
	default:
		policy, err = scoring.LoadPreset(scoring.DefaultLadder)
	}
	if err != nil {
		return scoring.Policy{}, err
	}

	if c.RankFloorOnOverride != nil {
		policy.RankFloorOnOverride = *c.RankFloorOnOverride
	}
	if c.SuppressRewardsOnOverride != nil {
		policy.SuppressRewardsOnOverride = *c.SuppressRewardsOnOverride
	}
	return policy, nil
}

func (c ScoringConfig) NewEngine() (*scoring.Engine, error) {
	policy, err := c.LoadPolicy()
	if err != nil {
		return nil, err
	}
	return scoring.NewEngine(policy)
}
