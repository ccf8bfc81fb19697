package scoring

import (
	"github.com/SAP-F-2025/gradequest-service/internal/models"
)

const MaxTotal = models.MaxTotalScore

type Rank string

const (
	RankBronze    Rank = "Bronze"
	RankSilver    Rank = "Silver"
	RankGold      Rank = "Gold"
	RankPlatinum  Rank = "Platinum"
	RankDiamond   Rank = "Diamond"
	RankCommander Rank = "Commander"
	RankConqueror Rank = "Conqueror"
)

// Ranks in ascending order.
var Ranks = []Rank{
	RankBronze,
	RankSilver,
	RankGold,
	RankPlatinum,
	RankDiamond,
	RankCommander,
	RankConqueror,
}

// Index returns the tier position, or -1 for an unknown rank.
func (r Rank) Index() int {
	for i, rank := range Ranks {
		if rank == r {
			return i
		}
	}
	return -1
}

// gradeLadder maps inclusive lower bounds to letter grades, highest first.
var gradeLadder = []struct {
	min   int
	grade string
}{
	{80, "4"},
	{75, "3.5"},
	{70, "3"},
	{65, "2.5"},
	{60, "2"},
	{55, "1.5"},
	{50, "1"},
}

// TotalScore sums the six assignments, midterm and final.
func TotalScore(scores models.ScoreData) int {
	total := scores.Midterm + scores.Final
	for _, a := range scores.Assignments {
		total += a
	}
	return total
}

// LetterGrade maps a total to the fixed grade ladder. A non-Normal status
// replaces the grade with its own label.
func LetterGrade(total int, status models.OverrideStatus) string {
	if !status.IsNormal() {
		return string(status)
	}
	for _, step := range gradeLadder {
		if total >= step.min {
			return step.grade
		}
	}
	return "0"
}

// NextTier describes the distance to the next rank breakpoint.
type NextTier struct {
	NextTier      *Rank `json:"next_tier"`
	PointsNeeded  int   `json:"points_needed"`
	TierThreshold int   `json:"tier_threshold"`
}

// Engine evaluates scores against one Policy. It holds no mutable state.
type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{policy: policy}, nil
}

func (e *Engine) Policy() Policy {
	p := e.policy
	p.Breakpoints = append([]int(nil), e.policy.Breakpoints...)
	p.Allotments = append([]int(nil), e.policy.Allotments...)
	return p
}

// tierIndex counts the breakpoints at or below total.
func (e *Engine) tierIndex(total int) int {
	tier := 0
	for _, bp := range e.policy.Breakpoints {
		if total >= bp {
			tier++
		}
	}
	return tier
}

// RankTier maps a total through the ascending ladder. When the policy floors
// overridden records, any non-Normal status yields Bronze.
func (e *Engine) RankTier(total int, status models.OverrideStatus) Rank {
	if !status.IsNormal() && e.policy.RankFloorOnOverride {
		return RankBronze
	}
	return Ranks[e.tierIndex(total)]
}

// MaxRewardsForScore is the cumulative lifetime allotment of the tier the
// total falls in.
func (e *Engine) MaxRewardsForScore(total int) int {
	return e.policy.Allotments[e.tierIndex(total)]
}

// RewardsSuppressed reports whether a status forfeits reward entitlement.
func (e *Engine) RewardsSuppressed(status models.OverrideStatus) bool {
	return !status.IsNormal() && e.policy.SuppressRewardsOnOverride
}

func (e *Engine) NextTierInfo(total int) NextTier {
	tier := e.tierIndex(total)
	if tier >= len(e.policy.Breakpoints) {
		return NextTier{NextTier: nil, PointsNeeded: 0, TierThreshold: MaxTotal}
	}
	next := Ranks[tier+1]
	threshold := e.policy.Breakpoints[tier]
	return NextTier{
		NextTier:      &next,
		PointsNeeded:  threshold - total,
		TierThreshold: threshold,
	}
}

// Summary is the full derived view of one record's scores.
type Summary struct {
	Total      int      `json:"total"`
	Grade      string   `json:"grade"`
	Rank       Rank     `json:"rank"`
	MaxRewards int      `json:"max_rewards"`
	Next       NextTier `json:"next"`
}

func (e *Engine) Evaluate(rec models.SubjectRecord) Summary {
	total := TotalScore(rec.Scores)
	return Summary{
		Total:      total,
		Grade:      LetterGrade(total, rec.Status),
		Rank:       e.RankTier(total, rec.Status),
		MaxRewards: e.MaxRewardsForScore(total),
		Next:       e.NextTierInfo(total),
	}
}
