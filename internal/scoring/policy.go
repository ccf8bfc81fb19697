// Package scoring turns raw component scores into totals, letter grades,
// rank tiers and lifetime reward allotments.
package scoring

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed ladders/*.yaml
var ladderFS embed.FS

// DefaultLadder is used when no ladder is configured.
const DefaultLadder = "current"

// Policy is the configurable tier table. Breakpoints are the inclusive lower
// bounds of Silver..Conqueror; Allotments[i] is the cumulative lifetime
// credit count unlocked by tier i.
type Policy struct {
	Name                      string `yaml:"name" json:"name"`
	Description               string `yaml:"description" json:"description,omitempty"`
	Breakpoints               []int  `yaml:"breakpoints" json:"breakpoints"`
	CreditsPerTier            int    `yaml:"credits_per_tier" json:"credits_per_tier"`
	Allotments                []int  `yaml:"allotments,omitempty" json:"allotments"`
	RankFloorOnOverride       bool   `yaml:"rank_floor_on_override" json:"rank_floor_on_override"`
	SuppressRewardsOnOverride bool   `yaml:"suppress_rewards_on_override" json:"suppress_rewards_on_override"`
}

// Validate checks the table and fills Allotments from CreditsPerTier when the
// table does not list them explicitly.
func (p *Policy) Validate() error {
	if len(p.Breakpoints) != len(Ranks)-1 {
		return fmt.Errorf("scoring.Policy %q: want %d breakpoints, got %d", p.Name, len(Ranks)-1, len(p.Breakpoints))
	}
	prev := 0
	for i, bp := range p.Breakpoints {
		if bp <= prev || bp > MaxTotal {
			return fmt.Errorf("scoring.Policy %q: breakpoint %d (%d) must be ascending within 1..%d", p.Name, i, bp, MaxTotal)
		}
		prev = bp
	}

	if len(p.Allotments) == 0 {
		if p.CreditsPerTier < 0 {
			return fmt.Errorf("scoring.Policy %q: credits_per_tier must not be negative", p.Name)
		}
		p.Allotments = make([]int, len(Ranks))
		for i := range p.Allotments {
			p.Allotments[i] = i * p.CreditsPerTier
		}
	}
	if len(p.Allotments) != len(Ranks) {
		return fmt.Errorf("scoring.Policy %q: want %d allotments, got %d", p.Name, len(Ranks), len(p.Allotments))
	}
	last := 0
	for i, a := range p.Allotments {
		if a < last {
			return fmt.Errorf("scoring.Policy %q: allotment %d (%d) decreases", p.Name, i, a)
		}
		last = a
	}
	return nil
}

// LoadPreset loads an embedded ladder by name.
func LoadPreset(name string) (Policy, error) {
	data, err := ladderFS.ReadFile("ladders/" + name + ".yaml")
	if err != nil {
		return Policy{}, fmt.Errorf("scoring.LoadPreset: unknown ladder %q (available: %s)", name, strings.Join(Presets(), ", "))
	}
	return parsePolicy(data, name)
}

// LoadPolicyFile loads a ladder table from a YAML file on disk.
func LoadPolicyFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("scoring.LoadPolicyFile: %w", err)
	}
	return parsePolicy(data, path)
}

func parsePolicy(data []byte, source string) (Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("scoring: parse %q: %w", source, err)
	}
	if p.Name == "" {
		p.Name = source
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Presets lists the embedded ladder names.
func Presets() []string {
	entries, err := ladderFS.ReadDir("ladders")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// DefaultPolicy returns the embedded default ladder.
func DefaultPolicy() Policy {
	p, err := LoadPreset(DefaultLadder)
	if err != nil {
		panic(err)
	}
	return p
}
