package tree

import (
	"sort"
	"strings"

	"github.com/glif-dev/glif/internal/design"
)

// Config is the immutable-per-request rule bundle driving both processor
// passes. Zero values select the documented defaults.
type Config struct {
	// MaxDepth bounds the enhanced tree; 0 means unlimited. Types in
	// PrioritizeTypes are retained one extra level past the ceiling.
	MaxDepth        int
	IncludeTypes    []design.NodeType
	ExcludeTypes    []design.NodeType
	PrioritizeTypes []design.NodeType

	SemanticAnalysis bool
	ExtractTokens    bool

	// LimitTextLength caps text content in the reduced tree; 0 means the
	// default of 200.
	LimitTextLength int
	// CompressRunLength is the minimum run of structurally identical
	// siblings collapsed to one representative; 0 means the default of 3.
	CompressRunLength int

	Rules []Rule
}

func (c Config) textLimit() int {
	if c.LimitTextLength <= 0 {
		return 200
	}
	return c.LimitTextLength
}

func (c Config) runLength() int {
	if c.CompressRunLength <= 0 {
		return 3
	}
	return c.CompressRunLength
}

// StateDelta is a set of suggested style overrides for one interaction
// state (hover, active, focus).
type StateDelta map[string]string

// Accessibility carries the hints attached to a semantic role.
type Accessibility struct {
	AriaRole  string `json:"ariaRole,omitempty"`
	Focusable bool   `json:"focusable,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Rule is one custom enhancement rule. Rules are evaluated per node in
// descending priority; the first matching rule wins the role assignment
// while accessibility and state annotations from later matches may stack.
type Rule struct {
	Name          string
	Priority      int
	When          Condition
	Role          string
	Accessibility *Accessibility
	States        map[string]StateDelta
}

// Condition is a closed set of tagged matchers evaluated by the processor.
// Every set field must hold for the condition to match; a condition with no
// fields set matches nothing. Predicate is the escape hatch for advanced
// callers and is consulted last.
type Condition struct {
	NameContains string
	TypeIn       []design.NodeType
	HasChildren  *bool
	All          []Condition
	Predicate    func(*design.Node) bool
}

// Matches evaluates the condition against a node.
func (c Condition) Matches(node *design.Node) bool {
	matched := false

	if c.NameContains != "" {
		if !strings.Contains(strings.ToLower(node.Name), strings.ToLower(c.NameContains)) {
			return false
		}
		matched = true
	}
	if len(c.TypeIn) > 0 {
		if !typeIn(node.Type, c.TypeIn) {
			return false
		}
		matched = true
	}
	if c.HasChildren != nil {
		if (len(node.Children) > 0) != *c.HasChildren {
			return false
		}
		matched = true
	}
	if len(c.All) > 0 {
		for _, sub := range c.All {
			if !sub.Matches(node) {
				return false
			}
		}
		matched = true
	}
	if c.Predicate != nil {
		if !c.Predicate(node) {
			return false
		}
		matched = true
	}

	return matched
}

func typeIn(t design.NodeType, set []design.NodeType) bool {
	for _, candidate := range set {
		if t == candidate {
			return true
		}
	}
	return false
}

// sortedRules returns the config's rules ordered by descending priority,
// with name as the deterministic tie-break.
func (c Config) sortedRules() []Rule {
	rules := append([]Rule(nil), c.Rules...)
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority == rules[j].Priority {
			return rules[i].Name < rules[j].Name
		}
		return rules[i].Priority > rules[j].Priority
	})
	return rules
}
