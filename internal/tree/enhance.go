// Package tree turns a raw design subtree into an AI-optimized artifact in
// two ordered depth-first passes: enhance (semantic roles, accessibility
// hints, style tokens) and reduce (idempotent compaction).
package tree

import (
	"fmt"
	"strings"

	"github.com/glif-dev/glif/internal/design"
)

// Semantic roles assigned by rules and built-in heuristics.
const (
	RoleButton     = "button"
	RoleInput      = "input"
	RoleNavigation = "navigation"
	RoleCard       = "card"
	RoleIcon       = "icon"
	RoleImage      = "image"
	RoleText       = "text"
)

// iconSizeCeiling: bounding boxes at or under this square are icon
// candidates.
const iconSizeCeiling = 32.0

var nameVocabulary = []struct {
	role     string
	keywords []string
}{
	{RoleButton, []string{"button", "btn"}},
	{RoleInput, []string{"input", "field", "textbox", "search"}},
	{RoleNavigation, []string{"nav", "menu", "header", "sidebar"}},
	{RoleCard, []string{"card"}},
}

var roleStates = map[string]map[string]StateDelta{
	RoleButton: {
		"hover":  {"opacity": "0.9", "cursor": "pointer"},
		"active": {"transform": "scale(0.98)"},
		"focus":  {"outline": "2px solid"},
	},
	RoleInput: {
		"focus": {"outline": "2px solid", "border-color": "accent"},
	},
	RoleNavigation: {
		"hover": {"opacity": "0.85"},
	},
	RoleCard: {
		"hover": {"shadow": "elevated"},
	},
}

var roleAccessibility = map[string]Accessibility{
	RoleButton:     {AriaRole: "button", Focusable: true},
	RoleInput:      {AriaRole: "textbox", Focusable: true},
	RoleNavigation: {AriaRole: "navigation"},
	RoleCard:       {AriaRole: "article"},
	RoleIcon:       {AriaRole: "img", Note: "needs alt text"},
	RoleImage:      {AriaRole: "img", Note: "needs alt text"},
	RoleText:       {Note: "verify text contrast"},
}

// Container types always survive a non-empty include filter so the filter
// cannot sever the tree above the nodes it asks for.
var containerTypes = []design.NodeType{
	design.TypeDocument, design.TypeCanvas, design.TypeFrame, design.TypeGroup,
}

// Enhance walks the raw subtree depth-first, pre-order, producing the
// enhanced working tree. The input is never mutated. Stats for the run are
// accumulated into stats when non-nil.
func Enhance(root *design.Node, cfg Config, stats *Stats) *Node {
	if root == nil {
		return nil
	}
	e := &enhancer{cfg: cfg, rules: cfg.sortedRules(), stats: stats}
	return e.visit(root, 0)
}

type enhancer struct {
	cfg   Config
	rules []Rule
	stats *Stats
}

func (e *enhancer) visit(node *design.Node, depth int) *Node {
	if e.stats != nil {
		e.stats.NodesVisited++
	}

	if node.Visible != nil && !*node.Visible {
		return nil
	}
	if typeIn(node.Type, e.cfg.ExcludeTypes) {
		return nil
	}
	if len(e.cfg.IncludeTypes) > 0 &&
		!typeIn(node.Type, e.cfg.IncludeTypes) &&
		!typeIn(node.Type, containerTypes) {
		return nil
	}
	if exceeded, allowed := e.depthAllowance(node, depth); exceeded && !allowed {
		return nil
	}

	out := &Node{
		ID:           node.ID,
		Type:         node.Type,
		Name:         node.Name,
		Text:         node.Characters,
		CornerRadius: node.CornerRadius,
		Opacity:      1,
	}
	if node.Opacity != nil {
		out.Opacity = *node.Opacity
	}
	if node.Bounds != nil {
		bounds := *node.Bounds
		out.Bounds = &bounds
	}
	if fill, ok := firstSolidFill(node); ok {
		out.Fill = fill
	}
	out.Shadow = node.HasEffect("DROP_SHADOW")

	e.enhanceNode(node, out)
	if e.cfg.ExtractTokens {
		out.Tokens = extractTokens(node)
	}

	for _, child := range node.Children {
		if enhanced := e.visit(child, depth+1); enhanced != nil {
			out.Children = append(out.Children, enhanced)
		}
	}

	if e.stats != nil {
		e.stats.NodesKept++
	}
	return out
}

// depthAllowance reports whether depth exceeds the ceiling and, when it
// does, whether the node's type earns the single extra prioritized level.
func (e *enhancer) depthAllowance(node *design.Node, depth int) (exceeded, allowed bool) {
	if e.cfg.MaxDepth <= 0 || depth <= e.cfg.MaxDepth {
		return false, false
	}
	if depth == e.cfg.MaxDepth+1 && typeIn(node.Type, e.cfg.PrioritizeTypes) {
		return true, true
	}
	return true, false
}

// enhanceNode applies custom rules in descending priority, then built-in
// heuristics when no rule assigned a role. Role assignment is mutually
// exclusive; accessibility and state annotations stack.
func (e *enhancer) enhanceNode(node *design.Node, out *Node) {
	for _, rule := range e.rules {
		if !rule.When.Matches(node) {
			continue
		}
		if out.Role == "" && rule.Role != "" {
			out.Role = rule.Role
		}
		if rule.Accessibility != nil && out.Accessibility == nil {
			a11y := *rule.Accessibility
			out.Accessibility = &a11y
		}
		for state, delta := range rule.States {
			out.States = mergeState(out.States, state, delta)
		}
	}

	if out.Role == "" && e.cfg.SemanticAnalysis {
		out.Role = builtinRole(node)
	}
	if out.Role == "" {
		return
	}

	if e.stats != nil {
		e.stats.NodesEnhanced++
	}
	if out.Accessibility == nil {
		if a11y, ok := roleAccessibility[out.Role]; ok {
			copied := a11y
			out.Accessibility = &copied
		}
	}
	if states, ok := roleStates[out.Role]; ok {
		for state, delta := range states {
			out.States = mergeState(out.States, state, delta)
		}
	}
}

// builtinRole applies the fixed name vocabulary, then structural
// heuristics. Geometry-dependent checks are skipped when bounds are absent.
func builtinRole(node *design.Node) string {
	name := strings.ToLower(node.Name)
	for _, entry := range nameVocabulary {
		for _, keyword := range entry.keywords {
			if strings.Contains(name, keyword) {
				return entry.role
			}
		}
	}

	if node.Type == design.TypeText {
		return RoleText
	}
	if node.HasVisibleFill() && node.CornerRadius > 0 && node.HasEffect("DROP_SHADOW") {
		return RoleCard
	}
	if node.Bounds != nil &&
		node.Bounds.Width > 0 && node.Bounds.Width <= iconSizeCeiling &&
		node.Bounds.Height > 0 && node.Bounds.Height <= iconSizeCeiling {
		return RoleIcon
	}
	for _, fill := range node.Fills {
		if fill.Type == "IMAGE" {
			return RoleImage
		}
	}
	return ""
}

func mergeState(states map[string]StateDelta, state string, delta StateDelta) map[string]StateDelta {
	if states == nil {
		states = make(map[string]StateDelta)
	}
	existing, ok := states[state]
	if !ok {
		existing = make(StateDelta, len(delta))
		states[state] = existing
	}
	for k, v := range delta {
		if _, taken := existing[k]; !taken {
			existing[k] = v
		}
	}
	return states
}

func firstSolidFill(node *design.Node) (string, bool) {
	for _, fill := range node.Fills {
		if fill.Visible != nil && !*fill.Visible {
			continue
		}
		if fill.Type == "SOLID" && fill.Color != nil {
			return hexColor(*fill.Color), true
		}
	}
	return "", false
}

func hexColor(c design.Color) string {
	clamp := func(v float64) int {
		scaled := int(v*255 + 0.5)
		if scaled < 0 {
			return 0
		}
		if scaled > 255 {
			return 255
		}
		return scaled
	}
	return fmt.Sprintf("#%02X%02X%02X", clamp(c.R), clamp(c.G), clamp(c.B))
}

func extractTokens(node *design.Node) map[string]string {
	tokens := make(map[string]string)
	if fill, ok := firstSolidFill(node); ok {
		tokens["fill"] = fill
	}
	if node.CornerRadius > 0 {
		tokens["radius"] = fmt.Sprintf("%gpx", node.CornerRadius)
	}
	if node.HasEffect("DROP_SHADOW") {
		tokens["shadow"] = "drop"
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
