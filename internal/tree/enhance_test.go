package tree

import (
	"testing"

	"github.com/glif-dev/glif/internal/design"
)

func frameNode(id, name string, children ...*design.Node) *design.Node {
	return &design.Node{ID: id, Type: design.TypeFrame, Name: name, Children: children}
}

func TestEnhanceDepthCeiling(t *testing.T) {
	root := &design.Node{ID: "0:0", Type: design.TypeDocument, Name: "Doc", Children: []*design.Node{
		frameNode("1:1", "Page",
			frameNode("1:2", "Header",
				&design.Node{ID: "1:3", Type: design.TypeText, Name: "Title"},
			),
		),
	}}

	enhanced := Enhance(root, Config{MaxDepth: 2}, nil)
	header := enhanced.Children[0].Children[0]
	if header.ID != "1:2" {
		t.Fatalf("expected header at depth 2, got %q", header.ID)
	}
	if len(header.Children) != 0 {
		t.Fatalf("expected depth-3 text dropped, got %d children", len(header.Children))
	}
}

func TestEnhancePrioritizedTypesGetOneExtraLevel(t *testing.T) {
	deep := &design.Node{ID: "t", Type: design.TypeText, Name: "Label", Children: []*design.Node{
		{ID: "t2", Type: design.TypeText, Name: "Deeper"},
	}}
	root := frameNode("r", "Root", frameNode("a", "A", frameNode("b", "B", deep)))

	cfg := Config{MaxDepth: 2, PrioritizeTypes: []design.NodeType{design.TypeText}}
	enhanced := Enhance(root, cfg, nil)

	b := enhanced.Children[0].Children[0]
	if len(b.Children) != 1 || b.Children[0].ID != "t" {
		t.Fatalf("expected prioritized text retained one level past ceiling, got %#v", b.Children)
	}
	if len(b.Children[0].Children) != 0 {
		t.Fatalf("expected only one extra level, got %d grandchildren", len(b.Children[0].Children))
	}
}

func TestEnhanceExcludeDropsSubtree(t *testing.T) {
	root := frameNode("r", "Root",
		frameNode("keep", "Keep"),
		&design.Node{ID: "drop", Type: design.TypeGroup, Name: "Drop", Children: []*design.Node{
			frameNode("inner", "Inner"),
		}},
	)

	enhanced := Enhance(root, Config{ExcludeTypes: []design.NodeType{design.TypeGroup}}, nil)
	if len(enhanced.Children) != 1 || enhanced.Children[0].ID != "keep" {
		t.Fatalf("expected excluded group and its subtree dropped, got %#v", enhanced.Children)
	}
}

func TestEnhanceCustomRulePriorityOrder(t *testing.T) {
	node := frameNode("n", "Hero Section")
	root := frameNode("r", "Root", node)

	cfg := Config{Rules: []Rule{
		{Name: "low", Priority: 1, When: Condition{NameContains: "hero"}, Role: RoleCard},
		{Name: "high", Priority: 10, When: Condition{NameContains: "hero"}, Role: RoleNavigation},
	}}
	enhanced := Enhance(root, cfg, nil)

	if got := enhanced.Children[0].Role; got != RoleNavigation {
		t.Fatalf("expected highest-priority rule to win the role, got %q", got)
	}
}

func TestEnhanceRuleConditionVariants(t *testing.T) {
	hasChildren := true
	cond := Condition{All: []Condition{
		{NameContains: "list"},
		{TypeIn: []design.NodeType{design.TypeFrame}},
		{HasChildren: &hasChildren},
	}}

	match := frameNode("m", "Product List", frameNode("c", "Item"))
	if !cond.Matches(match) {
		t.Fatalf("expected composite condition to match")
	}
	if cond.Matches(frameNode("e", "Product List")) {
		t.Fatalf("expected has-children requirement to fail on a leaf")
	}
	if (Condition{}).Matches(match) {
		t.Fatalf("expected empty condition to match nothing")
	}

	escape := Condition{Predicate: func(n *design.Node) bool { return n.ID == "m" }}
	if !escape.Matches(match) {
		t.Fatalf("expected escape-hatch predicate to match")
	}
}

func TestEnhanceNameVocabulary(t *testing.T) {
	cases := map[string]string{
		"Submit Button": RoleButton,
		"Primary BTN":   RoleButton,
		"Search Field":  RoleInput,
		"Main Nav":      RoleNavigation,
		"Promo Card":    RoleCard,
	}
	for name, wantRole := range cases {
		root := frameNode("r", "Root", frameNode("n", name))
		enhanced := Enhance(root, Config{SemanticAnalysis: true}, nil)
		if got := enhanced.Children[0].Role; got != wantRole {
			t.Fatalf("name %q: expected role %q, got %q", name, wantRole, got)
		}
	}
}

func TestEnhanceStructuralHeuristics(t *testing.T) {
	visible := true
	card := &design.Node{
		ID: "card", Type: design.TypeFrame, Name: "Untitled",
		Fills:        []design.Paint{{Type: "SOLID", Visible: &visible, Color: &design.Color{R: 1, G: 1, B: 1, A: 1}}},
		CornerRadius: 8,
		Effects:      []design.Effect{{Type: "DROP_SHADOW", Radius: 4}},
	}
	icon := &design.Node{
		ID: "icon", Type: design.TypeVector, Name: "Untitled",
		Bounds: &design.Bounds{X: 0, Y: 0, Width: 24, Height: 24},
	}
	root := frameNode("r", "Root", card, icon)

	enhanced := Enhance(root, Config{SemanticAnalysis: true}, nil)
	if got := enhanced.Children[0].Role; got != RoleCard {
		t.Fatalf("expected fill+radius+shadow to classify as card, got %q", got)
	}
	if got := enhanced.Children[1].Role; got != RoleIcon {
		t.Fatalf("expected 24x24 vector to classify as icon, got %q", got)
	}
}

func TestEnhanceRoleCarriesAccessibilityAndStates(t *testing.T) {
	root := frameNode("r", "Root", frameNode("b", "Login Button"))
	enhanced := Enhance(root, Config{SemanticAnalysis: true}, nil)

	button := enhanced.Children[0]
	if button.Accessibility == nil || button.Accessibility.AriaRole != "button" {
		t.Fatalf("expected button accessibility metadata, got %#v", button.Accessibility)
	}
	if _, ok := button.States["hover"]; !ok {
		t.Fatalf("expected hover state delta for button, got %#v", button.States)
	}
}

func TestEnhanceMissingBoundsTolerated(t *testing.T) {
	root := frameNode("r", "Root", &design.Node{ID: "v", Type: design.TypeVector, Name: "Untitled"})
	enhanced := Enhance(root, Config{SemanticAnalysis: true}, nil)
	if got := enhanced.Children[0].Role; got != "" {
		t.Fatalf("expected no geometry-based role without bounds, got %q", got)
	}
}

func TestEnhanceUnknownTypePassesThrough(t *testing.T) {
	root := frameNode("r", "Root", &design.Node{ID: "x", Type: "WIDGET", Name: "Future"})
	enhanced := Enhance(root, Config{}, nil)
	if len(enhanced.Children) != 1 || enhanced.Children[0].Type != "WIDGET" {
		t.Fatalf("expected unknown type retained unmodified, got %#v", enhanced.Children)
	}
}

func TestEnhanceStats(t *testing.T) {
	root := frameNode("r", "Root",
		frameNode("b", "Buy Button"),
		&design.Node{ID: "drop", Type: design.TypeGroup, Name: "Drop"},
	)

	var stats Stats
	Enhance(root, Config{SemanticAnalysis: true, ExcludeTypes: []design.NodeType{design.TypeGroup}}, &stats)

	if stats.NodesVisited != 3 {
		t.Fatalf("expected 3 nodes visited, got %d", stats.NodesVisited)
	}
	if stats.NodesKept != 2 {
		t.Fatalf("expected 2 nodes kept, got %d", stats.NodesKept)
	}
	if stats.NodesEnhanced != 1 {
		t.Fatalf("expected 1 node enhanced, got %d", stats.NodesEnhanced)
	}
}

func TestEnhanceTokenExtraction(t *testing.T) {
	visible := true
	node := &design.Node{
		ID: "n", Type: design.TypeRectangle, Name: "Chip",
		Fills:        []design.Paint{{Type: "SOLID", Visible: &visible, Color: &design.Color{R: 1, G: 0, B: 0, A: 1}}},
		CornerRadius: 4,
	}
	root := frameNode("r", "Root", node)

	enhanced := Enhance(root, Config{ExtractTokens: true}, nil)
	tokens := enhanced.Children[0].Tokens
	if tokens["fill"] != "#FF0000" {
		t.Fatalf("expected red fill token, got %#v", tokens)
	}
	if tokens["radius"] != "4px" {
		t.Fatalf("expected radius token, got %#v", tokens)
	}
}
