package annotate

import (
	"testing"

	"github.com/glif-dev/glif/internal/design"
	"github.com/glif-dev/glif/internal/tree"
)

func buttonInFrameIndex() *tree.BoundsIndex {
	return tree.Flatten(&tree.Node{
		ID: "F", Type: design.TypeFrame, Name: "Frame",
		Bounds: &design.Bounds{X: 0, Y: 0, Width: 400, Height: 300},
		Children: []*tree.Node{
			{ID: "B", Type: design.TypeFrame, Name: "Button",
				Bounds: &design.Bounds{X: 150, Y: 120, Width: 100, Height: 40}},
		},
	})
}

func TestMatchPointInsideButton(t *testing.T) {
	index := buttonInFrameIndex()
	annotations := []design.Annotation{{
		ID:          "c1",
		Message:     "make this bounce on hover",
		AnchorPoint: &design.Point{X: 180, Y: 130},
	}}

	matches := MatchAll(index, annotations, Options{})
	if len(matches) != 1 {
		t.Fatalf("expected one match, got %d", len(matches))
	}
	match := matches[0]
	if match.Target == nil || match.Target.ID != "B" {
		t.Fatalf("expected button target, got %#v", match.Target)
	}
	if match.MatchMethod != MatchExact {
		t.Fatalf("expected exact-by-containment match, got %q", match.MatchMethod)
	}
	if match.Intent.Type != IntentAnimation {
		t.Fatalf("expected animation intent, got %q", match.Intent.Type)
	}
	if !match.Intent.Actionable {
		t.Fatalf("expected actionable intent, confidence %v", match.Intent.Confidence)
	}
}

func TestMatchAnchorNodeIDBindsDirectly(t *testing.T) {
	index := buttonInFrameIndex()
	annotations := []design.Annotation{{ID: "c1", Message: "looks off", AnchorNodeID: "B"}}

	matches := MatchAll(index, annotations, Options{})
	if matches[0].MatchMethod != MatchExact || matches[0].Target.ID != "B" {
		t.Fatalf("expected direct anchor binding, got %#v", matches[0])
	}
}

func TestMatchProximityOutsideBounds(t *testing.T) {
	index := tree.Flatten(&tree.Node{
		ID: "F", Type: design.TypeFrame, Name: "Frame",
		Bounds: &design.Bounds{X: 0, Y: 0, Width: 40, Height: 40},
	})
	annotations := []design.Annotation{{
		ID:          "c1",
		Message:     "move it",
		AnchorPoint: &design.Point{X: 80, Y: 20},
	}}

	matches := MatchAll(index, annotations, Options{})
	if matches[0].MatchMethod != MatchProximity || matches[0].Target == nil {
		t.Fatalf("expected proximity match within radius, got %#v", matches[0])
	}
}

func TestMatchBeyondRadiusUnassigned(t *testing.T) {
	index := tree.Flatten(&tree.Node{
		ID: "F", Type: design.TypeFrame,
		Bounds: &design.Bounds{X: 0, Y: 0, Width: 10, Height: 10},
	})
	annotations := []design.Annotation{{
		ID:          "c1",
		Message:     "far away",
		AnchorPoint: &design.Point{X: 500, Y: 500},
	}}

	matches := MatchAll(index, annotations, Options{ProximityRadius: 50})
	if matches[0].Target != nil || matches[0].MatchMethod != MatchNone {
		t.Fatalf("expected no target beyond the radius, got %#v", matches[0])
	}
}

func TestMatchContainingNodeBeatsCloserNeighbor(t *testing.T) {
	// The tiny neighbor's centroid is much closer to the anchor, but only
	// the frame contains the point.
	index := tree.Flatten(&tree.Node{
		ID: "root", Type: design.TypeCanvas,
		Children: []*tree.Node{
			{ID: "frame", Type: design.TypeFrame, Bounds: &design.Bounds{X: 0, Y: 0, Width: 200, Height: 200}},
			{ID: "tiny", Type: design.TypeFrame, Bounds: &design.Bounds{X: -40, Y: 90, Width: 20, Height: 20}},
		},
	})
	annotations := []design.Annotation{{
		ID:          "c1",
		Message:     "tighten this",
		AnchorPoint: &design.Point{X: 5, Y: 100},
	}}

	matches := MatchAll(index, annotations, Options{})
	match := matches[0]
	if match.Target == nil || match.Target.ID != "frame" {
		t.Fatalf("expected containing frame to win, got %#v", match.Target)
	}
	if match.MatchMethod != MatchExact {
		t.Fatalf("expected containment match, got %q", match.MatchMethod)
	}
}

func TestMatchTieBreakPrefersSmallerArea(t *testing.T) {
	// Both centroids sit 10 units from the anchor; the smaller box wins.
	index := tree.Flatten(&tree.Node{
		ID: "root", Type: design.TypeCanvas,
		Children: []*tree.Node{
			{ID: "big", Type: design.TypeFrame, Bounds: &design.Bounds{X: 60, Y: 0, Width: 100, Height: 100}},
			{ID: "small", Type: design.TypeFrame, Bounds: &design.Bounds{X: 80, Y: 40, Width: 20, Height: 20}},
		},
	})
	annotations := []design.Annotation{{
		ID:          "c1",
		Message:     "align",
		AnchorPoint: &design.Point{X: 100, Y: 50},
	}}

	matches := MatchAll(index, annotations, Options{})
	if matches[0].Target == nil || matches[0].Target.ID != "small" {
		t.Fatalf("expected smaller-area node on distance tie, got %#v", matches[0].Target)
	}
}

func TestMatchTieBreakDeterministicByIndexOrder(t *testing.T) {
	build := func() *tree.BoundsIndex {
		return tree.Flatten(&tree.Node{
			ID: "root", Type: design.TypeCanvas,
			Children: []*tree.Node{
				{ID: "first", Type: design.TypeFrame, Bounds: &design.Bounds{X: 0, Y: 0, Width: 20, Height: 20}},
				{ID: "second", Type: design.TypeFrame, Bounds: &design.Bounds{X: 20, Y: 0, Width: 20, Height: 20}},
			},
		})
	}
	annotations := []design.Annotation{{
		ID:          "c1",
		Message:     "nudge",
		AnchorPoint: &design.Point{X: 20, Y: 10}, // equidistant, equal areas
	}}

	for run := 0; run < 5; run++ {
		matches := MatchAll(build(), annotations, Options{})
		if matches[0].Target == nil || matches[0].Target.ID != "first" {
			t.Fatalf("run %d: expected deterministic index-order tie-break, got %#v", run, matches[0].Target)
		}
	}
}

func TestMatchNoAnchorStillClassified(t *testing.T) {
	index := buttonInFrameIndex()
	annotations := []design.Annotation{{ID: "c1", Message: "the background color should be darker"}}

	matches := MatchAll(index, annotations, Options{})
	match := matches[0]
	if match.Target != nil || match.MatchMethod != MatchNone {
		t.Fatalf("expected unassigned match, got %#v", match)
	}
	if match.Intent.Type != IntentStyle {
		t.Fatalf("expected style intent despite missing anchor, got %q", match.Intent.Type)
	}
}

func TestMatchStaleAnchorFallsBackToPoint(t *testing.T) {
	index := buttonInFrameIndex()
	annotations := []design.Annotation{{
		ID:           "c1",
		Message:      "tighten this up",
		AnchorNodeID: "deleted-node",
		AnchorPoint:  &design.Point{X: 180, Y: 130},
	}}

	matches := MatchAll(index, annotations, Options{})
	if matches[0].Target == nil || matches[0].Target.ID != "B" {
		t.Fatalf("expected point fallback for stale anchor id, got %#v", matches[0].Target)
	}
}
