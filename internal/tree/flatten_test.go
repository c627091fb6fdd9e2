package tree

import (
	"testing"

	"github.com/glif-dev/glif/internal/design"
)

func TestFlattenPreOrderWithPaths(t *testing.T) {
	root := &Node{ID: "r", Type: design.TypeDocument, Name: "Doc", Children: []*Node{
		{ID: "p", Type: design.TypeCanvas, Name: "Page", Children: []*Node{
			{ID: "f", Type: design.TypeFrame, Name: "Hero", Bounds: &design.Bounds{Width: 400, Height: 300}},
		}},
	}}

	index := Flatten(root)
	if index.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", index.Len())
	}
	if index.Entries[0].ID != "r" || index.Entries[1].ID != "p" || index.Entries[2].ID != "f" {
		t.Fatalf("expected pre-order entries, got %#v", index.Entries)
	}
	if index.Entries[2].Path != "Doc/Page/Hero" {
		t.Fatalf("expected path from root, got %q", index.Entries[2].Path)
	}
	if index.Entries[2].Parent != 1 || index.Entries[1].Parent != 0 || index.Entries[0].Parent != -1 {
		t.Fatalf("expected parent index references, got %#v", index.Entries)
	}
}

func TestFlattenLookup(t *testing.T) {
	root := &Node{ID: "r", Type: design.TypeFrame, Name: "Root", Children: []*Node{
		{ID: "c", Type: design.TypeText, Name: "Child"},
	}}

	index := Flatten(root)
	entry, ok := index.Lookup("c")
	if !ok || entry.Name != "Child" {
		t.Fatalf("expected lookup hit for child, got %#v ok=%t", entry, ok)
	}
	if _, ok := index.Lookup("missing"); ok {
		t.Fatalf("expected lookup miss for unknown id")
	}
}

func TestFlattenUnnamedNodeUsesType(t *testing.T) {
	root := &Node{ID: "r", Type: design.TypeFrame, Children: []*Node{}}
	index := Flatten(root)
	if index.Entries[0].Path != "FRAME" {
		t.Fatalf("expected type as path fallback, got %q", index.Entries[0].Path)
	}
}
