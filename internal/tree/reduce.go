package tree

import (
	"fmt"
	"strings"
)

// TruncationMarker terminates any text field the reduce pass shortened.
const TruncationMarker = "…[truncated]"

// Reduce compacts an enhanced tree into the AI-facing artifact: framework
// defaults stripped, single-child pass-through groups collapsed, long text
// truncated, and runs of structurally identical siblings compressed. The
// input is never mutated, and the pass is idempotent: reducing an already
// reduced tree yields an equal tree.
func Reduce(root *Node, cfg Config) *Node {
	if root == nil {
		return nil
	}
	r := &reducer{limit: cfg.textLimit(), runLength: cfg.runLength()}
	return r.visit(root)
}

type reducer struct {
	limit     int
	runLength int
}

func (r *reducer) visit(node *Node) *Node {
	copied := *node
	out := &copied
	out.Children = nil

	r.stripDefaults(out)
	out.Text = truncateText(out.Text, r.limit)

	children := make([]*Node, 0, len(node.Children))
	for _, child := range node.Children {
		children = append(children, r.visit(child))
	}
	out.Children = r.compressRuns(children)

	return collapsePassThrough(out)
}

// stripDefaults removes properties whose value equals a known framework
// default so they marshal away under omitempty.
func (r *reducer) stripDefaults(node *Node) {
	if node.Opacity == 1 {
		node.Opacity = 0
	}
	if node.Accessibility != nil && *node.Accessibility == (Accessibility{}) {
		node.Accessibility = nil
	}
	if len(node.States) == 0 {
		node.States = nil
	}
	if len(node.Tokens) == 0 {
		node.Tokens = nil
	}
}

// truncateText enforces the text ceiling with an explicit marker. Text that
// already ends with the marker is left alone so a second pass is a no-op.
func truncateText(text string, limit int) string {
	if strings.HasSuffix(text, TruncationMarker) {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + TruncationMarker
}

// collapsePassThrough replaces a single-child group that contributes no
// styling or semantics with its child.
func collapsePassThrough(node *Node) *Node {
	if node.Type != "GROUP" || len(node.Children) != 1 {
		return node
	}
	if node.Role != "" || node.Fill != "" || node.Shadow ||
		node.CornerRadius != 0 || node.Opacity != 0 ||
		len(node.Tokens) > 0 || node.Repeat > 1 {
		return node
	}
	return node.Children[0]
}

// compressRuns replaces each run of >= runLength structurally identical
// siblings with its first element annotated with the run count.
func (r *reducer) compressRuns(children []*Node) []*Node {
	if len(children) < r.runLength {
		return children
	}

	out := make([]*Node, 0, len(children))
	for start := 0; start < len(children); {
		signature := structuralSignature(children[start])
		end := start + 1
		for end < len(children) && structuralSignature(children[end]) == signature {
			end++
		}
		runTotal := runCount(children[start:end])
		if runTotal >= r.runLength && end-start > 1 {
			representative := children[start]
			representative.Repeat = runTotal
			out = append(out, representative)
		} else {
			out = append(out, children[start:end]...)
		}
		start = end
	}
	return out
}

// runCount totals the siblings in a run, honoring counts from an earlier
// compression so repeated reduction cannot inflate or lose them.
func runCount(run []*Node) int {
	total := 0
	for _, node := range run {
		if node.Repeat > 1 {
			total += node.Repeat
		} else {
			total++
		}
	}
	return total
}

// structuralSignature captures the shape of a subtree while ignoring
// per-instance identity (ids, names, text, bounds, repeat counts).
func structuralSignature(node *Node) string {
	var b strings.Builder
	writeSignature(&b, node)
	return b.String()
}

func writeSignature(b *strings.Builder, node *Node) {
	fmt.Fprintf(b, "%s/%s/%s/%t(", node.Type, node.Role, node.Fill, node.Shadow)
	for _, child := range node.Children {
		writeSignature(b, child)
	}
	b.WriteString(")")
}
