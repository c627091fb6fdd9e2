package tree

import "github.com/glif-dev/glif/internal/design"

// Node is one node of the processed tree: the enhance pass produces it from
// the raw design graph, the reduce pass compacts it into the AI-facing
// artifact. Repeat > 1 marks a representative standing in for a compressed
// run of structurally identical siblings.
type Node struct {
	ID            string                `json:"id"`
	Type          design.NodeType       `json:"type"`
	Name          string                `json:"name,omitempty"`
	Bounds        *design.Bounds        `json:"bounds,omitempty"`
	Text          string                `json:"text,omitempty"`
	Role          string                `json:"role,omitempty"`
	Accessibility *Accessibility        `json:"accessibility,omitempty"`
	States        map[string]StateDelta `json:"states,omitempty"`
	Tokens        map[string]string     `json:"tokens,omitempty"`
	Opacity       float64               `json:"opacity,omitempty"`
	CornerRadius  float64               `json:"cornerRadius,omitempty"`
	Fill          string                `json:"fill,omitempty"`
	Shadow        bool                  `json:"shadow,omitempty"`
	Repeat        int                   `json:"repeat,omitempty"`
	Children      []*Node               `json:"children,omitempty"`
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Bounds != nil {
		bounds := *n.Bounds
		out.Bounds = &bounds
	}
	if n.Accessibility != nil {
		a11y := *n.Accessibility
		out.Accessibility = &a11y
	}
	if n.States != nil {
		out.States = make(map[string]StateDelta, len(n.States))
		for state, delta := range n.States {
			copied := make(StateDelta, len(delta))
			for k, v := range delta {
				copied[k] = v
			}
			out.States[state] = copied
		}
	}
	if n.Tokens != nil {
		out.Tokens = make(map[string]string, len(n.Tokens))
		for k, v := range n.Tokens {
			out.Tokens[k] = v
		}
	}
	out.Children = make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		out.Children = append(out.Children, child.Clone())
	}
	return &out
}
