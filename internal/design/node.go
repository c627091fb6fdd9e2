package design

import (
	"encoding/json"
	"math"
	"strings"
)

// NodeType identifies the kind of a design-graph node. The remote schema
// grows new types over time, so this stays a string: unknown values pass
// through processing unmodified instead of failing decode.
type NodeType string

const (
	TypeDocument  NodeType = "DOCUMENT"
	TypeCanvas    NodeType = "CANVAS"
	TypeFrame     NodeType = "FRAME"
	TypeGroup     NodeType = "GROUP"
	TypeText      NodeType = "TEXT"
	TypeVector    NodeType = "VECTOR"
	TypeComponent NodeType = "COMPONENT"
	TypeInstance  NodeType = "INSTANCE"
	TypeBooleanOp NodeType = "BOOLEAN_OPERATION"
	TypeStar      NodeType = "STAR"
	TypeLine      NodeType = "LINE"
	TypePolygon   NodeType = "POLYGON"
	TypeEllipse   NodeType = "ELLIPSE"
	TypeRectangle NodeType = "RECTANGLE"
)

// Bounds is an axis-aligned rectangle in absolute document coordinates.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point (x, y) lies inside the rectangle,
// edges included.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

// Centroid returns the center point of the rectangle.
func (b Bounds) Centroid() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Area returns width*height; degenerate rectangles report 0.
func (b Bounds) Area() float64 {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// DistanceTo returns the Euclidean distance from the rectangle's centroid
// to the point (x, y).
func (b Bounds) DistanceTo(x, y float64) float64 {
	cx, cy := b.Centroid()
	return math.Hypot(cx-x, cy-y)
}

// Color is an RGBA color with channels in [0, 1], matching the wire format.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Paint describes a single fill entry on a node.
type Paint struct {
	Type    string   `json:"type"` // SOLID | GRADIENT_LINEAR | IMAGE | ...
	Visible *bool    `json:"visible,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Color   *Color   `json:"color,omitempty"`
}

// Effect describes a visual effect attached to a node, e.g. a drop shadow.
type Effect struct {
	Type    string `json:"type"` // DROP_SHADOW | INNER_SHADOW | LAYER_BLUR | ...
	Visible *bool  `json:"visible,omitempty"`
	Radius  float64 `json:"radius,omitempty"`
}

// ExportSetting declares that a node should be rendered to an image.
type ExportSetting struct {
	Suffix string  `json:"suffix,omitempty"`
	Format string  `json:"format"` // PNG | JPG | SVG | PDF
	Scale  float64 `json:"scale,omitempty"`
}

// Node is one node in the remote design graph. Bounds is optional: not all
// node types carry geometry, and the remote occasionally violates the
// parent-contains-children invariant, so consumers must tolerate both.
type Node struct {
	ID             string          `json:"id"`
	Type           NodeType        `json:"type"`
	Name           string          `json:"name"`
	Visible        *bool           `json:"visible,omitempty"`
	Bounds         *Bounds         `json:"absoluteBoundingBox,omitempty"`
	Children       []*Node         `json:"children,omitempty"`
	Fills          []Paint         `json:"fills,omitempty"`
	Effects        []Effect        `json:"effects,omitempty"`
	CornerRadius   float64         `json:"cornerRadius,omitempty"`
	Opacity        *float64        `json:"opacity,omitempty"`
	Characters     string          `json:"characters,omitempty"`
	ExportSettings []ExportSetting `json:"exportSettings,omitempty"`
}

// HasVisibleFill reports whether the node carries at least one visible
// solid or gradient fill.
func (n *Node) HasVisibleFill() bool {
	for _, fill := range n.Fills {
		if fill.Visible != nil && !*fill.Visible {
			continue
		}
		if fill.Type != "" && fill.Type != "IMAGE" {
			return true
		}
	}
	return false
}

// HasEffect reports whether the node carries a visible effect of the given
// type.
func (n *Node) HasEffect(effectType string) bool {
	for _, effect := range n.Effects {
		if effect.Visible != nil && !*effect.Visible {
			continue
		}
		if strings.EqualFold(effect.Type, effectType) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the node and its subtree. Processing passes
// operate on clones so the raw fetched tree stays untouched for the asset
// scan.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Bounds != nil {
		bounds := *n.Bounds
		out.Bounds = &bounds
	}
	if n.Opacity != nil {
		opacity := *n.Opacity
		out.Opacity = &opacity
	}
	if n.Visible != nil {
		visible := *n.Visible
		out.Visible = &visible
	}
	out.Fills = append([]Paint(nil), n.Fills...)
	out.Effects = append([]Effect(nil), n.Effects...)
	out.ExportSettings = append([]ExportSetting(nil), n.ExportSettings...)
	out.Children = make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		out.Children = append(out.Children, child.Clone())
	}
	return &out
}

// UnmarshalJSON tolerates both the nested absoluteBoundingBox shape and a
// legacy flat {x,y,width,height} payload some exports emit.
func (n *Node) UnmarshalJSON(data []byte) error {
	type wireNode Node
	var wire struct {
		wireNode
		X      *float64 `json:"x"`
		Y      *float64 `json:"y"`
		Width  *float64 `json:"width"`
		Height *float64 `json:"height"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*n = Node(wire.wireNode)
	if n.Bounds == nil && wire.X != nil && wire.Y != nil && wire.Width != nil && wire.Height != nil {
		n.Bounds = &Bounds{X: *wire.X, Y: *wire.Y, Width: *wire.Width, Height: *wire.Height}
	}
	return nil
}
