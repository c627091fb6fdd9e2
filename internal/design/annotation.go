package design

// Point is a position in absolute document coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Annotation is a reviewer comment anchored to a point or node in the
// design graph. At most one of AnchorNodeID / AnchorPoint is meaningful;
// an annotation with neither still gets intent-classified downstream.
type Annotation struct {
	ID           string `json:"id"`
	Message      string `json:"message"`
	AuthorHandle string `json:"authorHandle,omitempty"`
	AnchorNodeID string `json:"anchorNodeId,omitempty"`
	AnchorPoint  *Point `json:"anchorPoint,omitempty"`
}
