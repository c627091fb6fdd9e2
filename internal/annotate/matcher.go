// Package annotate correlates reviewer annotations with design-graph nodes
// and classifies the intent of each annotation's message.
package annotate

import (
	"github.com/glif-dev/glif/internal/design"
	"github.com/glif-dev/glif/internal/tree"
)

// Match methods reported per annotation.
const (
	MatchExact     = "exact"     // direct anchor id, or point containment
	MatchProximity = "proximity" // nearest centroid within the radius
	MatchNone      = "none"
)

// DefaultProximityRadius is the hand-tuned fallback radius in document
// units; override it via Options when a design system calls for another.
const DefaultProximityRadius = 100.0

// Options tune the spatial matcher.
type Options struct {
	// ProximityRadius bounds the centroid search around an anchor point;
	// 0 means DefaultProximityRadius.
	ProximityRadius float64
}

func (o Options) radius() float64 {
	if o.ProximityRadius <= 0 {
		return DefaultProximityRadius
	}
	return o.ProximityRadius
}

// Match is the per-annotation result: the assigned node (nil when nothing
// matched), how it was found, and the classified intent.
type Match struct {
	Annotation  design.Annotation `json:"annotation"`
	Target      *tree.IndexEntry  `json:"targetElement,omitempty"`
	MatchMethod string            `json:"matchMethod"`
	Distance    *float64          `json:"distance,omitempty"`
	Intent      Intent            `json:"intent"`
}

// MatchAll resolves every annotation against the flattened bounds index.
// Annotations without any anchor still get an intent classification so they
// are never silently dropped.
func MatchAll(index *tree.BoundsIndex, annotations []design.Annotation, opts Options) []Match {
	matches := make([]Match, 0, len(annotations))
	for _, annotation := range annotations {
		matches = append(matches, matchOne(index, annotation, opts))
	}
	return matches
}

func matchOne(index *tree.BoundsIndex, annotation design.Annotation, opts Options) Match {
	match := Match{
		Annotation:  annotation,
		MatchMethod: MatchNone,
		Intent:      Classify(annotation.Message),
	}

	if annotation.AnchorNodeID != "" {
		if entry, ok := index.Lookup(annotation.AnchorNodeID); ok {
			match.Target = &entry
			match.MatchMethod = MatchExact
			if annotation.AnchorPoint != nil && entry.Bounds != nil {
				distance := entry.Bounds.DistanceTo(annotation.AnchorPoint.X, annotation.AnchorPoint.Y)
				match.Distance = &distance
			}
			return match
		}
	}

	if annotation.AnchorPoint != nil {
		if entry, distance, ok := nearestEntry(index, *annotation.AnchorPoint, opts.radius()); ok {
			match.Target = &entry
			match.Distance = &distance
			if entry.Bounds != nil && entry.Bounds.Contains(annotation.AnchorPoint.X, annotation.AnchorPoint.Y) {
				match.MatchMethod = MatchExact
			} else {
				match.MatchMethod = MatchProximity
			}
		}
	}

	return match
}

// nearestEntry selects from the union of containing nodes and nodes whose
// centroid lies within the radius. Containing nodes always beat
// proximity-only candidates; within a tier the winner has the minimum
// centroid distance, then the smaller bounding-box area, with pre-order
// index position as the final deterministic tie-break.
func nearestEntry(index *tree.BoundsIndex, point design.Point, radius float64) (tree.IndexEntry, float64, bool) {
	var (
		best         tree.IndexEntry
		bestDistance float64
		bestContains bool
		found        bool
	)

	for _, entry := range index.Entries {
		if entry.Bounds == nil {
			continue
		}
		distance := entry.Bounds.DistanceTo(point.X, point.Y)
		contains := entry.Bounds.Contains(point.X, point.Y)
		if !contains && distance > radius {
			continue
		}
		if !found ||
			(contains && !bestContains) ||
			(contains == bestContains && (distance < bestDistance ||
				(distance == bestDistance && entry.Bounds.Area() < best.Bounds.Area()))) {
			best = entry
			bestDistance = distance
			bestContains = contains
			found = true
		}
	}

	return best, bestDistance, found
}
