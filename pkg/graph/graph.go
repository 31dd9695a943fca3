// Package graph provides the read-only, index-addressed graph view that the
// analytics engine runs on, together with the property store it is projected
// from and a named catalog of stores.
package graph

import "fmt"

// RelationshipConsumer receives one adjacency entry. Returning false stops
// the iteration for the current node.
type RelationshipConsumer func(source, target int64, weight float64) bool

// Graph is a read-only view over nodes numbered [0, NodeCount()).
// Implementations must be safe for concurrent readers.
type Graph interface {
	NodeCount() int64
	// RelationshipCount is the number of adjacency entries. An undirected
	// relationship between distinct nodes contributes two entries.
	RelationshipCount() int64
	Degree(node int64) int
	// HasRelationshipProperty reports whether weights were projected.
	HasRelationshipProperty() bool
	// ForEachRelationship visits the adjacency of node ordered by target.
	// Unweighted graphs report fallbackWeight for every entry.
	ForEachRelationship(node int64, fallbackWeight float64, fn RelationshipConsumer)
}

// Orientation decides which direction(s) of a stored relationship are exposed.
type Orientation int

const (
	// Natural exposes source -> target.
	Natural Orientation = iota
	// Reverse exposes target -> source.
	Reverse
	// Undirected exposes both directions.
	Undirected
)

// String returns the orientation name.
func (o Orientation) String() string {
	switch o {
	case Natural:
		return "NATURAL"
	case Reverse:
		return "REVERSE"
	case Undirected:
		return "UNDIRECTED"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// ParseOrientation parses an orientation name, case-sensitively upper case.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "NATURAL", "":
		return Natural, nil
	case "REVERSE":
		return Reverse, nil
	case "UNDIRECTED":
		return Undirected, nil
	}
	return Natural, fmt.Errorf("unknown orientation %q", s)
}

// Aggregation controls how parallel relationships between the same pair of
// nodes are collapsed at projection time.
type Aggregation int

const (
	// AggregationNone keeps parallel relationships.
	AggregationNone Aggregation = iota
	// AggregationSum adds the weights.
	AggregationSum
	// AggregationMin keeps the smallest weight.
	AggregationMin
	// AggregationMax keeps the largest weight.
	AggregationMax
	// AggregationSingle keeps the first relationship.
	AggregationSingle
)

// String returns the aggregation name.
func (a Aggregation) String() string {
	switch a {
	case AggregationNone:
		return "NONE"
	case AggregationSum:
		return "SUM"
	case AggregationMin:
		return "MIN"
	case AggregationMax:
		return "MAX"
	case AggregationSingle:
		return "SINGLE"
	default:
		return fmt.Sprintf("Aggregation(%d)", int(a))
	}
}

// ParseAggregation parses an aggregation name.
func ParseAggregation(s string) (Aggregation, error) {
	switch s {
	case "NONE", "":
		return AggregationNone, nil
	case "SUM":
		return AggregationSum, nil
	case "MIN":
		return AggregationMin, nil
	case "MAX":
		return AggregationMax, nil
	case "SINGLE":
		return AggregationSingle, nil
	}
	return AggregationNone, fmt.Errorf("unknown aggregation %q", s)
}

func (a Aggregation) merge(current, next float64) float64 {
	switch a {
	case AggregationSum:
		return current + next
	case AggregationMin:
		if next < current {
			return next
		}
	case AggregationMax:
		if next > current {
			return next
		}
	}
	return current
}

// TotalWeight sums every adjacency weight of g, using fallbackWeight when g
// is unweighted.
func TotalWeight(g Graph, fallbackWeight float64) float64 {
	total := 0.0
	n := g.NodeCount()
	for node := int64(0); node < n; node++ {
		g.ForEachRelationship(node, fallbackWeight, func(_, _ int64, w float64) bool {
			total += w
			return true
		})
	}
	return total
}
