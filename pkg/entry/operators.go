package entry

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Marker is the prefix that distinguishes operator keys from field names.
const Marker = "$"

// Placement decides where the flattener emits a document-valued operator.
type Placement int

const (
	// PlacementNested operators are flattened on their own and nested under
	// the current path: {a: {$elemMatch: {...}}}.
	PlacementNested Placement = iota
	// PlacementFront operators are emitted at the top of the current result
	// with their value flattened against the current path, so
	// {stats: {$inc: {plays: 1}}} becomes {$inc: {"stats.plays": 1}}.
	PlacementFront
	// PlacementStop operators carry their value through untouched, keeping
	// whole-value replacement semantics for $set and $push.
	PlacementStop
)

// String returns the name of the placement.
func (p Placement) String() string {
	switch p {
	case PlacementNested:
		return "nested"
	case PlacementFront:
		return "front"
	case PlacementStop:
		return "stop"
	default:
		return "unknown"
	}
}

// placements is the closed operator table. Operators not listed are nested.
var placements = map[string]Placement{
	"$inc":  PlacementFront,
	"$or":   PlacementFront,
	"$and":  PlacementFront,
	"$set":  PlacementStop,
	"$push": PlacementStop,
}

// UpdateOperators are the top-level keys accepted by Update.
var UpdateOperators = []string{"$set", "$inc", "$min", "$max", "$addToSet", "$push"}

// IsOperator reports whether key is an operator marker rather than a field name.
func IsOperator(key string) bool {
	return strings.HasPrefix(key, Marker)
}

// PlacementOf returns the placement policy of an operator key.
func PlacementOf(key string) Placement {
	if p, ok := placements[key]; ok {
		return p
	}
	return PlacementNested
}

// Operators returns the operators with an explicit placement, sorted by name.
func Operators() map[Placement][]string {
	grouped := lo.GroupBy(lo.Keys(placements), func(op string) Placement {
		return placements[op]
	})
	for _, ops := range grouped {
		slices.Sort(ops)
	}
	return grouped
}
