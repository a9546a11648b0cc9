// Package precondition decides conditional requests in version space. Header
// parsing and entity-tag quoting live in the HTTP layer; everything here is a
// plain int64 comparison.
package precondition

import "slices"

type Kind int

const (
	// Read covers GET and HEAD.
	Read Kind = iota
	// Write covers PATCH, PUT and DELETE.
	Write
)

type Outcome int

const (
	// Allow means serve the representation (reads) or perform the mutation (writes).
	Allow Outcome = iota
	NotModified
	NotFound
	Required
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case NotModified:
		return "not_modified"
	case NotFound:
		return "not_found"
	case Required:
		return "precondition_required"
	case Failed:
		return "precondition_failed"
	default:
		return "unknown"
	}
}

// Condition is one conditional header after parsing. Tags that failed to parse
// are dropped from Versions but still leave Present set, so they never match.
type Condition struct {
	Present  bool
	Any      bool
	Versions []int64
}

// None is an absent header.
var None = Condition{}

func AnyVersion() Condition {
	return Condition{Present: true, Any: true}
}

func Versions(vs ...int64) Condition {
	return Condition{Present: true, Versions: vs}
}

func (c Condition) Matches(current int64) bool {
	if !c.Present {
		return false
	}
	if c.Any {
		return true
	}
	return slices.Contains(c.Versions, current)
}

type Input struct {
	Kind        Kind
	Exists      bool
	Current     int64
	IfMatch     Condition
	IfNoneMatch Condition
}

// Evaluate applies the conditional request decision table.
//
// Reads only look at If-None-Match; writes only look at If-Match, which is
// mandatory. When both headers arrive, If-Match governs writes and is ignored
// on reads.
func Evaluate(in Input) Outcome {
	if !in.Exists {
		return NotFound
	}

	switch in.Kind {
	case Read:
		if in.IfNoneMatch.Matches(in.Current) {
			return NotModified
		}
		return Allow
	default:
		if !in.IfMatch.Present {
			return Required
		}
		if in.IfMatch.Matches(in.Current) {
			return Allow
		}
		return Failed
	}
}
