package filter

import (
	"github.com/s0up4200/enrichr/store"
)

// Filter decides whether a record takes part in a run
type Filter interface {
	// Evaluate checks if a record matches the filter criteria
	Evaluate(rec *store.Record) (bool, error)
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}
