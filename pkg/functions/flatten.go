package functions

import "github.com/appku/calku/pkg/value"

// flatten expands nested Array values up to depth levels (spec glossary:
// "flattens nested arrays up to depth 3 for numeric aggregations"),
// passing non-array values through unchanged.
func flatten(args []value.Value, depth int) []value.Value {
	out := make([]value.Value, 0, len(args))
	for _, a := range args {
		if a.Kind == value.KindArray && depth > 0 {
			out = append(out, flatten(a.Arr, depth-1)...)
		} else {
			out = append(out, a)
		}
	}
	return out
}
