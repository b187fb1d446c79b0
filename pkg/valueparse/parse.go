// Package valueparse implements CalKu's value parser: promotion of a raw
// lexeme string, captured by the lexer, to a typed Value.
package valueparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/appku/calku/pkg/types"
	"github.com/appku/calku/pkg/value"
)

var numberRe = regexp.MustCompile(`^-?\d*(\.\d+)?$`)

func looksNumeric(raw string) bool {
	if !numberRe.MatchString(raw) {
		return false
	}
	return strings.ContainsAny(raw, "0123456789")
}

// Promote converts a raw lexeme into a typed Value. style hints whether
// the lexeme was quoted (forcing String, skipping all further detection)
// or naked. loc resolves dates whose lexeme carries no explicit offset; a
// nil loc defaults to UTC.
func Promote(raw string, style types.LiteralStyle, loc *time.Location) (value.Value, error) {
	if style == types.StyleQuoted {
		return value.NewString(raw), nil
	}
	if loc == nil {
		loc = time.UTC
	}

	if looksNumeric(raw) {
		n, err := strconv.ParseFloat(raw, 64)
		if err == nil && !math.IsNaN(n) {
			return value.NewNumber(n), nil
		}
	}

	switch strings.ToLower(raw) {
	case "true":
		return value.NewBoolean(true), nil
	case "false":
		return value.NewBoolean(false), nil
	case "null":
		return value.Null, nil
	case "undefined":
		return value.Undefined, nil
	}

	if t, _, ok := parseISO8601(raw, loc); ok {
		return value.NewDate(t), nil
	}
	if t, _, ok := parseUSDate(raw, loc); ok {
		return value.NewDate(t), nil
	}

	return value.NewString(raw), nil
}
