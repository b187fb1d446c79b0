// Package operators implements CalKu's binary operator catalog: a
// read-only registry of operator specs plus a set of free-standing
// functions over it (symbol matching, precedence grouping, argument
// validation), following the "open-method-on-registry" pattern the
// teacher uses for its own token/symbol tables.
package operators

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/appku/calku/pkg/types"
	"github.com/appku/calku/pkg/validate"
	"github.com/appku/calku/pkg/value"
)

// Type classifies an operator's output and broad behavior.
type Type string

const (
	TypeLogic        Type = "logic"
	TypeCompare      Type = "compare"
	TypeMath         Type = "math"
	TypeConsolidate  Type = "consolidate"
)

// ArgValidator validates one side of a binary operator application,
// returning a Validator already run against v so the caller can inspect
// Ok()/Message().
type ArgValidator func(v value.Value, side string) *validate.Validator

// EvalFunc computes an operator's result from already-validated operands.
type EvalFunc func(left, right value.Value) value.Value

// Spec describes one registered operator.
type Spec struct {
	Key           string
	Type          Type
	Symbols       []string // ordered, non-empty; case-insensitive
	Precedence    int       // smaller = higher priority
	ValidateLeft  ArgValidator
	ValidateRight ArgValidator
	Eval          EvalFunc
}

var registry = buildRegistry()

var (
	memoMu         sync.Mutex
	memoGroups     []PrecedenceGroup
	memoMatchers   = map[string]*Matcher{}
)

// Recycle invalidates the memoized precedence groups and symbol matchers.
// Intended for test-time mutation of the registry only.
func Recycle() {
	memoMu.Lock()
	defer memoMu.Unlock()
	memoGroups = nil
	memoMatchers = map[string]*Matcher{}
}

// Lookup returns the spec for key, or false if unregistered.
func Lookup(key string) (Spec, bool) {
	s, ok := registry[key]
	return s, ok
}

// PrecedenceGroup is either a single operator key or a set of operator
// keys that tie at the same precedence rank, evaluated left-to-right by
// the evaluator.
type PrecedenceGroup struct {
	Precedence int
	Keys       map[string]bool
}

// PrecedenceGroups returns the registry's operators grouped by precedence
// rank, ascending. The result is memoized until Recycle is called.
func PrecedenceGroups() []PrecedenceGroup {
	memoMu.Lock()
	defer memoMu.Unlock()
	if memoGroups != nil {
		return memoGroups
	}
	byRank := map[int]map[string]bool{}
	for key, spec := range registry {
		if byRank[spec.Precedence] == nil {
			byRank[spec.Precedence] = map[string]bool{}
		}
		byRank[spec.Precedence][key] = true
	}
	ranks := make([]int, 0, len(byRank))
	for r := range byRank {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	groups := make([]PrecedenceGroup, 0, len(ranks))
	for _, r := range ranks {
		groups = append(groups, PrecedenceGroup{Precedence: r, Keys: byRank[r]})
	}
	memoGroups = groups
	return groups
}

// Matcher finds the longest registered operator symbol at a given lexer
// position. Word-shaped symbols ("and", "contains", ...) additionally
// require the match be followed by whitespace, a parenthesis, or
// end-of-input, so that e.g. the identifier "orange" is never mistaken
// for "or" + "ange"; purely symbolic operators have no such ambiguity and
// match immediately.
type Matcher struct {
	entries []matcherEntry
}

type matcherEntry struct {
	key    string
	symbol string
	re     *regexp.Regexp
	isWord bool // true when symbol is alphabetic (e.g. "and", "contains")
}

// isWordSymbol reports whether sym is composed entirely of ASCII letters,
// the shape that can be confused with the prefix of a naked literal.
// Purely symbolic operators (+, -, <, &&, ...) are never ambiguous and so
// are matched immediately without requiring a trailing boundary.
func isWordSymbol(sym string) bool {
	for _, r := range sym {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return len(sym) > 0
}

// SymbolMatcher builds a Matcher over the operators whose Type is in
// types. An empty types list includes every registered operator. The
// result is memoized per distinct type-set until Recycle is called.
func SymbolMatcher(types ...Type) *Matcher {
	memoKey := strings.Join(typeStrings(types), ",")
	memoMu.Lock()
	if m, ok := memoMatchers[memoKey]; ok {
		memoMu.Unlock()
		return m
	}
	memoMu.Unlock()

	include := map[Type]bool{}
	for _, t := range types {
		include[t] = true
	}
	var entries []matcherEntry
	for key, spec := range registry {
		if len(include) > 0 && !include[spec.Type] {
			continue
		}
		for _, sym := range spec.Symbols {
			entries = append(entries, matcherEntry{
				key:    key,
				symbol: sym,
				re:     regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(sym)),
				isWord: isWordSymbol(sym),
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len(entries[i].symbol) > len(entries[j].symbol)
	})
	m := &Matcher{entries: entries}

	memoMu.Lock()
	memoMatchers[memoKey] = m
	memoMu.Unlock()
	return m
}

func typeStrings(ts []Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

// MatchResult describes a successful symbol match.
type MatchResult struct {
	Key    string
	Symbol string
	Length int // bytes consumed from input, i.e. len(matched symbol text)
}

// isBoundary reports whether r terminates an operator symbol: whitespace,
// an opening or closing parenthesis, or the sentinel for end-of-input
// (represented by rune 0 by callers).
func isBoundary(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '(', ')', 0:
		return true
	default:
		return false
	}
}

// MatchAt attempts to match an operator symbol at input[pos:]. It returns
// the longest registered symbol that matches case-insensitively; a
// word-shaped symbol must also be followed by a boundary character or
// end-of-input, while a purely symbolic one matches regardless of what
// follows.
func (m *Matcher) MatchAt(input string, pos int) (MatchResult, bool) {
	rest := input[pos:]
	for _, e := range m.entries {
		loc := e.re.FindStringIndex(rest)
		if loc == nil || loc[0] != 0 {
			continue
		}
		matchedLen := loc[1]
		if !e.isWord {
			return MatchResult{Key: e.key, Symbol: rest[:matchedLen], Length: matchedLen}, true
		}
		var next rune = 0
		if matchedLen < len(rest) {
			next = []rune(rest[matchedLen:])[0]
		}
		if isBoundary(next) {
			return MatchResult{Key: e.key, Symbol: rest[:matchedLen], Length: matchedLen}, true
		}
	}
	return MatchResult{}, false
}

// Apply validates left/right against opKey's operator (raising on the
// first failure, as the evaluator always does) and returns the
// operator's result.
func Apply(opKey string, left, right value.Value) (value.Value, error) {
	spec, ok := registry[opKey]
	if !ok {
		return value.Value{}, types.NewError(types.ErrUnknownOperator, "unknown operator: "+opKey)
	}
	if _, err := ValidateArgs(opKey, left, right, true); err != nil {
		return value.Value{}, err
	}
	return spec.Eval(left, right), nil
}

// ValidateArgs enforces exactly two arguments (a compile-time invariant
// guaranteed by the evaluator's collapse step, not re-checked here) and
// applies opKey's per-side validators, if any. When throwOnFailure is
// true, a failure raises a *types.Error instead of returning false.
func ValidateArgs(opKey string, left, right value.Value, throwOnFailure bool) (bool, error) {
	spec, ok := registry[opKey]
	if !ok {
		err := types.NewError(types.ErrUnknownOperator, "unknown operator: "+opKey)
		if throwOnFailure {
			return false, err
		}
		return false, nil
	}
	if spec.ValidateLeft != nil {
		if v := spec.ValidateLeft(left, "left"); !v.Ok() {
			if throwOnFailure {
				return false, types.NewError(types.ErrArgumentInvalid, spec.Key+": "+v.Message())
			}
			return false, nil
		}
	}
	if spec.ValidateRight != nil {
		if v := spec.ValidateRight(right, "right"); !v.Ok() {
			if throwOnFailure {
				return false, types.NewError(types.ErrArgumentInvalid, spec.Key+": "+v.Message())
			}
			return false, nil
		}
	}
	return true, nil
}
