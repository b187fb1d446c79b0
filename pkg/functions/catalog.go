// Package functions implements CalKu's named function catalog: a
// read-only registry of function specs plus symbol matching and argument
// validation, mirroring the way pkg/operators exposes its own catalog.
package functions

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/appku/calku/pkg/types"
	"github.com/appku/calku/pkg/validate"
	"github.com/appku/calku/pkg/value"
)

// ParamKind identifies which argument-count rule a FunctionSpec's Params
// enforces.
type ParamKind int

const (
	ParamNoArgs ParamKind = iota
	ParamFixedCount
	ParamTypedList
	ParamSingleSpread
)

// ParamValidator validates a single argument at position pos (0-based),
// returning a Validator already run against v.
type ParamValidator func(v value.Value, pos int) *validate.Validator

// ParamSpec describes a function's argument-count and per-argument
// validation rule.
type ParamSpec struct {
	Kind       ParamKind
	FixedCount int
	List       []ParamValidator // used by ParamTypedList
	SpreadLast bool             // last entry of List absorbs excess args, when Kind is ParamTypedList
	Spread     ParamValidator   // used by ParamSingleSpread
}

// NoArgs builds a ParamSpec accepting exactly zero arguments.
func NoArgs() ParamSpec { return ParamSpec{Kind: ParamNoArgs} }

// FixedCount builds a ParamSpec requiring exactly n arguments with no
// per-argument validation.
func FixedCount(n int) ParamSpec { return ParamSpec{Kind: ParamFixedCount, FixedCount: n} }

// TypedList builds a ParamSpec whose length must match len(list) exactly,
// unless spreadLast is true, in which case at least len(list)-1 arguments
// are required and any arguments past len(list)-1 are validated against
// the last entry of list.
func TypedList(spreadLast bool, list ...ParamValidator) ParamSpec {
	return ParamSpec{Kind: ParamTypedList, List: list, SpreadLast: spreadLast}
}

// SingleSpread builds a ParamSpec accepting any number of arguments
// (including zero), each validated by v.
func SingleSpread(v ParamValidator) ParamSpec {
	return ParamSpec{Kind: ParamSingleSpread, Spread: v}
}

// EvalFunc computes a function's result from already-validated arguments.
type EvalFunc func(args []value.Value) (value.Value, error)

// Spec describes one registered function.
type Spec struct {
	Key     string
	Symbols []string // ordered, non-empty; case-insensitive; Key is also the canonical symbol
	Params  ParamSpec
	Eval    EvalFunc
}

var registry = buildRegistry()

var (
	memoMu       sync.Mutex
	memoMatchers = map[string]*Matcher{}
)

// Recycle invalidates the memoized symbol matcher. Intended for test-time
// mutation of the registry only.
func Recycle() {
	memoMu.Lock()
	defer memoMu.Unlock()
	memoMatchers = map[string]*Matcher{}
}

// Lookup returns the spec for a case-insensitive function name, or false
// if unregistered.
func Lookup(name string) (Spec, bool) {
	s, ok := registry[strings.ToUpper(name)]
	return s, ok
}

// Matcher finds a registered function name at the lexer position where a
// naked literal is about to be reinterpreted as a call.
type Matcher struct {
	entries []matcherEntry
}

type matcherEntry struct {
	key    string
	symbol string
	re     *regexp.Regexp
}

// SymbolMatcher returns the catalog-wide function-name matcher. The result
// is memoized until Recycle is called.
func SymbolMatcher() *Matcher {
	const memoKey = "all"
	memoMu.Lock()
	if m, ok := memoMatchers[memoKey]; ok {
		memoMu.Unlock()
		return m
	}
	memoMu.Unlock()

	var entries []matcherEntry
	for key, spec := range registry {
		for _, sym := range spec.Symbols {
			entries = append(entries, matcherEntry{
				key:    key,
				symbol: sym,
				re:     regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(sym) + `$`),
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

// Match reports whether name (the full captured literal text) exactly
// matches a registered function symbol, returning its catalog key.
func (m *Matcher) Match(name string) (string, bool) {
	for _, e := range m.entries {
		if e.re.MatchString(name) {
			return e.key, true
		}
	}
	return "", false
}

// ValidateArgs enforces key's arity/spread rule and per-argument
// validators against args, raising a *types.Error on the first failure.
func ValidateArgs(key string, args []value.Value) error {
	spec, ok := registry[key]
	if !ok {
		return types.NewError(types.ErrUnknownFunction, "unknown function: "+key)
	}
	switch spec.Params.Kind {
	case ParamNoArgs:
		if len(args) != 0 {
			return types.NewError(types.ErrArityMismatch, key+": expects no arguments")
		}
	case ParamFixedCount:
		if len(args) != spec.Params.FixedCount {
			return types.NewError(types.ErrArityMismatch, key+": expects exactly "+strconv.Itoa(spec.Params.FixedCount)+" argument(s)")
		}
	case ParamTypedList:
		list := spec.Params.List
		if spec.Params.SpreadLast {
			if len(args) < len(list)-1 {
				return types.NewError(types.ErrArityMismatch, key+": expects at least "+strconv.Itoa(len(list)-1)+" argument(s)")
			}
		} else if len(args) != len(list) {
			return types.NewError(types.ErrArityMismatch, key+": expects exactly "+strconv.Itoa(len(list))+" argument(s)")
		}
		for i, arg := range args {
			var validator ParamValidator
			if i < len(list) {
				validator = list[i]
			} else if spec.Params.SpreadLast {
				validator = list[len(list)-1]
			}
			if validator == nil {
				continue
			}
			if v := validator(arg, i); !v.Ok() {
				return types.NewError(types.ErrArgumentInvalid, key+": "+v.Message())
			}
		}
	case ParamSingleSpread:
		if spec.Params.Spread != nil {
			for i, arg := range args {
				if v := spec.Params.Spread(arg, i); !v.Ok() {
					return types.NewError(types.ErrArgumentInvalid, key+": "+v.Message())
				}
			}
		}
	}
	return nil
}
