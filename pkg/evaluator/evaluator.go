// Package evaluator implements CalKu's evaluator: depth-first resolution
// of a token tree against a target, followed by a per-level operator
// collapse respecting the operator catalog's precedence groups.
package evaluator

import (
	"log/slog"

	"github.com/appku/calku/pkg/functions"
	"github.com/appku/calku/pkg/operators"
	"github.com/appku/calku/pkg/pathresolve"
	"github.com/appku/calku/pkg/types"
	"github.com/appku/calku/pkg/value"
)

// Evaluator walks one token tree against one target. It is cheap to
// construct and carries no state beyond the target and an optional
// diagnostic logger; a single Evaluator is never shared across
// concurrent calls — callers construct a fresh one per call instead.
type Evaluator struct {
	target interface{}
	logger *slog.Logger
}

// New constructs an Evaluator over target. A nil logger disables
// diagnostic tracing.
func New(target interface{}, logger *slog.Logger) *Evaluator {
	return &Evaluator{target: target, logger: logger}
}

// Eval resolves tokens (a root sequence, Group body, or Func argument
// sub-sequence) to a single Value.
func (e *Evaluator) Eval(tokens []types.Token) (value.Value, error) {
	items, err := e.resolveLevel(tokens)
	if err != nil {
		return value.Value{}, err
	}
	return collapse(items)
}

// cell is one entry of a level's working list: either a resolved value or
// an operator reference awaiting collapse.
type cell struct {
	isOp  bool
	opKey string
	val   value.Value
}

// resolveLevel performs depth-first value resolution and function
// dispatch, dropping comments, for a single tree level.
func (e *Evaluator) resolveLevel(tokens []types.Token) ([]cell, error) {
	var out []cell
	for _, tok := range tokens {
		switch tok.Kind {
		case types.TokenComment, types.TokenFuncArgsSeparator:
			continue
		case types.TokenOperator:
			out = append(out, cell{isOp: true, opKey: tok.OpKey})
		case types.TokenLiteral:
			out = append(out, cell{val: tok.Value})
		case types.TokenPropertyRef:
			v, err := e.resolveProperty(tok)
			if err != nil {
				return nil, err
			}
			out = append(out, cell{val: v})
		case types.TokenGroup:
			v, err := e.Eval(tok.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, cell{val: v})
		case types.TokenFunc:
			v, err := e.evalFunc(tok)
			if err != nil {
				return nil, err
			}
			out = append(out, cell{val: v})
		}
	}
	return out, nil
}

func (e *Evaluator) resolveProperty(tok types.Token) (value.Value, error) {
	v, err := pathresolve.Resolve(e.target, tok.Path)
	if err != nil {
		return value.Value{}, err
	}
	if e.logger != nil {
		e.logger.Debug("resolved property", "path", tok.Path, "kind", v.Kind.String())
	}
	return v, nil
}

func (e *Evaluator) evalFunc(tok types.Token) (value.Value, error) {
	spec, ok := functions.Lookup(tok.Name)
	if !ok {
		return value.Value{}, types.NewError(types.ErrUnknownFunction, "unknown function: "+tok.Name).WithToken(tok.Name)
	}
	groups := splitArgs(tok.Children)
	args := make([]value.Value, len(groups))
	for i, g := range groups {
		v, err := e.Eval(g)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	if err := functions.ValidateArgs(spec.Key, args); err != nil {
		return value.Value{}, err
	}
	if e.logger != nil {
		e.logger.Debug("dispatching function", "name", spec.Key, "args", len(args))
	}
	return spec.Eval(args)
}

// splitArgs divides a Func node's children into argument sub-sequences on
// FuncArgsSeparator boundaries. Zero children yields zero argument groups
// (a no-arg call), never a single empty group.
func splitArgs(children []types.Token) [][]types.Token {
	if len(children) == 0 {
		return nil
	}
	var groups [][]types.Token
	var cur []types.Token
	for _, c := range children {
		if c.Kind == types.TokenFuncArgsSeparator {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, c)
	}
	groups = append(groups, cur)
	return groups
}

// collapse iterates precedence groups ascending, repeatedly folding the
// leftmost matching operator application and restarting the sweep,
// until one value remains.
func collapse(items []cell) (value.Value, error) {
	if len(items) == 0 {
		return value.Undefined, nil
	}
	if len(items) == 1 {
		if items[0].isOp {
			return value.Value{}, types.NewError(types.ErrMissingOperand, "operator with no operand")
		}
		return items[0].val, nil
	}

	working := append([]cell(nil), items...)
	for _, group := range operators.PrecedenceGroups() {
		for {
			i := indexOfOpIn(working, group.Keys)
			if i < 0 {
				break
			}
			if i == 0 || i == len(working)-1 {
				return value.Value{}, types.NewError(types.ErrMissingOperand,
					"operator \""+working[i].opKey+"\" is missing an operand")
			}
			left, right := working[i-1], working[i+1]
			if left.isOp || right.isOp {
				return value.Value{}, types.NewError(types.ErrMissingOperand,
					"operator \""+working[i].opKey+"\" has no resolvable operand")
			}
			result, err := operators.Apply(working[i].opKey, left.val, right.val)
			if err != nil {
				return value.Value{}, err
			}
			rebuilt := make([]cell, 0, len(working)-2)
			rebuilt = append(rebuilt, working[:i-1]...)
			rebuilt = append(rebuilt, cell{val: result})
			rebuilt = append(rebuilt, working[i+2:]...)
			working = rebuilt
		}
	}

	if len(working) != 1 || working[0].isOp {
		return value.Value{}, types.NewError(types.ErrUnresolvedLevel, "expression did not collapse to a single value")
	}
	return working[0].val, nil
}

func indexOfOpIn(working []cell, keys map[string]bool) int {
	for i, c := range working {
		if c.isOp && keys[c.opKey] {
			return i
		}
	}
	return -1
}
