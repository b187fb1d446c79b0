package operators

import (
	"math"
	"strings"

	"github.com/appku/calku/pkg/validate"
	"github.com/appku/calku/pkg/value"
)

// numericSide validates that an operand is number/boolean/null-coercible,
// the coercion rule used by math operators.
func numericSide(v value.Value, side string) *validate.Validator {
	return validate.New(v, side).InstanceOf("number", "boolean", "null")
}

// concatSide validates that an operand is typed string/number/boolean/
// date/null, per the CONCATENATE operator's contract.
func concatSide(v value.Value, side string) *validate.Validator {
	return validate.New(v, side).InstanceOf("string", "number", "boolean", "date", "null")
}

// containsLeftSide validates the CONTAINS-family left operand: array,
// string, number, boolean, or null.
func containsLeftSide(v value.Value, side string) *validate.Validator {
	return validate.New(v, side).InstanceOf("array", "string", "number", "boolean", "null")
}

// containsRightSide validates the CONTAINS-family right operand: string,
// number, boolean, or null.
func containsRightSide(v value.Value, side string) *validate.Validator {
	return validate.New(v, side).InstanceOf("string", "number", "boolean", "null")
}

func coerce(v value.Value) float64 {
	n, _ := v.CoerceNumber()
	return n
}

func buildRegistry() map[string]Spec {
	specs := []Spec{
		{
			Key: "EXPONENTIATION", Type: TypeMath, Symbols: []string{"^"}, Precedence: 50,
			ValidateLeft: numericSide, ValidateRight: numericSide,
			Eval: func(l, r value.Value) value.Value { return value.NewNumber(math.Pow(coerce(l), coerce(r))) },
		},
		{
			Key: "DIVISION", Type: TypeMath, Symbols: []string{"/"}, Precedence: 100,
			ValidateLeft: numericSide, ValidateRight: numericSide,
			Eval: func(l, r value.Value) value.Value {
				d := coerce(r)
				if d == 0 {
					return value.NewNumber(math.NaN())
				}
				return value.NewNumber(coerce(l) / d)
			},
		},
		{
			Key: "MODULO", Type: TypeMath, Symbols: []string{"%"}, Precedence: 100,
			ValidateLeft: numericSide, ValidateRight: numericSide,
			Eval: func(l, r value.Value) value.Value {
				d := coerce(r)
				if d == 0 {
					return value.NewNumber(math.NaN())
				}
				return value.NewNumber(math.Mod(coerce(l), d))
			},
		},
		{
			Key: "MULTIPLICATION", Type: TypeMath, Symbols: []string{"*"}, Precedence: 100,
			ValidateLeft: numericSide, ValidateRight: numericSide,
			Eval: func(l, r value.Value) value.Value { return value.NewNumber(coerce(l) * coerce(r)) },
		},
		{
			Key: "ADDITION", Type: TypeMath, Symbols: []string{"+"}, Precedence: 120,
			ValidateLeft: numericSide, ValidateRight: numericSide,
			Eval: func(l, r value.Value) value.Value { return value.NewNumber(coerce(l) + coerce(r)) },
		},
		{
			Key: "SUBTRACTION", Type: TypeMath, Symbols: []string{"-"}, Precedence: 120,
			ValidateLeft: numericSide, ValidateRight: numericSide,
			Eval: func(l, r value.Value) value.Value { return value.NewNumber(coerce(l) - coerce(r)) },
		},
		{
			Key: "AND", Type: TypeLogic, Symbols: []string{"and", "&&"}, Precedence: 200,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(l.Truthy() && r.Truthy()) },
		},
		{
			Key: "OR", Type: TypeLogic, Symbols: []string{"or", "||"}, Precedence: 205,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(l.Truthy() || r.Truthy()) },
		},
		{
			Key: "LESSTHAN", Type: TypeCompare, Symbols: []string{"lt", "<"}, Precedence: 300,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(l.Kind == r.Kind && l.Less(r)) },
		},
		{
			Key: "LESSTHANOREQUAL", Type: TypeCompare, Symbols: []string{"lte", "<="}, Precedence: 305,
			Eval: func(l, r value.Value) value.Value {
				if l.Kind != r.Kind {
					return value.NewBoolean(false)
				}
				if l.Kind == value.KindNull {
					return value.NewBoolean(true)
				}
				return value.NewBoolean(l.Less(r) || l.Equal(r))
			},
		},
		{
			Key: "GREATERTHAN", Type: TypeCompare, Symbols: []string{"gt", ">"}, Precedence: 310,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(l.Kind == r.Kind && r.Less(l)) },
		},
		{
			Key: "GREATERTHANOREQUAL", Type: TypeCompare, Symbols: []string{"gte", ">="}, Precedence: 315,
			Eval: func(l, r value.Value) value.Value {
				if l.Kind != r.Kind {
					return value.NewBoolean(false)
				}
				if l.Kind == value.KindNull {
					return value.NewBoolean(true)
				}
				return value.NewBoolean(r.Less(l) || l.Equal(r))
			},
		},
		{
			Key: "EQUALS", Type: TypeCompare, Symbols: []string{"eq", "=="}, Precedence: 320,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(l.Equal(r)) },
		},
		{
			Key: "NOTEQUALS", Type: TypeCompare, Symbols: []string{"neq", "<>", "!="}, Precedence: 325,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(!l.Equal(r)) },
		},
		{
			Key: "CONTAINS", Type: TypeCompare, Symbols: []string{"contains", "~~"}, Precedence: 330,
			ValidateLeft: containsLeftSide, ValidateRight: containsRightSide,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(evalContains(l, r)) },
		},
		{
			Key: "DOESNOTCONTAIN", Type: TypeCompare, Symbols: []string{"doesnotcontain", "!~~"}, Precedence: 330,
			ValidateLeft: containsLeftSide, ValidateRight: containsRightSide,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(!evalContains(l, r)) },
		},
		{
			Key: "ENDSWITH", Type: TypeCompare, Symbols: []string{"endswith"}, Precedence: 330,
			ValidateLeft: containsLeftSide, ValidateRight: containsRightSide,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(evalEndsWith(l, r)) },
		},
		{
			Key: "STARTSWITH", Type: TypeCompare, Symbols: []string{"startswith"}, Precedence: 330,
			ValidateLeft: containsLeftSide, ValidateRight: containsRightSide,
			Eval: func(l, r value.Value) value.Value { return value.NewBoolean(evalStartsWith(l, r)) },
		},
		{
			Key: "CONCATENATE", Type: TypeConsolidate, Symbols: []string{"&"}, Precedence: 99999,
			ValidateLeft: concatSide, ValidateRight: concatSide,
			Eval: func(l, r value.Value) value.Value { return value.NewString(l.DecimalString() + r.DecimalString()) },
		},
	}

	out := make(map[string]Spec, len(specs))
	for _, s := range specs {
		out[s.Key] = s
	}
	return out
}

// evalContains implements CONTAINS: both-null is true; strings use
// substring test; arrays use strict element equality; a non-string,
// non-array left operand is converted to its decimal string form first,
// so CONTAINS(12334, 3) == true.
func evalContains(l, r value.Value) bool {
	if l.Kind == value.KindNull && r.Kind == value.KindNull {
		return true
	}
	if l.Kind == value.KindArray {
		for _, item := range l.Arr {
			if item.Equal(r) {
				return true
			}
		}
		return false
	}
	return strings.Contains(l.DecimalString(), r.DecimalString())
}

// evalEndsWith implements ENDSWITH: both-null is true; otherwise a
// string-suffix test over the decimal string forms of both operands.
func evalEndsWith(l, r value.Value) bool {
	if l.Kind == value.KindNull && r.Kind == value.KindNull {
		return true
	}
	return strings.HasSuffix(l.DecimalString(), r.DecimalString())
}

// evalStartsWith implements STARTSWITH: both-null is true; otherwise a
// string-prefix test over the decimal string forms of both operands.
func evalStartsWith(l, r value.Value) bool {
	if l.Kind == value.KindNull && r.Kind == value.KindNull {
		return true
	}
	return strings.HasPrefix(l.DecimalString(), r.DecimalString())
}
