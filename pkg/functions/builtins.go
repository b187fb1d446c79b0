package functions

import (
	"math"
	"strings"

	"github.com/appku/calku/pkg/validate"
	"github.com/appku/calku/pkg/value"
)

func paramNumeric(v value.Value, _ int) *validate.Validator {
	return validate.New(v, "argument").InstanceOf("number", "boolean", "null")
}

func paramAnything(v value.Value, _ int) *validate.Validator {
	return validate.New(v, "argument").Anything()
}

func paramNumArrayMixed(v value.Value, _ int) *validate.Validator {
	return validate.New(v, "argument").InstanceOf("number", "boolean", "null", "array")
}

func paramStringOrNumOrNull(v value.Value, _ int) *validate.Validator {
	return validate.New(v, "argument").InstanceOf("string", "number", "null")
}

func paramInteger(v value.Value, _ int) *validate.Validator {
	return validate.New(v, "argument").Integer()
}

func paramBoolean(v value.Value, _ int) *validate.Validator {
	return validate.New(v, "argument").Boolean()
}

func paramBooleanRequired(v value.Value, _ int) *validate.Validator {
	return validate.New(v, "argument").Required().Boolean()
}

func paramString(v value.Value, _ int) *validate.Validator {
	return validate.New(v, "argument").String()
}

func numOf(v value.Value) float64 {
	n, _ := v.CoerceNumber()
	return n
}

func buildRegistry() map[string]Spec {
	specs := []Spec{
		{
			Key: "ABS", Symbols: []string{"ABS"}, Params: TypedList(false, paramNumeric),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewNumber(math.Abs(numOf(a[0]))), nil },
		},
		{
			Key: "AVERAGE", Symbols: []string{"AVERAGE"}, Params: SingleSpread(paramNumArrayMixed),
			Eval: func(a []value.Value) (value.Value, error) {
				flat := flatten(a, 3)
				if len(flat) == 0 {
					return value.NewNumber(0), nil
				}
				var total float64
				for _, v := range flat {
					total += numOf(v)
				}
				return value.NewNumber(total / float64(len(flat))), nil
			},
		},
		{
			Key: "CEIL", Symbols: []string{"CEIL"}, Params: TypedList(false, paramNumeric),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewNumber(math.Ceil(numOf(a[0]))), nil },
		},
		{
			Key: "COUNT", Symbols: []string{"COUNT"}, Params: SingleSpread(paramAnything),
			Eval: func(a []value.Value) (value.Value, error) {
				flat := flatten(a, 3)
				var n float64
				for _, v := range flat {
					if c, ok := v.CoerceNumber(); ok && !math.IsNaN(c) {
						n++
					}
				}
				return value.NewNumber(n), nil
			},
		},
		{
			Key: "FLOOR", Symbols: []string{"FLOOR"}, Params: TypedList(false, paramNumeric),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewNumber(math.Floor(numOf(a[0]))), nil },
		},
		{
			Key: "HELLOWORLD", Symbols: []string{"HELLOWORLD"}, Params: NoArgs(),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewString("Hello world."), nil },
		},
		{
			Key: "IF", Symbols: []string{"IF"}, Params: TypedList(false, paramBooleanRequired, paramAnything, paramAnything),
			Eval: func(a []value.Value) (value.Value, error) {
				if a[0].Truthy() {
					return a[1], nil
				}
				return a[2], nil
			},
		},
		{
			Key: "ISARRAY", Symbols: []string{"ISARRAY"}, Params: TypedList(false, paramAnything),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewBoolean(a[0].Kind == value.KindArray), nil },
		},
		{
			Key: "ISBOOLEAN", Symbols: []string{"ISBOOLEAN"}, Params: TypedList(false, paramAnything),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewBoolean(a[0].Kind == value.KindBoolean), nil },
		},
		{
			Key: "ISDATE", Symbols: []string{"ISDATE"}, Params: TypedList(false, paramAnything),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewBoolean(a[0].Kind == value.KindDate), nil },
		},
		{
			Key: "ISOBJECT", Symbols: []string{"ISOBJECT"}, Params: TypedList(false, paramAnything),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewBoolean(a[0].Kind == value.KindObject), nil },
		},
		{
			Key: "ISEMPTY", Symbols: []string{"ISEMPTY"}, Params: TypedList(false, func(v value.Value, pos int) *validate.Validator {
				return validate.New(v, "argument").InstanceOf("string", "null")
			}),
			Eval: func(a []value.Value) (value.Value, error) {
				return value.NewBoolean(strings.TrimSpace(a[0].DecimalString()) == ""), nil
			},
		},
		{
			Key: "ISNOTEMPTY", Symbols: []string{"ISNOTEMPTY"}, Params: TypedList(false, func(v value.Value, pos int) *validate.Validator {
				return validate.New(v, "argument").InstanceOf("string", "null")
			}),
			Eval: func(a []value.Value) (value.Value, error) {
				return value.NewBoolean(strings.TrimSpace(a[0].DecimalString()) != ""), nil
			},
		},
		{
			Key: "ISNULL", Symbols: []string{"ISNULL"}, Params: TypedList(false, paramAnything),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewBoolean(a[0].Kind == value.KindNull), nil },
		},
		{
			Key: "ISNOTNULL", Symbols: []string{"ISNOTNULL"}, Params: TypedList(false, paramAnything),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewBoolean(a[0].Kind != value.KindNull), nil },
		},
		{
			Key: "LEFT", Symbols: []string{"LEFT"}, Params: TypedList(false, paramStringOrNumOrNull, paramInteger),
			Eval: func(a []value.Value) (value.Value, error) {
				s := []rune(a[0].DecimalString())
				n := int(a[1].N)
				if n < 0 {
					n = 0
				}
				if n > len(s) {
					n = len(s)
				}
				return value.NewString(string(s[:n])), nil
			},
		},
		{
			Key: "LEN", Symbols: []string{"LEN"}, Params: TypedList(false, paramAnything),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewNumber(lenOf(a[0])), nil },
		},
		{
			Key: "MID", Symbols: []string{"MID"}, Params: TypedList(false, paramStringOrNumOrNull, paramInteger, paramInteger),
			Eval: func(a []value.Value) (value.Value, error) {
				s := []rune(a[0].DecimalString())
				start := int(a[1].N)
				length := int(a[2].N)
				if start < 0 {
					start = 0
				}
				if start > len(s) {
					start = len(s)
				}
				end := start + length
				if length < 0 || end > len(s) {
					end = len(s)
				}
				if end < start {
					end = start
				}
				return value.NewString(string(s[start:end])), nil
			},
		},
		{
			Key: "RIGHT", Symbols: []string{"RIGHT"}, Params: TypedList(false, paramStringOrNumOrNull, paramInteger),
			Eval: func(a []value.Value) (value.Value, error) {
				s := []rune(a[0].DecimalString())
				n := int(a[1].N)
				if n < 0 {
					n = 0
				}
				if n > len(s) {
					n = len(s)
				}
				return value.NewString(string(s[len(s)-n:])), nil
			},
		},
		{
			Key: "SQRT", Symbols: []string{"SQRT"}, Params: TypedList(false, paramNumeric),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewNumber(math.Sqrt(numOf(a[0]))), nil },
		},
		{
			Key: "SUM", Symbols: []string{"SUM"}, Params: SingleSpread(paramAnything),
			Eval: func(a []value.Value) (value.Value, error) {
				flat := flatten(a, 3)
				var total float64
				for _, v := range flat {
					if c, ok := v.CoerceNumber(); ok && !math.IsNaN(c) {
						total += c
					}
				}
				return value.NewNumber(total), nil
			},
		},
		{
			Key: "TEXTJOIN", Symbols: []string{"TEXTJOIN"},
			Params: TypedList(true, paramString, paramBoolean, paramAnything),
			Eval: func(a []value.Value) (value.Value, error) {
				delim := a[0].DecimalString()
				ignoreEmpty := a[1].Truthy()
				var parts []string
				for _, v := range a[2:] {
					if ignoreEmpty && (v.IsNullish() || v.DecimalString() == "") {
						continue
					}
					parts = append(parts, v.DecimalString())
				}
				return value.NewString(strings.Join(parts, delim)), nil
			},
		},
		{
			Key: "TRUNCATE", Symbols: []string{"TRUNCATE"}, Params: TypedList(false, paramNumeric),
			Eval: func(a []value.Value) (value.Value, error) { return value.NewNumber(math.Trunc(numOf(a[0]))), nil },
		},
	}

	out := make(map[string]Spec, len(specs))
	for _, s := range specs {
		out[s.Key] = s
	}
	return out
}

// lenOf implements the LEN function's per-kind length rule.
func lenOf(v value.Value) float64 {
	switch v.Kind {
	case value.KindNull, value.KindUndefined:
		return 0
	case value.KindArray:
		return float64(len(v.Arr))
	case value.KindBoolean:
		return 1
	case value.KindDate:
		return float64(v.ToMillis())
	case value.KindObject:
		return 1
	default:
		return float64(len([]rune(v.DecimalString())))
	}
}
