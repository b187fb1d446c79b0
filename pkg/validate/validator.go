// Package validate implements CalKu's chainable predicate builder (spec
// C2), used by the operator and function catalogs to validate arguments.
//
// A Validator carries a value, an optional name, a "bypass" flag set by
// Allowed, and the first failure message encountered. Once a failure is
// recorded, every subsequent predicate call is a no-op: the session only
// ever reports the first problem, matching the spec's "first failure
// message" contract.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/appku/calku/pkg/types"
	"github.com/appku/calku/pkg/value"
)

// Validator is a single validation session over one value.
type Validator struct {
	v        value.Value
	name     string
	bypassed bool
	failure  string
}

// New starts a validation session over v. name is optional (pass "" for
// none) and is used only to build the failure message prefix.
func New(v value.Value, name string) *Validator {
	return &Validator{v: v, name: name}
}

// Reset clears any failure and bypass state and replaces the carried value
// and name with v and name, for reuse of the same Validator instance. Both
// are always replaced; there is no form that keeps the previous value or
// name.
func (val *Validator) Reset(v value.Value, name string) *Validator {
	val.v = v
	val.name = name
	val.bypassed = false
	val.failure = ""
	return val
}

// Ok reports whether no predicate has failed so far.
func (val *Validator) Ok() bool {
	return val.failure == ""
}

// Message returns the first failure's human-readable message, or "" if
// nothing has failed. The message is prefixed as `The value [for "<name>"] `
// when a name was supplied.
func (val *Validator) Message() string {
	if val.failure == "" {
		return ""
	}
	if val.name != "" {
		return fmt.Sprintf(`The value for "%s" %s`, val.name, val.failure)
	}
	return "The value " + val.failure
}

// Check converts the first failure (if any) into a *types.Error with code
// ErrArgumentInvalid, or returns nil when the session is still Ok.
func (val *Validator) Check() error {
	if val.Ok() {
		return nil
	}
	return types.NewError(types.ErrArgumentInvalid, val.Message())
}

// fail records msg as the first failure if one isn't already recorded. It
// never overwrites an existing failure and is a no-op once bypassed.
func (val *Validator) fail(msg string) *Validator {
	if val.bypassed || val.failure != "" {
		return val
	}
	val.failure = msg
	return val
}

// active reports whether a predicate should actually run: false once a
// failure is already recorded or the session has been bypassed by Allowed.
func (val *Validator) active() bool {
	return val.failure == "" && !val.bypassed
}

// Required rejects Null, Undefined, whitespace-only strings, and empty
// arrays.
func (val *Validator) Required() *Validator {
	if !val.active() {
		return val
	}
	switch val.v.Kind {
	case value.KindNull, value.KindUndefined:
		return val.fail("is required")
	case value.KindString:
		if strings.TrimSpace(val.v.S) == "" {
			return val.fail("is required")
		}
	case value.KindArray:
		if len(val.v.Arr) == 0 {
			return val.fail("is required")
		}
	}
	return val
}

// Anything always passes; it exists so call sites can make "no constraint"
// explicit rather than omitting a predicate silently.
func (val *Validator) Anything() *Validator {
	return val
}

// recognizedTags lists the type tokens InstanceOf accepts, besides the
// literal Null/Date tags handled specially below.
var recognizedTags = map[string]bool{
	"boolean": true, "number": true, "string": true,
	"object": true, "array": true, "date": true, "null": true,
}

// InstanceOf accepts the value if it matches any of the given type tags.
// Recognized tags are "boolean", "number", "string", "object", "array",
// "date", and "null". An unknown tag, or the literal "undefined", is a
// definition error (X0302) and panics — it indicates a catalog bug, not an
// expression-author mistake.
//
// When "array" appears together with other tags, every element of an
// Array value must itself satisfy the full type list, recursively.
func (val *Validator) InstanceOf(tags ...string) *Validator {
	for _, tag := range tags {
		if tag == "undefined" || !recognizedTags[tag] {
			panic(types.NewError(types.ErrUnknownTypeTag, "unknown or unsupported type tag: "+tag))
		}
	}
	if !val.active() {
		return val
	}
	if val.instanceOfMatches(val.v, tags) {
		return val
	}
	return val.fail("must be one of: " + strings.Join(tags, ", "))
}

func (val *Validator) instanceOfMatches(v value.Value, tags []string) bool {
	for _, tag := range tags {
		if tagMatchesKind(tag, v.Kind) {
			if tag == "array" && v.Kind == value.KindArray && len(tags) > 1 {
				for _, elem := range v.Arr {
					if !val.instanceOfMatches(elem, tags) {
						return false
					}
				}
			}
			return true
		}
	}
	return false
}

func tagMatchesKind(tag string, k value.Kind) bool {
	switch tag {
	case "boolean":
		return k == value.KindBoolean
	case "number":
		return k == value.KindNumber
	case "string":
		return k == value.KindString
	case "object":
		return k == value.KindObject
	case "array":
		return k == value.KindArray
	case "date":
		return k == value.KindDate
	case "null":
		return k == value.KindNull
	default:
		return false
	}
}

// Array requires the value to be an Array.
func (val *Validator) Array() *Validator { return val.shorthand(value.KindArray, "must be an array") }

// Boolean requires the value to be a Boolean.
func (val *Validator) Boolean() *Validator {
	return val.shorthand(value.KindBoolean, "must be a boolean")
}

// Number requires the value to be a Number.
func (val *Validator) Number() *Validator {
	return val.shorthand(value.KindNumber, "must be a number")
}

// String requires the value to be a String.
func (val *Validator) String() *Validator {
	return val.shorthand(value.KindString, "must be a string")
}

// Object requires the value to be an Object (arrays are rejected).
func (val *Validator) Object() *Validator {
	return val.shorthand(value.KindObject, "must be an object")
}

func (val *Validator) shorthand(k value.Kind, msg string) *Validator {
	if !val.active() {
		return val
	}
	if val.v.Kind != k {
		return val.fail(msg)
	}
	return val
}

// Integer requires the value be a Number whose floor equals itself.
func (val *Validator) Integer() *Validator {
	if !val.active() {
		return val
	}
	if val.v.Kind != value.KindNumber || math.Floor(val.v.N) != val.v.N {
		return val.fail("must be an integer")
	}
	return val
}

// Length constrains a String's rune count or an Array's element count to
// [min, max]. A nil bound is unbounded on that side.
func (val *Validator) Length(min, max *int) *Validator {
	if !val.active() {
		return val
	}
	var n int
	switch val.v.Kind {
	case value.KindString:
		n = len([]rune(val.v.S))
	case value.KindArray:
		n = len(val.v.Arr)
	default:
		return val.fail("must be a string or array to check length")
	}
	if min != nil && n < *min {
		return val.fail(fmt.Sprintf("must have a length of at least %d", *min))
	}
	if max != nil && n > *max {
		return val.fail(fmt.Sprintf("must have a length of at most %d", *max))
	}
	return val
}

// Range constrains a Number to [min, max] inclusive. A nil bound is
// unbounded on that side.
func (val *Validator) Range(min, max *float64) *Validator {
	if !val.active() {
		return val
	}
	if val.v.Kind != value.KindNumber {
		return val.fail("must be a number to check range")
	}
	if min != nil && val.v.N < *min {
		return val.fail(fmt.Sprintf("must be at least %s", strconv.FormatFloat(*min, 'g', -1, 64)))
	}
	if max != nil && val.v.N > *max {
		return val.fail(fmt.Sprintf("must be at most %s", strconv.FormatFloat(*max, 'g', -1, 64)))
	}
	return val
}

// Regexp requires a String value to match pattern.
func (val *Validator) Regexp(pattern string) *Validator {
	if !val.active() {
		return val
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		panic(types.NewError(types.ErrInvalidSpreadConfig, "invalid regexp pattern: "+err.Error()))
	}
	if val.v.Kind != value.KindString || !re.MatchString(val.v.S) {
		return val.fail("must match the pattern " + pattern)
	}
	return val
}

// EmailAddress requires a String value shaped like an email address. Shape
// checking is delegated to govalidator.IsEmail (see DESIGN.md) rather than
// a hand-rolled regexp.
func (val *Validator) EmailAddress() *Validator {
	if !val.active() {
		return val
	}
	if val.v.Kind != value.KindString || !govalidator.IsEmail(val.v.S) {
		return val.fail("must be a valid email address")
	}
	return val
}

// phoneRe matches US-style phone numbers; phoneExtRe additionally accepts
// a trailing extension ("x123" / "ext. 123").
var phoneRe = regexp.MustCompile(`^\+?1?[-. ]?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}$`)
var phoneExtRe = regexp.MustCompile(`^\+?1?[-. ]?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}(\s*(x|ext\.?)\s*\d+)?$`)

// PhoneNumber requires a String value shaped like a US phone number.
// allowExtension permits a trailing "x123"/"ext. 123" suffix.
func (val *Validator) PhoneNumber(allowExtension bool) *Validator {
	if !val.active() {
		return val
	}
	re := phoneRe
	if allowExtension {
		re = phoneExtRe
	}
	if val.v.Kind != value.KindString || !re.MatchString(strings.TrimSpace(val.v.S)) {
		return val.fail("must be a valid phone number")
	}
	return val
}

// postalRe matches US ZIP codes, 5 digit or ZIP+4.
var postalRe = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// PostalCode requires a String value shaped like a US postal code (5 or
// 5-4 digits).
func (val *Validator) PostalCode() *Validator {
	if !val.active() {
		return val
	}
	if val.v.Kind != value.KindString || !postalRe.MatchString(val.v.S) {
		return val.fail("must be a valid postal code")
	}
	return val
}

// CustomFunc is the signature required by Custom: it returns "" on success
// or the failure sentence to record.
type CustomFunc func(v value.Value) string

// Custom invokes fn and records its result as a failure unless it returns
// "".
func (val *Validator) Custom(fn CustomFunc) *Validator {
	if !val.active() {
		return val
	}
	if msg := fn(val.v); msg != "" {
		return val.fail(msg)
	}
	return val
}

// Allowed short-circuits the remainder of the chain with success if the
// value strictly equals any of values.
func (val *Validator) Allowed(values ...value.Value) *Validator {
	if val.failure != "" || val.bypassed {
		return val
	}
	for _, want := range values {
		if val.v.Equal(want) {
			val.bypassed = true
			return val
		}
	}
	return val
}
