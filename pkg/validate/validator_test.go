package validate

import (
	"testing"

	"github.com/appku/calku/pkg/value"
)

func TestRequired(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		ok   bool
	}{
		{"null", value.Null, false},
		{"undefined", value.Undefined, false},
		{"blank string", value.NewString("   "), false},
		{"string", value.NewString("x"), true},
		{"empty array", value.NewArray(nil), false},
		{"nonempty array", value.NewArray([]value.Value{value.NewNumber(1)}), true},
		{"zero", value.NewNumber(0), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := New(c.v, "field").Required()
			if v.Ok() != c.ok {
				t.Errorf("Required() Ok() = %v, want %v (message: %q)", v.Ok(), c.ok, v.Message())
			}
		})
	}
}

func TestInstanceOf(t *testing.T) {
	if !New(value.NewNumber(1), "").InstanceOf("number", "boolean").Ok() {
		t.Error("number should satisfy InstanceOf(number, boolean)")
	}
	if New(value.NewString("x"), "").InstanceOf("number", "boolean").Ok() {
		t.Error("string should not satisfy InstanceOf(number, boolean)")
	}
}

func TestInstanceOfArrayRecurses(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewNumber(1), value.NewString("x")})
	if New(arr, "").InstanceOf("array", "number").Ok() {
		t.Error("array containing a non-number element should fail InstanceOf(array, number)")
	}
	arr2 := value.NewArray([]value.Value{value.NewNumber(1), value.NewNumber(2)})
	if !New(arr2, "").InstanceOf("array", "number").Ok() {
		t.Error("all-number array should satisfy InstanceOf(array, number)")
	}
}

func TestInstanceOfUnknownTagPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected InstanceOf to panic on an unrecognized tag")
		}
	}()
	New(value.NewNumber(1), "").InstanceOf("wat")
}

func TestFirstFailureWins(t *testing.T) {
	v := New(value.NewString(""), "field").Required().String()
	if v.Ok() {
		t.Fatal("expected a failure")
	}
	if v.Message() != `The value for "field" is required` {
		t.Errorf("Message() = %q, want the Required() message (first failure wins)", v.Message())
	}
}

func TestAllowedBypasses(t *testing.T) {
	v := New(value.NewString("x"), "").Allowed(value.NewString("x"), value.NewString("y")).String()
	if !v.Ok() {
		t.Error("Allowed match should bypass subsequent predicates")
	}
	v2 := New(value.NewString("z"), "").Allowed(value.NewString("x")).String()
	if v2.Ok() {
		t.Error("non-matching value should not be bypassed and must fail String()")
	}
}

func TestRange(t *testing.T) {
	min, max := 1.0, 10.0
	if !New(value.NewNumber(5), "").Range(&min, &max).Ok() {
		t.Error("5 should be within [1,10]")
	}
	if New(value.NewNumber(0), "").Range(&min, &max).Ok() {
		t.Error("0 should be below [1,10]")
	}
}

func TestCheckReturnsArgumentInvalidError(t *testing.T) {
	v := New(value.Null, "x").Required()
	err := v.Check()
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestEmailAddress(t *testing.T) {
	if !New(value.NewString("a@b.com"), "").EmailAddress().Ok() {
		t.Error("a@b.com should be a valid email")
	}
	if New(value.NewString("not-an-email"), "").EmailAddress().Ok() {
		t.Error("not-an-email should fail EmailAddress")
	}
}

func TestPostalCode(t *testing.T) {
	if !New(value.NewString("90210"), "").PostalCode().Ok() {
		t.Error("90210 should be a valid postal code")
	}
	if !New(value.NewString("90210-1234"), "").PostalCode().Ok() {
		t.Error("90210-1234 should be a valid ZIP+4")
	}
	if New(value.NewString("abcde"), "").PostalCode().Ok() {
		t.Error("abcde should not be a valid postal code")
	}
}
