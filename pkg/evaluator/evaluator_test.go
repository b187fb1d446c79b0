package evaluator

import (
	"testing"
	"time"

	"github.com/appku/calku/pkg/lexer"
	"github.com/appku/calku/pkg/value"
)

func evalSource(t *testing.T, source string, target interface{}) value.Value {
	t.Helper()
	tree, err := lexer.Lex(source, time.UTC)
	if err != nil {
		t.Fatalf("Lex(%q) returned error: %v", source, err)
	}
	v, err := New(target, nil).Eval(tree)
	if err != nil {
		t.Fatalf("Eval(%q) returned error: %v", source, err)
	}
	return v
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	got := evalSource(t, "10 + 5 - 12 / 3 * 2", nil)
	if got.N != 7 {
		t.Errorf("got %v, want 7", got.N)
	}
}

func TestEvalGroupedArithmetic(t *testing.T) {
	got := evalSource(t, "(15 - 2 * 4) + (1 + 1 / 4)", nil)
	if got.N != 8.25 {
		t.Errorf("got %v, want 8.25", got.N)
	}
}

func TestEvalLogicPrecedence(t *testing.T) {
	got := evalSource(t, "false AND true OR (true AND false)", nil)
	if got.Kind != value.KindBoolean || got.B != false {
		t.Errorf("got %#v, want boolean false", got)
	}
}

func TestEvalNestedFunctionCalls(t *testing.T) {
	got := evalSource(t, "SUM(SUM(1, 3), 4, 8, 5)", nil)
	if got.N != 21 {
		t.Errorf("got %v, want 21", got.N)
	}
}

func TestEvalPropertyReferenceArithmetic(t *testing.T) {
	target := map[string]interface{}{"num": 334455}
	got := evalSource(t, "{num} + 3", target)
	if got.N != 334458 {
		t.Errorf("got %v, want 334458", got.N)
	}
}

func TestEvalConcatenateMixedTypes(t *testing.T) {
	got := evalSource(t, `"hi" & " there x" & 3 & true`, nil)
	if got.Kind != value.KindString || got.S != "hi there x3true" {
		t.Errorf("got %#v, want string \"hi there x3true\"", got)
	}
}

func TestEvalEmptyExpressionIsUndefined(t *testing.T) {
	got := evalSource(t, "", nil)
	if got.Kind != value.KindUndefined {
		t.Errorf("got %#v, want Undefined", got)
	}
}

func TestEvalMissingOperandErrors(t *testing.T) {
	tree, err := lexer.Lex("1 +", time.UTC)
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if _, err := New(nil, nil).Eval(tree); err == nil {
		t.Fatal("expected a missing-operand error")
	}
}

func TestEvalSingleTokenFastPath(t *testing.T) {
	got := evalSource(t, "42", nil)
	if got.N != 42 {
		t.Errorf("got %v, want 42", got.N)
	}
}

func TestEvalLeftAssociativitySamePrecedence(t *testing.T) {
	// Subtraction ties ADDITION's precedence; left-to-right means
	// "10 - 3 - 2" is (10-3)-2 = 5, not 10-(3-2) = 9.
	got := evalSource(t, "10 - 3 - 2", nil)
	if got.N != 5 {
		t.Errorf("got %v, want 5", got.N)
	}
}

func TestEvalCommentsDropped(t *testing.T) {
	got := evalSource(t, "1 + 1 // trailing note\n", nil)
	if got.N != 2 {
		t.Errorf("got %v, want 2", got.N)
	}
}
