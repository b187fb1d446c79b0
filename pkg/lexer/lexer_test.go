package lexer

import (
	"testing"
	"time"

	"github.com/appku/calku/pkg/types"
	"github.com/appku/calku/pkg/value"
)

func lex(t *testing.T, input string) []types.Token {
	t.Helper()
	toks, err := Lex(input, time.UTC)
	if err != nil {
		t.Fatalf("Lex(%q) returned error: %v", input, err)
	}
	return toks
}

func TestLexNumberAndOperator(t *testing.T) {
	toks := lex(t, "10+5")
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3: %#v", len(toks), toks)
	}
	if toks[0].Kind != types.TokenLiteral || toks[0].Value.N != 10 {
		t.Errorf("toks[0] = %#v, want literal 10", toks[0])
	}
	if toks[1].Kind != types.TokenOperator || toks[1].OpKey != "ADDITION" {
		t.Errorf("toks[1] = %#v, want ADDITION", toks[1])
	}
	if toks[2].Kind != types.TokenLiteral || toks[2].Value.N != 5 {
		t.Errorf("toks[2] = %#v, want literal 5", toks[2])
	}
}

func TestLexWordOperatorRequiresBoundary(t *testing.T) {
	toks := lex(t, "orange")
	if len(toks) != 1 || toks[0].Kind != types.TokenLiteral || toks[0].Value.S != "orange" {
		t.Fatalf("\"orange\" should lex as a single string literal, got %#v", toks)
	}
}

func TestLexQuotedStringWithEscape(t *testing.T) {
	toks := lex(t, `"say \"hi\""`)
	if len(toks) != 1 || toks[0].Value.S != `say "hi"` {
		t.Fatalf("got %#v, want literal `say \"hi\"`", toks)
	}
}

func TestLexBooleanAndNullLiterals(t *testing.T) {
	toks := lex(t, "true false null undefined")
	want := []value.Kind{value.KindBoolean, value.KindBoolean, value.KindNull, value.KindUndefined}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %#v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Value.Kind != k {
			t.Errorf("toks[%d].Value.Kind = %v, want %v", i, toks[i].Value.Kind, k)
		}
	}
}

func TestLexPropertyReference(t *testing.T) {
	toks := lex(t, "{a.b:1}")
	if len(toks) != 1 || toks[0].Kind != types.TokenPropertyRef || toks[0].Path != "a.b:1" {
		t.Fatalf("got %#v, want a single PropertyRef with path a.b:1", toks)
	}
}

func TestLexPropertyReferenceEscapedBrace(t *testing.T) {
	toks := lex(t, `{a\}b}`)
	if len(toks) != 1 || toks[0].Path != "a}b" {
		t.Fatalf("got %#v, want PropertyRef path a}b", toks)
	}
}

func TestLexUnterminatedPropertyReference(t *testing.T) {
	_, err := Lex("{a.b", time.UTC)
	if err == nil {
		t.Fatal("expected an unterminated property reference error")
	}
}

func TestLexComment(t *testing.T) {
	toks := lex(t, "1 // trailing note\n+ 2")
	if len(toks) != 4 {
		t.Fatalf("got %d tokens, want 4 (literal, comment, operator, literal): %#v", len(toks), toks)
	}
	if toks[1].Kind != types.TokenComment {
		t.Fatalf("toks[1] = %#v, want Comment", toks[1])
	}
	if toks[2].Kind != types.TokenOperator || toks[2].OpKey != "ADDITION" {
		t.Fatalf("toks[2] = %#v, want ADDITION", toks[2])
	}
}

func TestLexUnterminatedCommentAtEOF(t *testing.T) {
	_, err := Lex("1 + 1 // trailing note", time.UTC)
	if err == nil {
		t.Fatal("expected an unterminated comment error")
	}
	ce, ok := err.(*types.Error)
	if !ok {
		t.Fatalf("error is %T, want *types.Error", err)
	}
	if ce.Code != types.ErrUnterminatedComment {
		t.Errorf("Code = %v, want ErrUnterminatedComment", ce.Code)
	}
}

func TestLexGroupNesting(t *testing.T) {
	toks := lex(t, "(1 + (2 * 3))")
	if len(toks) != 1 || toks[0].Kind != types.TokenGroup {
		t.Fatalf("got %#v, want a single root Group", toks)
	}
	inner := toks[0].Children
	if len(inner) != 3 || inner[2].Kind != types.TokenGroup {
		t.Fatalf("inner children = %#v, want [literal, operator, group]", inner)
	}
}

func TestLexFunctionCall(t *testing.T) {
	toks := lex(t, "SUM(1, 2, 3)")
	if len(toks) != 1 || toks[0].Kind != types.TokenFunc || toks[0].Name != "SUM" {
		t.Fatalf("got %#v, want a single Func node named SUM", toks)
	}
	children := toks[0].Children
	if len(children) != 5 {
		t.Fatalf("got %d children, want 5 (3 literals + 2 separators): %#v", len(children), children)
	}
}

func TestLexUnknownFunctionIsError(t *testing.T) {
	_, err := Lex("BOGUS(1,2)", time.UTC)
	if err == nil {
		t.Fatal("expected an unknown-function error")
	}
	ce, ok := err.(*types.Error)
	if !ok {
		t.Fatalf("error is %T, want *types.Error", err)
	}
	if ce.Code != types.ErrUnknownFunction {
		t.Errorf("Code = %v, want ErrUnknownFunction", ce.Code)
	}
}

func TestLexUnmatchedCloseParen(t *testing.T) {
	if _, err := Lex("1 + 1)", time.UTC); err == nil {
		t.Fatal("expected an unmatched ')' error")
	}
}

func TestLexUnclosedGroup(t *testing.T) {
	if _, err := Lex("(1 + 1", time.UTC); err == nil {
		t.Fatal("expected an unclosed group error")
	}
}

func TestLexEmptyInput(t *testing.T) {
	toks := lex(t, "")
	if len(toks) != 0 {
		t.Fatalf("got %#v, want zero tokens", toks)
	}
}
