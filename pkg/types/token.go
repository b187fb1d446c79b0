package types

import "github.com/appku/calku/pkg/value"

// TokenKind identifies which variant of Token is populated.
type TokenKind uint8

const (
	TokenGroupStart TokenKind = iota
	TokenGroupEnd
	TokenFuncArgsStart
	TokenFuncArgsEnd
	TokenFuncArgsSeparator
	TokenGroup
	TokenFunc
	TokenOperator
	TokenLiteral
	TokenPropertyRef
	TokenComment
)

// LiteralStyle records whether a literal was written with quotes (and is
// therefore never re-typed by the value parser) or bare.
type LiteralStyle uint8

const (
	StyleNaked LiteralStyle = iota
	StyleQuoted
)

// Token is CalKu's tagged-variant token/AST node. Every token carries
// Start/End source indices for error messages. Group and Func own their
// Children; every token is owned by exactly one parent (the root
// sequence or a Group/Func).
type Token struct {
	Kind  TokenKind
	Start int
	End   int

	// Operator
	OpKey string

	// Literal
	Value value.Value // set post value-parsing; zero value until promoted
	Style LiteralStyle

	// PropertyRef
	Path string

	// Comment
	Text string

	// Func
	Name string

	// Group / Func
	Children []Token
}
