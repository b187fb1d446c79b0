// Package lexer implements CalKu's source scanner: a single left-to-right
// pass that turns expression source text into a flat token sequence, then
// a second pass that nests Group and Func children, following the
// teacher's Rob Pike-style scanning technique adapted to CalKu's token set.
package lexer

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/appku/calku/pkg/functions"
	"github.com/appku/calku/pkg/operators"
	"github.com/appku/calku/pkg/types"
	"github.com/appku/calku/pkg/valueparse"
)

const eof rune = 0

type openKind uint8

const (
	openNone openKind = iota
	openPropertyRef
	openComment
	openLiteral
)

type stackEntry struct {
	kind  types.TokenKind
	start int
}

// lexer holds scan state for a single call to Lex. It is not reused across
// calls; all memoization lives in the operators/functions packages.
type lexer struct {
	input string
	n     int

	open      openKind
	openStart int
	buf       strings.Builder
	style     types.LiteralStyle

	groupStack []stackEntry
	flat       []types.Token

	loc      *time.Location
	opMatch  *operators.Matcher
	fnMatch  *functions.Matcher
}

// Lex scans input and returns the nested token tree. loc resolves date
// lexemes that carry no explicit offset; a nil loc defaults to UTC.
func Lex(input string, loc *time.Location) ([]types.Token, error) {
	l := &lexer{
		input:   input,
		n:       len(input),
		loc:     loc,
		opMatch: operators.SymbolMatcher(),
		fnMatch: functions.SymbolMatcher(),
	}
	if err := l.scan(); err != nil {
		return nil, err
	}
	return build(l.flat), nil
}

func (l *lexer) peekRune(pos int) (rune, int) {
	if pos >= l.n {
		return eof, 0
	}
	r, w := utf8.DecodeRuneInString(l.input[pos:])
	return r, w
}

// skipSpacesToParen reports whether, starting at pos, a run of zero or
// more whitespace runes is immediately followed by '(', the shape that
// turns a naked literal into a function call name.
func (l *lexer) skipSpacesToParen(pos int) (after int, yes bool) {
	for pos < l.n {
		r, w := l.peekRune(pos)
		if !isSpace(r) {
			return pos, r == '('
		}
		pos += w
	}
	return pos, false
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func isNakedBoundary(r rune) bool {
	switch r {
	case '(', ')', '[', ']', '{', '}':
		return true
	default:
		return isSpace(r)
	}
}

func (l *lexer) emit(kind types.TokenKind, start, end int) {
	l.flat = append(l.flat, types.Token{Kind: kind, Start: start, End: end})
}

func (l *lexer) topIsFuncArgs() bool {
	return len(l.groupStack) > 0 && l.groupStack[len(l.groupStack)-1].kind == types.TokenFuncArgsStart
}

func (l *lexer) closeLiteral(end int) error {
	raw := l.buf.String()
	v, err := valueparse.Promote(raw, l.style, l.loc)
	if err != nil {
		return err
	}
	l.flat = append(l.flat, types.Token{
		Kind: types.TokenLiteral, Start: l.openStart, End: end, Value: v, Style: l.style,
	})
	l.buf.Reset()
	l.open = openNone
	return nil
}

func (l *lexer) convertLiteralToFunc(parenEnd int) error {
	name := l.buf.String()
	l.buf.Reset()
	key, ok := l.fnMatch.Match(name)
	if !ok {
		return types.NewErrorAt(types.ErrUnknownFunction,
			"unknown function: "+name, l.openStart).WithToken(name)
	}
	l.flat = append(l.flat, types.Token{
		Kind: types.TokenFuncArgsStart, Start: l.openStart, End: parenEnd, Name: key,
	})
	l.groupStack = append(l.groupStack, stackEntry{kind: types.TokenFuncArgsStart, start: l.openStart})
	l.open = openNone
	return nil
}

func (l *lexer) scan() error {
	i := 0
	for i < l.n {
		switch l.open {
		case openPropertyRef:
			r, w := l.peekRune(i)
			if r == '\\' {
				if nr, nw := l.peekRune(i + w); nr == '}' {
					l.buf.WriteRune('}')
					i += w + nw
					continue
				}
			}
			if r == '}' {
				l.flat = append(l.flat, types.Token{
					Kind: types.TokenPropertyRef, Start: l.openStart, End: i + w, Path: l.buf.String(),
				})
				l.buf.Reset()
				l.open = openNone
				i += w
				continue
			}
			l.buf.WriteRune(r)
			i += w
			continue

		case openComment:
			r, w := l.peekRune(i)
			if r == '\n' {
				l.flat = append(l.flat, types.Token{
					Kind: types.TokenComment, Start: l.openStart, End: i, Text: l.buf.String(),
				})
				l.buf.Reset()
				l.open = openNone
				i += w
				continue
			}
			l.buf.WriteRune(r)
			i += w
			continue

		case openLiteral:
			r, w := l.peekRune(i)
			if l.style == types.StyleQuoted {
				if r == '\\' {
					if nr, nw := l.peekRune(i + w); nr == '"' {
						l.buf.WriteRune('"')
						i += w + nw
						continue
					}
				}
				if r == '"' {
					if err := l.closeLiteral(i + w); err != nil {
						return err
					}
					i += w
					continue
				}
				if r == eof {
					return types.NewErrorAt(types.ErrUnterminatedString,
						"unterminated quoted literal", l.openStart)
				}
				l.buf.WriteRune(r)
				i += w
				continue
			}

			// naked literal
			if after, yes := l.skipSpacesToParen(i); yes {
				if err := l.convertLiteralToFunc(after + 1); err != nil {
					return err
				}
				i = after + 1
				continue
			}
			if _, ok := l.opMatch.MatchAt(l.input, i); ok {
				if err := l.closeLiteral(i); err != nil {
					return err
				}
				continue // reprocess at i with open == none; the operator is matched there
			}
			if r == eof {
				if err := l.closeLiteral(i); err != nil {
					return err
				}
				continue
			}
			if isNakedBoundary(r) {
				if err := l.closeLiteral(i); err != nil {
					return err
				}
				continue // reprocess r at the same position, open == none now
			}
			if r == ',' && l.topIsFuncArgs() {
				if err := l.closeLiteral(i); err != nil {
					return err
				}
				continue // reprocess ',' below
			}
			l.buf.WriteRune(r)
			i += w
			continue
		}

		// open == openNone
		r, w := l.peekRune(i)
		switch {
		case r == '(':
			l.emit(types.TokenGroupStart, i, i+w)
			l.groupStack = append(l.groupStack, stackEntry{kind: types.TokenGroupStart, start: i})
			i += w
		case r == ')':
			if len(l.groupStack) == 0 {
				return types.NewErrorAt(types.ErrUnmatchedGroupEnd, "unmatched ')'", i)
			}
			top := l.groupStack[len(l.groupStack)-1]
			l.groupStack = l.groupStack[:len(l.groupStack)-1]
			if top.kind == types.TokenGroupStart {
				l.emit(types.TokenGroupEnd, i, i+w)
			} else {
				l.emit(types.TokenFuncArgsEnd, i, i+w)
			}
			i += w
		case r == '{':
			l.open = openPropertyRef
			l.openStart = i
			i += w
		case r == '/' && l.peekIs(i+w, '/'):
			_, w2 := l.peekRune(i + w)
			l.open = openComment
			l.openStart = i
			i += w + w2
		case r == ',' && l.topIsFuncArgs():
			l.emit(types.TokenFuncArgsSeparator, i, i+w)
			i += w
		case isSpace(r):
			i += w
		default:
			if mr, ok := l.opMatch.MatchAt(l.input, i); ok {
				l.flat = append(l.flat, types.Token{
					Kind: types.TokenOperator, Start: i, End: i + mr.Length, OpKey: mr.Key,
				})
				i += mr.Length
				continue
			}
			l.open = openLiteral
			l.openStart = i
			if r == '"' {
				l.style = types.StyleQuoted
				i += w
			} else {
				l.style = types.StyleNaked
				l.buf.WriteRune(r)
				i += w
			}
		}
	}
	return l.finish()
}

func (l *lexer) peekIs(pos int, want rune) bool {
	r, _ := l.peekRune(pos)
	return r == want
}

func (l *lexer) finish() error {
	switch l.open {
	case openPropertyRef:
		return types.NewErrorAt(types.ErrUnterminatedPropertyRef, "unterminated property reference", l.openStart)
	case openComment:
		return types.NewErrorAt(types.ErrUnterminatedComment, "unterminated comment", l.openStart)
	case openLiteral:
		if l.style == types.StyleQuoted {
			return types.NewErrorAt(types.ErrUnterminatedString, "unterminated quoted literal", l.openStart)
		}
		if err := l.closeLiteral(l.n); err != nil {
			return err
		}
	}
	if len(l.groupStack) > 0 {
		top := l.groupStack[len(l.groupStack)-1]
		return types.NewErrorAt(types.ErrUnclosedGroup, "unclosed group or function call", top.start)
	}
	return nil
}

// build runs the lexer's second pass: converting the flat token sequence
// into a nested tree by pushing a new Group/Func node on every
// GroupStart/FuncArgsStart and popping it into its parent's children on
// the matching End.
func build(flat []types.Token) []types.Token {
	var root []types.Token
	var stack []types.Token

	appendChild := func(t types.Token) {
		if len(stack) == 0 {
			root = append(root, t)
			return
		}
		top := &stack[len(stack)-1]
		top.Children = append(top.Children, t)
	}

	for _, ft := range flat {
		switch ft.Kind {
		case types.TokenGroupStart:
			stack = append(stack, types.Token{Kind: types.TokenGroup, Start: ft.Start})
		case types.TokenFuncArgsStart:
			stack = append(stack, types.Token{Kind: types.TokenFunc, Start: ft.Start, Name: ft.Name})
		case types.TokenGroupEnd, types.TokenFuncArgsEnd:
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			node.End = ft.End
			appendChild(node)
		default:
			appendChild(ft)
		}
	}
	return root
}
