// Package calku implements an embedded expression language: small
// formula strings that resolve property references against a target
// value, apply a fixed operator and function catalog, and evaluate to a
// single typed value.
package calku

import (
	"log/slog"
	"time"

	"github.com/appku/calku/pkg/cache"
	"github.com/appku/calku/pkg/evaluator"
	"github.com/appku/calku/pkg/lexer"
	"github.com/appku/calku/pkg/pathresolve"
	"github.com/appku/calku/pkg/types"
)

var defaultCache = cache.New(256)

// Option configures an Expression at construction, or a one-shot
// convenience entry point.
type Option func(*config)

type config struct {
	timeZone string
	logger   *slog.Logger
	cache    *cache.Cache
}

// WithTimeZone sets the IANA zone name used to resolve naked dates that
// carry no explicit offset. Defaults to "UTC".
func WithTimeZone(name string) Option {
	return func(c *config) { c.timeZone = name }
}

// WithLogger enables Debug/Warn diagnostic tracing on the evaluator. A
// nil logger (the default) produces no output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCache supplies a shared compiled-tree cache to a one-shot entry
// point, in place of the package-level default.
func WithCache(c *cache.Cache) Option {
	return func(cfg *config) { cfg.cache = c }
}

func newConfig(opts []Option) config {
	c := config{timeZone: "UTC"}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Expression binds a source text and time zone, lazily compiling and
// caching the token tree on first use. Setting Expression or TimeZone
// invalidates the cached tree. Not safe for concurrent use without
// external synchronization.
type Expression struct {
	expression string
	timeZone   string
	loc        *time.Location
	logger     *slog.Logger
	cache      *cache.Cache

	tree     []types.Token
	compErr  error
	resolved bool
}

// New constructs an Expression bound to source text, ready for
// Properties/Value/Values.
func New(source string, opts ...Option) *Expression {
	cfg := newConfig(opts)
	c := cfg.cache
	if c == nil {
		c = defaultCache
	}
	return &Expression{
		expression: source,
		timeZone:   cfg.timeZone,
		logger:     cfg.logger,
		cache:      c,
	}
}

// GetExpression returns the bound source text.
func (e *Expression) GetExpression() string { return e.expression }

// SetExpression rebinds the source text, invalidating the cached tree.
func (e *Expression) SetExpression(source string) {
	e.expression = source
	e.invalidate()
}

// GetTimeZone returns the bound IANA zone name.
func (e *Expression) GetTimeZone() string { return e.timeZone }

// SetTimeZone rebinds the time zone, invalidating the cached tree (date
// promotion is zone-sensitive, so a changed zone can re-parse dates
// differently).
func (e *Expression) SetTimeZone(name string) {
	e.timeZone = name
	e.invalidate()
}

func (e *Expression) invalidate() {
	e.tree = nil
	e.compErr = nil
	e.resolved = false
	e.loc = nil
}

func (e *Expression) location() (*time.Location, error) {
	if e.loc != nil {
		return e.loc, nil
	}
	name := e.timeZone
	if name == "" {
		name = "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, types.NewError(types.ErrArgumentInvalid, "unknown time zone: "+name).WithCause(err)
	}
	e.loc = loc
	return loc, nil
}

// compile lexes the bound source (through the shared cache) and caches
// the result on the Expression for subsequent calls.
func (e *Expression) compile() ([]types.Token, error) {
	if e.resolved {
		return e.tree, e.compErr
	}
	loc, err := e.location()
	if err != nil {
		e.resolved = true
		e.compErr = err
		return nil, err
	}
	key := cache.Key(e.expression, loc.String())
	tree, err := e.cache.GetOrCompile(key, func() ([]types.Token, error) {
		return lexer.Lex(e.expression, loc)
	})
	e.resolved = true
	e.tree, e.compErr = tree, err
	return tree, err
}

// Properties returns the distinct, ordered list of property-reference
// paths observed anywhere in the expression, including inside groups and
// function arguments. Lexer errors propagate.
func (e *Expression) Properties() ([]string, error) {
	tree, err := e.compile()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	var walk func(tokens []types.Token)
	walk = func(tokens []types.Token) {
		for _, t := range tokens {
			if t.Kind == types.TokenPropertyRef {
				if !seen[t.Path] {
					seen[t.Path] = true
					out = append(out, t.Path)
				}
				continue
			}
			if len(t.Children) > 0 {
				walk(t.Children)
			}
		}
	}
	walk(tree)
	return out, nil
}

// Value evaluates the expression once against target. Evaluation errors
// are caught and returned as the result's dynamic value rather than as a
// Go error. Lexer (syntax) errors and definition errors are never
// caught: a syntax error means there is no token tree to evaluate at
// all, and a definition error is a catalog misconfiguration rather than
// an expression-author mistake, so both propagate as a normal Go error.
func (e *Expression) Value(target interface{}) (result interface{}, err error) {
	tree, err := e.compile()
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*types.Error)
			if !ok || !types.IsDefinitionError(ce.Code) {
				panic(r)
			}
			result, err = nil, ce
		}
	}()
	ev := evaluator.New(target, e.logger)
	v, err := ev.Eval(tree)
	if err != nil {
		if ce, ok := err.(*types.Error); ok && types.IsDefinitionError(ce.Code) {
			return nil, err
		}
		e.warn(err)
		return err, nil
	}
	return v, nil
}

func (e *Expression) warn(err error) {
	if e.logger != nil {
		e.logger.Warn("expression evaluation failed", "error", err.Error(), "expression", e.expression)
	}
}

// Values evaluates the expression once per target, in order.
func (e *Expression) Values(targets []interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(targets))
	for i, t := range targets {
		v, err := e.Value(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Eval is the one-shot convenience form of New(source, opts...).Value(target).
func Eval(source string, target interface{}, opts ...Option) (interface{}, error) {
	return New(source, opts...).Value(target)
}

// EvalAll is the one-shot convenience form of New(source, opts...).Values(targets).
func EvalAll(source string, targets []interface{}, opts ...Option) ([]interface{}, error) {
	return New(source, opts...).Values(targets)
}

// ValueAt exposes the property path resolver directly: resolving a
// single dot/colon-notated path against target without any expression
// syntax around it.
func ValueAt(target interface{}, path string) (interface{}, error) {
	v, err := pathresolve.Resolve(target, path)
	if err != nil {
		return nil, err
	}
	return v, nil
}
