// Package eval evaluates parsed comment directives against a scope chain.
package eval

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/benjaminschreck/go-docmark/pkg/docmark/directive"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/scope"
)

// Function is a callable registered under a name.
type Function interface {
	Call(args ...any) (any, error)
}

// FunctionFunc adapts an ordinary function to the Function interface.
type FunctionFunc func(args ...any) (any, error)

// Call implements Function.
func (f FunctionFunc) Call(args ...any) (any, error) {
	return f(args...)
}

// Logger is the subset of a leveled logger the resolver writes to.
type Logger interface {
	Debug(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Value is the result of resolving a directive: a scalar or a sequence of
// child scopes.
type Value struct {
	Data   any
	Scopes []*scope.Scope
	isSeq  bool
}

// Scalar wraps a single value.
func Scalar(data any) Value {
	return Value{Data: data}
}

// Sequence wraps the child scopes of a foreach expansion.
func Sequence(scopes []*scope.Scope) Value {
	return Value{Scopes: scopes, isSeq: true}
}

// IsSequence reports whether v came from a foreach directive.
func (v Value) IsSequence() bool {
	return v.isSeq
}

// Resolver holds one parsed directive per comment id and the functions
// those directives may call.
type Resolver struct {
	directives map[string]directive.Directive
	functions  map[string]Function
	logger     Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithFunctions registers every function in fns.
func WithFunctions(fns map[string]Function) Option {
	return func(r *Resolver) {
		for name, fn := range fns {
			r.functions[name] = fn
		}
	}
}

// NewResolver parses every comment. It fails on the first comment that does
// not parse; no partially built resolver is returned. Comments are parsed in
// id order so the reported failure is deterministic.
func NewResolver(comments map[string]string, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		directives: make(map[string]directive.Directive, len(comments)),
		functions:  make(map[string]Function),
		logger:     nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}

	ids := make([]string, 0, len(comments))
	for id := range comments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		d, err := directive.Parse(comments[id])
		if err != nil {
			return nil, &CommentError{ID: id, Cause: err}
		}
		r.directives[id] = d
	}
	return r, nil
}

// RegisterFunction binds fn to name, replacing any existing binding.
func (r *Resolver) RegisterFunction(name string, fn Function) {
	r.functions[name] = fn
}

// HasFunction reports whether name is bound.
func (r *Resolver) HasFunction(name string) bool {
	_, ok := r.functions[name]
	return ok
}

// Directive returns the parsed directive of a comment id.
func (r *Resolver) Directive(id string) (directive.Directive, bool) {
	d, ok := r.directives[id]
	return d, ok
}

// IDs returns the known comment ids in sorted order.
func (r *Resolver) IDs() []string {
	ids := make([]string, 0, len(r.directives))
	for id := range r.directives {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolve evaluates the directive of comment id against s. Unknown ids
// evaluate as an empty directive.
func (r *Resolver) Resolve(id string, s *scope.Scope) (Value, error) {
	d, ok := r.directives[id]
	if !ok {
		d = directive.Empty{}
	}
	v, err := r.resolve(d, s)
	if err != nil {
		return Value{}, &CommentError{ID: id, Cause: err}
	}
	r.logger.Debug("Resolved comment %s (%s) to %s", id, d, describe(v))
	return v, nil
}

func (r *Resolver) resolve(d directive.Directive, s *scope.Scope) (Value, error) {
	switch d := d.(type) {
	case directive.Key:
		v, _ := s.Find(d.Path)
		return Scalar(v), nil
	case directive.Number:
		return Scalar(d.Value()), nil
	case directive.Text:
		return Scalar(d.Value), nil
	case directive.Foreach:
		data, _ := s.Find(d.Path)
		items := Flatten(data)
		scopes := make([]*scope.Scope, len(items))
		for i, item := range items {
			scopes[i] = s.Child(item)
		}
		return Sequence(scopes), nil
	case directive.Call:
		return r.call(d, s)
	default:
		return Scalar(""), nil
	}
}

func (r *Resolver) call(c directive.Call, s *scope.Scope) (Value, error) {
	fn, ok := r.functions[c.Name]
	if !ok {
		return Value{}, &UndefinedFunctionError{Name: c.Name}
	}

	args := make([]any, len(c.Args))
	for i, arg := range c.Args {
		v, err := r.resolve(arg, s)
		if err != nil {
			return Value{}, err
		}
		// A sequence has no scalar payload and contributes nil.
		if !v.IsSequence() {
			args[i] = v.Data
		}
	}

	result, err := fn.Call(args...)
	if err != nil {
		return Value{}, &FunctionError{Function: c.Name, Args: args, Cause: err}
	}
	return Scalar(result), nil
}

// Flatten turns the data of a foreach directive into its elements. Ordered
// collections (Valuer) keep their order, maps yield their values in key
// order, slices and arrays are used as is, and anything else, nil included,
// becomes a one-element sequence.
func Flatten(data any) []any {
	if v, ok := data.(scope.Valuer); ok && !scope.IsNil(data) {
		return v.Values()
	}
	switch v := data.(type) {
	case []any:
		return v
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = v[k]
		}
		return out
	}

	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = rv.MapIndex(k).Interface()
		}
		return out
	}
	return []any{data}
}

func describe(v Value) string {
	if v.IsSequence() {
		return fmt.Sprintf("sequence of %d", len(v.Scopes))
	}
	return fmt.Sprintf("%v", v.Data)
}
