// Package scope implements the hierarchical lookup chain directives are
// evaluated against.
//
// A Scope wraps one level of caller data. Lookups walk dotted paths through
// maps, structs and Getter implementations; when a step misses, the whole
// path is retried on the parent scope. Successful local lookups are memoised
// per Scope instance.
package scope

import (
	"reflect"
	"strings"
)

// MissPolicy decides which present values still count as a lookup miss.
type MissPolicy int

const (
	// MissOnFalsy treats absent, nil (including typed nil) and boolean false
	// values as misses. A key explicitly set to false therefore falls back to
	// the parent scope. Zero numbers, empty strings and empty collections
	// are present values and do not fall back. This is the default.
	MissOnFalsy MissPolicy = iota
	// MissOnNil treats only absent and nil values as misses.
	MissOnNil
)

// Getter is implemented by data that exposes members by name.
type Getter interface {
	Get(key string) (any, bool)
}

// Valuer is implemented by ordered collections. Foreach expansion uses
// Values in preference to reflection.
type Valuer interface {
	Values() []any
}

// Scope is one node of the lookup chain. It is not safe for concurrent use.
type Scope struct {
	current any
	parent  *Scope
	policy  MissPolicy
	cache   map[string]any
}

// Option configures a Scope.
type Option func(*Scope)

// WithMissPolicy sets the policy used by Find.
func WithMissPolicy(p MissPolicy) Option {
	return func(s *Scope) {
		s.policy = p
	}
}

// New creates a scope over data. parent may be nil for a root scope.
// A child inherits the parent's miss policy unless an option overrides it.
func New(data any, parent *Scope, opts ...Option) *Scope {
	s := &Scope{
		current: data,
		parent:  parent,
		cache:   make(map[string]any),
	}
	if parent != nil {
		s.policy = parent.policy
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Child creates a scope over data whose lookups fall back to s.
func (s *Scope) Child(data any) *Scope {
	return New(data, s)
}

// Current returns the data wrapped by this scope.
func (s *Scope) Current() any {
	return s.current
}

// Parent returns the enclosing scope, or nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Policy returns the miss policy of this scope.
func (s *Scope) Policy() MissPolicy {
	return s.policy
}

// Find resolves a dotted path. The boolean reports whether any scope in the
// chain resolved it.
func (s *Scope) Find(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	if v, ok := s.cache[path]; ok {
		return v, true
	}

	if v, ok := s.walk(path); ok {
		s.cache[path] = v
		return v, true
	}

	if s.parent != nil {
		return s.parent.Find(path)
	}
	return nil, false
}

// walk resolves path against this scope's data only. Partial results are
// discarded on the first miss.
func (s *Scope) walk(path string) (any, bool) {
	data := s.current
	for _, part := range strings.Split(path, ".") {
		next, ok := member(data, part)
		if !ok || s.isMiss(next) {
			return nil, false
		}
		data = next
	}
	return data, true
}

func (s *Scope) isMiss(v any) bool {
	if IsNil(v) {
		return true
	}
	if s.policy == MissOnFalsy {
		if b, ok := v.(bool); ok && !b {
			return true
		}
	}
	return false
}

// IsNil reports whether v is nil or a typed nil pointer, map, slice,
// interface, func or channel.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// member returns the value of key in data.
func member(data any, key string) (any, bool) {
	switch v := data.(type) {
	case nil:
		return nil, false
	case Getter:
		return v.Get(key)
	case map[string]any:
		val, ok := v[key]
		return val, ok
	case map[string]string:
		val, ok := v[key]
		return val, ok
	}

	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		val := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, false
		}
		return val.Interface(), true
	case reflect.Struct:
		return structField(rv, key)
	}
	return nil, false
}

// structField matches key against the json tag, the field name and finally
// the field name ignoring case. Unexported fields are never visible.
func structField(rv reflect.Value, key string) (any, bool) {
	t := rv.Type()
	fold := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag == key {
			return rv.Field(i).Interface(), true
		}
		if f.Name == key {
			return rv.Field(i).Interface(), true
		}
		if fold < 0 && strings.EqualFold(f.Name, key) {
			fold = i
		}
	}
	if fold >= 0 {
		return rv.Field(fold).Interface(), true
	}
	return nil, false
}
