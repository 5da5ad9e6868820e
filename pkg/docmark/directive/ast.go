package directive

import (
	"strconv"
	"strings"
)

// Kind identifies the variant of a Directive.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindKey
	KindForeach
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindKey:
		return "key"
	case KindForeach:
		return "foreach"
	case KindCall:
		return "call"
	default:
		return "unknown"
	}
}

// Directive is a parsed comment. Values are immutable once returned by Parse.
type Directive interface {
	Kind() Kind
	// String returns the canonical source form of the directive.
	String() string
}

// Empty renders as an empty string.
type Empty struct{}

// Number is a numeric literal. Int holds the value unless IsFloat is set.
type Number struct {
	Int     int64
	Float   float64
	IsFloat bool
}

// Value returns the literal as int64 or float64.
func (n Number) Value() any {
	if n.IsFloat {
		return n.Float
	}
	return n.Int
}

// Text is a string literal.
type Text struct {
	Value string
}

// Key looks up a dotted path in the current scope.
type Key struct {
	Path string
}

// Foreach marks the value at Path as a collection to repeat over.
type Foreach struct {
	Path string
}

// Call invokes the function Name with the evaluated Args.
type Call struct {
	Name string
	Args []Directive
}

func (Empty) Kind() Kind   { return KindEmpty }
func (Number) Kind() Kind  { return KindNumber }
func (Text) Kind() Kind    { return KindText }
func (Key) Kind() Kind     { return KindKey }
func (Foreach) Kind() Kind { return KindForeach }
func (Call) Kind() Kind    { return KindCall }

func (Empty) String() string { return "" }

func (n Number) String() string {
	if n.IsFloat {
		s := strconv.FormatFloat(n.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatInt(n.Int, 10)
}

func (t Text) String() string {
	return "'" + strings.ReplaceAll(t.Value, "'", `\'`) + "'"
}

func (k Key) String() string { return k.Path }

func (f Foreach) String() string { return f.Path + "[]" }

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = arg.String()
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}
