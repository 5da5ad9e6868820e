package docmark

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/benjaminschreck/go-docmark/pkg/docmark/eval"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/render"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/scope"
)

// Function is a callable that comment directives can invoke by name.
type Function = eval.Function

// FunctionFunc adapts an ordinary function to Function.
type FunctionFunc = eval.FunctionFunc

// SimpleFunction checks the argument count before calling its handler.
type SimpleFunction struct {
	name    string
	minArgs int
	maxArgs int
	handler func(args ...any) (any, error)
}

// NewSimpleFunction wraps handler. maxArgs of -1 means unlimited.
func NewSimpleFunction(name string, minArgs, maxArgs int, handler func(args ...any) (any, error)) *SimpleFunction {
	return &SimpleFunction{
		name:    name,
		minArgs: minArgs,
		maxArgs: maxArgs,
		handler: handler,
	}
}

func (f *SimpleFunction) Call(args ...any) (any, error) {
	argCount := len(args)
	if argCount < f.minArgs {
		return nil, fmt.Errorf("function %s requires at least %d arguments, got %d", f.name, f.minArgs, argCount)
	}
	if f.maxArgs >= 0 && argCount > f.maxArgs {
		return nil, fmt.Errorf("function %s accepts at most %d arguments, got %d", f.name, f.maxArgs, argCount)
	}
	return f.handler(args...)
}

func (f *SimpleFunction) Name() string {
	return f.name
}

func (f *SimpleFunction) MinArgs() int {
	return f.minArgs
}

func (f *SimpleFunction) MaxArgs() int {
	return f.maxArgs
}

// BuiltinFunctions returns a fresh map of the built-in functions.
func BuiltinFunctions() map[string]Function {
	fns := []*SimpleFunction{
		NewSimpleFunction("str", 1, 1, func(args ...any) (any, error) {
			return render.FormatValue(args[0]), nil
		}),
		NewSimpleFunction("lowercase", 1, 1, func(args ...any) (any, error) {
			if args[0] == nil {
				return nil, nil
			}
			return strings.ToLower(render.FormatValue(args[0])), nil
		}),
		NewSimpleFunction("uppercase", 1, 1, func(args ...any) (any, error) {
			if args[0] == nil {
				return nil, nil
			}
			return strings.ToUpper(render.FormatValue(args[0])), nil
		}),
		NewSimpleFunction("titlecase", 1, 2, func(args ...any) (any, error) {
			if args[0] == nil {
				return nil, nil
			}
			tag, err := localeArg(args, 1)
			if err != nil {
				return nil, err
			}
			return cases.Title(tag).String(render.FormatValue(args[0])), nil
		}),
		NewSimpleFunction("join", 1, 2, func(args ...any) (any, error) {
			if args[0] == nil {
				return "", nil
			}
			items, err := toSlice(args[0])
			if err != nil {
				return nil, fmt.Errorf("first parameter must be a collection")
			}
			separator := ""
			if len(args) > 1 && args[1] != nil {
				sep, ok := args[1].(string)
				if !ok {
					return nil, fmt.Errorf("second parameter must be a string")
				}
				separator = sep
			}
			var parts []string
			for _, item := range items {
				if item != nil {
					parts = append(parts, render.FormatValue(item))
				}
			}
			return strings.Join(parts, separator), nil
		}),
		NewSimpleFunction("replace", 3, 3, func(args ...any) (any, error) {
			text := render.FormatValue(args[0])
			if args[1] == nil {
				return text, nil
			}
			return strings.ReplaceAll(text, render.FormatValue(args[1]), render.FormatValue(args[2])), nil
		}),
		NewSimpleFunction("length", 1, 1, func(args ...any) (any, error) {
			switch v := args[0].(type) {
			case nil:
				return 0, nil
			case string:
				return len([]rune(v)), nil
			}
			if items, err := toSlice(args[0]); err == nil {
				return len(items), nil
			}
			return len([]rune(render.FormatValue(args[0]))), nil
		}),
		NewSimpleFunction("coalesce", 1, -1, func(args ...any) (any, error) {
			for _, arg := range args {
				if !isEmpty(arg) {
					return arg, nil
				}
			}
			return nil, nil
		}),
		NewSimpleFunction("empty", 1, 1, func(args ...any) (any, error) {
			return isEmpty(args[0]), nil
		}),
		NewSimpleFunction("round", 1, 1, func(args ...any) (any, error) {
			return mathApply(args[0], math.Round)
		}),
		NewSimpleFunction("floor", 1, 1, func(args ...any) (any, error) {
			return mathApply(args[0], math.Floor)
		}),
		NewSimpleFunction("ceil", 1, 1, func(args ...any) (any, error) {
			return mathApply(args[0], math.Ceil)
		}),
		NewSimpleFunction("sum", 1, 1, func(args ...any) (any, error) {
			return sumList(args[0])
		}),
		NewSimpleFunction("date", 2, 2, formatDate),
		NewSimpleFunction("number", 1, 3, formatNumber),
		NewSimpleFunction("currency", 1, 3, formatCurrency),
		NewSimpleFunction("percent", 1, 3, formatPercent),
	}

	out := make(map[string]Function, len(fns))
	for _, fn := range fns {
		out[fn.Name()] = fn
	}
	return out
}

// isEmpty checks if a value is considered empty
func isEmpty(val any) bool {
	if scope.IsNil(val) {
		return true
	}

	switch v := val.(type) {
	case bool:
		return !v
	case string:
		return v == ""
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		n, _ := toNumber(v)
		return n == 0
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	if o, ok := val.(*scope.OrderedMap); ok {
		return o.Len() == 0
	}
	return false
}

// toSlice returns the elements of a list-like value.
func toSlice(val any) ([]any, error) {
	if v, ok := val.(scope.Valuer); ok {
		return v.Values(), nil
	}
	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list, got %T", val)
}

// toNumber converts numbers and numeric strings to float64.
func toNumber(val any) (float64, error) {
	switch v := val.(type) {
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to number", v)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("cannot convert nil to number")
	default:
		return 0, fmt.Errorf("cannot convert %T to number", val)
	}
}

func isFloat(val any) bool {
	switch v := val.(type) {
	case float32, float64:
		return true
	case string:
		return strings.Contains(v, ".")
	}
	return false
}

func mathApply(val any, op func(float64) float64) (any, error) {
	if val == nil {
		return nil, nil
	}
	num, err := toNumber(val)
	if err != nil {
		return nil, err
	}
	return int64(op(num)), nil
}

// sumList sums all numbers in a list. The result is an int64 unless a
// float took part.
func sumList(val any) (any, error) {
	if val == nil {
		return int64(0), nil
	}
	if _, ok := val.(string); ok {
		return nil, fmt.Errorf("sum() requires a list, got %T", val)
	}
	items, err := toSlice(val)
	if err != nil {
		return nil, fmt.Errorf("sum() requires a list, got %T", val)
	}

	var sum float64
	hasFloat := false
	for _, item := range items {
		if item == nil {
			continue
		}
		num, err := toNumber(item)
		if err != nil {
			return nil, fmt.Errorf("sum() cannot convert item %v to number: %w", item, err)
		}
		sum += num
		hasFloat = hasFloat || isFloat(item)
	}

	if !hasFloat && sum == math.Trunc(sum) {
		return int64(sum), nil
	}
	return sum, nil
}

// localeArg reads an optional BCP 47 locale argument.
func localeArg(args []any, i int) (language.Tag, error) {
	if len(args) <= i || args[i] == nil {
		return language.English, nil
	}
	s, ok := args[i].(string)
	if !ok {
		return language.Und, fmt.Errorf("locale must be a string, got %T", args[i])
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", s, err)
	}
	return tag, nil
}

// intArg reads an optional integer argument.
func intArg(args []any, i int, def int) (int, error) {
	if len(args) <= i || args[i] == nil {
		return def, nil
	}
	n, err := toNumber(args[i])
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
