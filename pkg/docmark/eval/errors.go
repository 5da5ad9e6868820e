package eval

import (
	"fmt"
	"strings"
)

// UndefinedFunctionError reports a call to a function name that was never
// registered.
type UndefinedFunctionError struct {
	Name string
}

func (e *UndefinedFunctionError) Error() string {
	return fmt.Sprintf("undefined function: %s", e.Name)
}

// FunctionError represents an error returned by a template function
type FunctionError struct {
	Function string
	Args     []any
	Cause    error
}

func (e *FunctionError) Error() string {
	argsStr := make([]string, len(e.Args))
	for i, arg := range e.Args {
		argsStr[i] = fmt.Sprintf("%v", arg)
	}
	return fmt.Sprintf("function error in '%s(%s)': %v", e.Function, strings.Join(argsStr, ", "), e.Cause)
}

func (e *FunctionError) Unwrap() error {
	return e.Cause
}

// CommentError ties a failure to the comment it came from.
type CommentError struct {
	ID    string
	Cause error
}

func (e *CommentError) Error() string {
	return fmt.Sprintf("comment %s: %v", e.ID, e.Cause)
}

func (e *CommentError) Unwrap() error {
	return e.Cause
}
