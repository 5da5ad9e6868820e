package docmark

import (
	"errors"
	"fmt"

	"github.com/benjaminschreck/go-docmark/pkg/docmark/directive"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/eval"
	"github.com/benjaminschreck/go-docmark/pkg/docmark/render"
)

// Core error types, re-exported so callers only need this package.
type (
	SyntaxError            = directive.SyntaxError
	UndefinedFunctionError = eval.UndefinedFunctionError
	FunctionError          = eval.FunctionError
	CommentError           = eval.CommentError
	MalformedDocumentError = render.MalformedDocumentError
)

var (
	// ErrTemplateClosed is returned when a template is used after Save,
	// SaveAs or Close.
	ErrTemplateClosed = errors.New("template is closed")
	// ErrNoDocument is the cause of a PackageError when the package has no
	// officeDocument relationship.
	ErrNoDocument = errors.New("no main document found in package")
	// ErrNoComments is the cause of a PackageError when the main document
	// has no comments part.
	ErrNoComments = errors.New("no comments found in template")
)

// PackageError represents a failure reading or writing the .docx package.
type PackageError struct {
	Operation string
	Part      string
	Cause     error
}

func (e *PackageError) Error() string {
	if e.Part != "" && e.Cause != nil {
		return fmt.Sprintf("package error during %s of '%s': %v", e.Operation, e.Part, e.Cause)
	} else if e.Part != "" {
		return fmt.Sprintf("package error during %s of '%s'", e.Operation, e.Part)
	} else if e.Cause != nil {
		return fmt.Sprintf("package error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("package error during %s", e.Operation)
}

func (e *PackageError) Unwrap() error {
	return e.Cause
}

// NewPackageError creates a new package error
func NewPackageError(operation, part string, cause error) error {
	return &PackageError{
		Operation: operation,
		Part:      part,
		Cause:     cause,
	}
}

// IsPackageError checks if an error is or wraps a package error
func IsPackageError(err error) bool {
	var target *PackageError
	return errors.As(err, &target)
}

// IsSyntaxError checks if an error is or wraps a directive syntax error
func IsSyntaxError(err error) bool {
	var target *SyntaxError
	return errors.As(err, &target)
}

// IsUndefinedFunctionError checks if an error is or wraps an undefined function error
func IsUndefinedFunctionError(err error) bool {
	var target *UndefinedFunctionError
	return errors.As(err, &target)
}

// IsFunctionError checks if an error is or wraps a function error
func IsFunctionError(err error) bool {
	var target *FunctionError
	return errors.As(err, &target)
}

// IsMalformedDocumentError checks if an error is or wraps a malformed document error
func IsMalformedDocumentError(err error) bool {
	var target *MalformedDocumentError
	return errors.As(err, &target)
}
