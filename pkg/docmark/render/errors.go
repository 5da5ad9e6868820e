package render

import (
	"errors"
	"fmt"
)

// MalformedDocumentError reports comment markers that cannot be rendered:
// a start without an end, an end without a start, a duplicated id, ranges
// that overlap, or repetitions nested too deeply.
type MalformedDocumentError struct {
	ID      string
	Message string
}

func (e *MalformedDocumentError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("malformed document: %s", e.Message)
	}
	return fmt.Sprintf("malformed document: comment %s: %s", e.ID, e.Message)
}

// IsMalformedDocumentError reports whether err is or wraps a
// MalformedDocumentError.
func IsMalformedDocumentError(err error) bool {
	var me *MalformedDocumentError
	return errors.As(err, &me)
}
