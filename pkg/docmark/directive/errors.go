package directive

import "fmt"

// SyntaxError reports malformed directive text.
type SyntaxError struct {
	Message string
	// Raw is the comment text as it was handed to Parse.
	Raw string
	// Position is the byte offset of the offending character in the trimmed
	// input, or -1 when the error is not tied to a single character.
	Position int
}

func (e *SyntaxError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("syntax error at position %d in %q: %s", e.Position, e.Raw, e.Message)
	}
	return fmt.Sprintf("syntax error in %q: %s", e.Raw, e.Message)
}

// IsSyntaxError checks if an error is a syntax error
func IsSyntaxError(err error) bool {
	_, ok := err.(*SyntaxError)
	return ok
}
