package extract

import "fmt"

// ValidationError represents a structurally impossible record. It names
// the document section the record came from.
type ValidationError struct {
	Section string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Section, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}
