package loader

import "fmt"

// ProcessingError reports a failed processor callback. Cancellations are
// never wrapped in it.
type ProcessingError struct {
	LayerID string
	Err     error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing failed for layer %s: %v", e.LayerID, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}
