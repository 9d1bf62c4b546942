package audio

import "fmt"

var (
	// ErrNotFound is returned when no audio exists for the given reference.
	ErrNotFound = fmt.Errorf("audio not found")
)
