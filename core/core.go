package core

import "github.com/google/uuid"

// NewID generates a new unique identifier.
//
// Used for call identifiers on outbound calls and for audio artifact
// filenames. Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }
