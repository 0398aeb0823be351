package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Falls back to v4 if v7 fails
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID       ID
	VariableKey ID
)

func (id RunID) String() string       { return ID(id).String() }
func (id VariableKey) String() string { return ID(id).String() }

// NewRunID creates an identifier for a single analysis run
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseVariableKey normalizes a column header into a VariableKey
func ParseVariableKey(s string) (VariableKey, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", fmt.Errorf("variable key cannot be empty")
	}
	return VariableKey(key), nil
}

// Keys converts plain strings into variable keys without normalization.
func Keys(names ...string) []VariableKey {
	keys := make([]VariableKey, len(names))
	for i, name := range names {
		keys[i] = VariableKey(name)
	}
	return keys
}
