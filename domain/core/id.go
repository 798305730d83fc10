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
	SubscriptionID ID
	ClientID       ID
)

// NewSubscriptionID returns a fresh observer subscription identifier
func NewSubscriptionID() SubscriptionID { return SubscriptionID(NewID()) }

// NewClientID returns a fresh identifier for a connected event-stream client
func NewClientID() ClientID { return ClientID(NewID()) }

// String conversions for domain IDs
func (id SubscriptionID) String() string { return ID(id).String() }
func (id ClientID) String() string       { return ID(id).String() }

// ParseSubscriptionID parses a string into SubscriptionID
func ParseSubscriptionID(s string) (SubscriptionID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("subscription ID cannot be empty")
	}
	return SubscriptionID(s), nil
}
