package graph

import (
	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// ID is an opaque knowledge-graph identifier: the base58 form of a random
// UUIDv4, 21 or 22 characters long.
type ID string

// GenerateID returns a fresh random ID.
func GenerateID() ID {
	u := uuid.New()
	return ID(base58.Encode(u[:]))
}

// ValidID reports whether s decodes to a 16 byte identifier.
func ValidID(s string) bool {
	if s == "" {
		return false
	}
	b, err := base58.Decode(s)
	return err == nil && len(b) == 16
}

func (id ID) String() string { return string(id) }
