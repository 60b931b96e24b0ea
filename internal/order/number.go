package order

import (
	"strings"

	"github.com/google/uuid"
)

// NumberGenerator returns a candidate human-facing order number. Collisions
// are detected by storage and retried.
type NumberGenerator func() string

// UUIDNumber returns the first 8 hex characters of a random UUID, upper-cased.
func UUIDNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
