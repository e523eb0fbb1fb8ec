package store

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a ULID for the current instant.
func NewID() string {
	return NewIDAt(time.Now())
}

// NewIDAt returns a ULID whose timestamp is t. IDs minted within the same
// millisecond stay ordered.
func NewIDAt(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewRunID returns prefix-<ulid>, lower-cased so it reads well in logs.
func NewRunID(prefix string) string {
	id := strings.ToLower(NewID())
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
