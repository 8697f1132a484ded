package entity

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// KeyGenerator produces primary key values for rows inserted through a Base
// configured with WithKey. Keys come back in their canonical text form so
// they inline as quoted literals.
type KeyGenerator interface {
	NewKey() (string, error)
}

// KeyFunc adapts a plain function to KeyGenerator.
type KeyFunc func() (string, error)

func (f KeyFunc) NewKey() (string, error) { return f() }

// UUIDKeys generates random (version 4) UUIDs.
var UUIDKeys KeyGenerator = KeyFunc(func() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("entity: uuid key: %w", err)
	}
	return id.String(), nil
})

// ULIDKeys issues ULIDs that sort in creation order, including keys created
// within the same millisecond. It is safe for concurrent use.
type ULIDKeys struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

func NewULIDKeys() *ULIDKeys {
	return &ULIDKeys{entropy: ulid.Monotonic(rand.Reader, 0), now: time.Now}
}

func (g *ULIDKeys) NewKey() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return "", fmt.Errorf("entity: ulid key: %w", err)
	}
	return id.String(), nil
}
