package core

import (
	"time"

	"github.com/google/uuid"
)

// Clock provides the current time in epoch milliseconds. Injected so
// the save transaction and purge can be tested against a fixed time.
type Clock interface {
	NowMillis() int64
}

// IDGenerator produces collision-free opaque string identifiers for
// expense items and audit events.
type IDGenerator interface {
	NewID() string
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) NowMillis() int64 { return time.Now().UnixMilli() }

// UUIDGenerator issues random UUID strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
