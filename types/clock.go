package types

import (
	tmtime "github.com/tendermint/tendermint/types/time"
	"sync"
)

// IClock is the single time source shared by all controllers.
// The returned value is unix seconds.
type IClock interface {
	Now() int64
}

type SystemClock struct{}

func (SystemClock) Now() int64 {
	return tmtime.Now().Unix()
}

// ManualClock is a clock whose time only moves when it is told to.
type ManualClock struct {
	now int64
	mtx sync.RWMutex
}

func NewManualClock(now int64) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() int64 {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	return c.now
}

func (c *ManualClock) Set(now int64) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.now = now
}

func (c *ManualClock) Advance(secs int64) int64 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	c.now += secs
	return c.now
}

var _ IClock = SystemClock{}
var _ IClock = (*ManualClock)(nil)
