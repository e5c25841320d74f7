package game

import (
	"sync"
	"time"
)

// clock expires moving words at delay+duration when the server drives
// the animation. Each start bumps the generation so timers from an
// earlier round are ignored even if they already fired.
type clock struct {
	mu     sync.Mutex
	gen    int
	timers []*time.Timer
	fire   func(gen, index int)
}

func newClock(fire func(gen, index int)) *clock {
	return &clock{fire: fire}
}

func (c *clock) start(words []WordState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	gen := c.gen
	for i, w := range words {
		i := i
		c.timers = append(c.timers, time.AfterFunc(w.Animation.Delay+w.Animation.Duration, func() {
			c.fire(gen, i)
		}))
	}
}

func (c *clock) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *clock) stopLocked() {
	for _, t := range c.timers {
		t.Stop()
	}
	c.timers = nil
	c.gen++
}

func (c *clock) current(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}
