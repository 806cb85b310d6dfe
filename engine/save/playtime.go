package save

import (
	"sync"
	"time"
)

// Playtime counts seconds of play while running. It is safe for concurrent
// use.
type Playtime struct {
	mu      sync.Mutex
	seconds int64
	stop    chan struct{}
}

// Start begins counting once per second. It is a no-op if already running.
func (p *Playtime) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				p.tick()
			}
		}
	}()
}

// Stop pauses the counter.
func (p *Playtime) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// Running reports whether the counter is ticking.
func (p *Playtime) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

func (p *Playtime) Seconds() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seconds
}

// Set replaces the count, e.g. after loading a save.
func (p *Playtime) Set(seconds int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seconds = max(seconds, 0)
}

func (p *Playtime) tick() {
	p.mu.Lock()
	p.seconds++
	p.mu.Unlock()
}
