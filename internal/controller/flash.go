package controller

import (
	"sync"
	"time"
)

// DefaultFlashTTL is how long a success message stays visible.
const DefaultFlashTTL = 3 * time.Second

// Flash is a message that clears itself after a fixed delay.
type Flash struct {
	mu     sync.Mutex
	ttl    time.Duration
	msg    string
	seq    uint64
	timer  *time.Timer
	closed bool
}

func NewFlash(ttl time.Duration) *Flash {
	if ttl <= 0 {
		ttl = DefaultFlashTTL
	}
	return &Flash{ttl: ttl}
}

// Set shows msg and restarts the clear timer.
func (f *Flash) Set(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.seq++
	seq := f.seq
	f.msg = msg
	f.timer = time.AfterFunc(f.ttl, func() {
		f.mu.Lock()
		// a newer message owns the slot
		if f.seq == seq {
			f.msg = ""
		}
		f.mu.Unlock()
	})
}

func (f *Flash) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.msg
}

func (f *Flash) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.msg = ""
	if f.timer != nil {
		f.timer.Stop()
	}
}

// Stop cancels the pending clear. Later Sets are ignored.
func (f *Flash) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
	}
}
