package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalCounter tracks repeated shutdown signals: first signal starts
// graceful shutdown, reaching the threshold triggers the force callback.
type SignalCounter struct {
	mu         sync.Mutex
	count      int
	forceAfter int
	onForce    func()
}

// NewSignalCounter creates a SignalCounter that invokes onForce when
// the count reaches forceAfter (typically 2). onForce may be nil.
func NewSignalCounter(forceAfter int, onForce func()) *SignalCounter {
	return &SignalCounter{forceAfter: forceAfter, onForce: onForce}
}

// Increment increases the signal count and returns the new value. The
// force callback runs while holding the lock, so it should be fast or
// exit the process.
func (s *SignalCounter) Increment() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if s.count >= s.forceAfter && s.onForce != nil {
		s.onForce()
	}
	return s.count
}

// Count returns the current signal count.
func (s *SignalCounter) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Wait blocks until SIGINT or SIGTERM arrives, then returns. Further
// signals increment the counter; the second one invokes onForce
// (usually os.Exit). Signal notification stays installed so the force
// path keeps working while graceful shutdown runs.
func Wait(onForce func()) {
	counter := NewSignalCounter(2, onForce)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	<-sigCh
	counter.Increment()

	go func() {
		for range sigCh {
			counter.Increment()
		}
	}()
}
