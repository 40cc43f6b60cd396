// Package connectivity reports network reachability as a stream of state
// changes.
package connectivity

import (
	"context"
	"sync"
)

type Source interface {
	// Subscribe returns a channel that receives the new state after every
	// change. A slow reader only ever sees the latest state.
	Subscribe() <-chan bool
	IsConnected() bool
}

type Prober interface {
	Source
	// Probe checks reachability now, publishes a change if there was one,
	// and returns the current state.
	Probe(ctx context.Context) bool
}

type broadcaster struct {
	mu          sync.RWMutex
	connected   bool
	subscribers []chan bool
}

func (b *broadcaster) Subscribe() <-chan bool {
	ch := make(chan bool, 1)
	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()
	return ch
}

func (b *broadcaster) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.connected
}

// publish records state and returns true when it differs from the previous one.
func (b *broadcaster) publish(state bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.connected == state {
		return false
	}
	b.connected = state

	for _, ch := range b.subscribers {
		// drop a stale unread value so the newest state always fits
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
	return true
}

// Manual is a Source whose state is set by the caller, for example from an
// HTTP endpoint or a test.
type Manual struct {
	broadcaster
}

func NewManual(initial bool) *Manual {
	m := &Manual{}
	m.connected = initial
	return m
}

func (m *Manual) Set(connected bool) {
	m.publish(connected)
}

func (m *Manual) Probe(_ context.Context) bool {
	return m.IsConnected()
}
