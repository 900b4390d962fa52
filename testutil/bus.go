package testutil

import (
	"context"
	"fmt"
	"sync"
)

// Bus is a simple in-memory edit bus for testing. It matches the
// natsclient.Client surface for Publish/Subscribe and delivers messages
// synchronously, which keeps adapter tests deterministic.
type Bus struct {
	mu            sync.RWMutex
	messages      map[string][][]byte
	subscriptions map[string][]func(context.Context, []byte)
	closed        bool
}

// NewBus creates an empty in-memory bus.
func NewBus() *Bus {
	return &Bus{
		messages:      make(map[string][][]byte),
		subscriptions: make(map[string][]func(context.Context, []byte)),
	}
}

// Publish records the message and delivers it to current subscribers.
func (b *Bus) Publish(ctx context.Context, subject string, data []byte) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("bus is closed")
	}
	b.messages[subject] = append(b.messages[subject], data)

	// Copy handlers so callbacks run outside the lock.
	handlers := make([]func(context.Context, []byte), len(b.subscriptions[subject]))
	copy(handlers, b.subscriptions[subject])
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, data)
	}
	return nil
}

// Subscribe registers a handler for a subject.
func (b *Bus) Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("bus is closed")
	}
	b.subscriptions[subject] = append(b.subscriptions[subject], handler)
	return nil
}

// Messages returns a copy of all messages published on a subject.
func (b *Bus) Messages(subject string) [][]byte {
	b.mu.RLock()
	defer b.mu.RUnlock()

	msgs := b.messages[subject]
	out := make([][]byte, len(msgs))
	copy(out, msgs)
	return out
}

// MessageCount returns the number of messages published on a subject.
func (b *Bus) MessageCount(subject string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.messages[subject])
}

// Clear discards all recorded messages.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = make(map[string][][]byte)
}

// Close closes the bus; further publishes and subscribes fail.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
