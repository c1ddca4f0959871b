package events

import (
	"context"
	"sync"
)

// MockPublisher records published events for assertions in tests.
type MockPublisher struct {
	mu        sync.Mutex
	Err       error
	Published []PublishedEvent
}

// PublishedEvent is one recorded Publish call.
type PublishedEvent struct {
	Subject string
	Event   any
}

func (m *MockPublisher) Publish(_ context.Context, subject string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Published = append(m.Published, PublishedEvent{Subject: subject, Event: event})
	return nil
}

func (m *MockPublisher) Close() {}

// Count returns the number of recorded events for a subject.
func (m *MockPublisher) Count(subject string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Published {
		if e.Subject == subject {
			n++
		}
	}
	return n
}
