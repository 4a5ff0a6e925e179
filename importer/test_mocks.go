/* test_mocks.go
 * Contains mock structures for testing the importer package
 */

package importer

import (
	"context"
	"sync"
)

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	mu sync.Mutex
	// Messages stores every message sent during tests
	Messages []string
	// ErrorToReturn allows tests to simulate delivery failures
	ErrorToReturn error
}

// Send implements Notifier.Send
func (m *MockNotifier) Send(_ context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ErrorToReturn != nil {
		return m.ErrorToReturn
	}
	m.Messages = append(m.Messages, message)
	return nil
}

// LastMessage returns the last message sent, or "" if none
func (m *MockNotifier) LastMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return ""
	}
	return m.Messages[len(m.Messages)-1]
}

var _ Notifier = (*MockNotifier)(nil)
