package mocks

import (
	"context"
	"io"
	"sync"

	"github.com/you/staysvc/domain"
)

// MockPasswordService implements domain.PasswordService with a reversible "hash"
type MockPasswordService struct {
	HashFunc   func(password string) (string, error)
	VerifyFunc func(hashedPassword, password string) bool
}

func NewMockPasswordService() *MockPasswordService {
	return &MockPasswordService{}
}

func (m *MockPasswordService) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *MockPasswordService) Verify(hashedPassword, password string) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(hashedPassword, password)
	}
	return hashedPassword == "hashed_"+password
}

// MockOwnershipPolicy implements domain.OwnershipPolicy interface for testing
type MockOwnershipPolicy struct {
	AllowedFunc func(subject, owner, resource, action string) (bool, error)
}

// NewMockOwnershipPolicy creates a policy that allows owners only
func NewMockOwnershipPolicy() *MockOwnershipPolicy {
	return &MockOwnershipPolicy{}
}

func (m *MockOwnershipPolicy) Allowed(subject, owner, resource, action string) (bool, error) {
	if m.AllowedFunc != nil {
		return m.AllowedFunc(subject, owner, resource, action)
	}
	return subject != "" && subject == owner, nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	PublishFunc func(ctx context.Context, event *domain.Event) error

	mu     sync.Mutex
	Events []*domain.Event
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, event *domain.Event) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	return nil
}

// Types returns the types of the recorded events in publish order
func (m *MockEventPublisher) Types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]domain.EventType, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.Type)
	}
	return types
}

// MockImageStore implements domain.ImageStore interface for testing
type MockImageStore struct {
	PutFunc func(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error)
}

func (m *MockImageStore) Put(ctx context.Context, key, contentType string, size int64, r io.Reader) (string, error) {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, contentType, size, r)
	}
	return "https://images.example.com/" + key, nil
}

// MockBookingExporter implements domain.BookingExporter interface for testing
type MockBookingExporter struct {
	ExportFunc func(w io.Writer, bookings []domain.BookingView) error
}

func (m *MockBookingExporter) Export(w io.Writer, bookings []domain.BookingView) error {
	if m.ExportFunc != nil {
		return m.ExportFunc(w, bookings)
	}
	_, err := io.WriteString(w, "exported")
	return err
}

func (m *MockBookingExporter) ContentType() string   { return "text/plain" }
func (m *MockBookingExporter) FileExtension() string { return "txt" }

// Compile-time interface compliance verification
var (
	_ domain.PasswordService = (*MockPasswordService)(nil)
	_ domain.OwnershipPolicy = (*MockOwnershipPolicy)(nil)
	_ domain.EventPublisher  = (*MockEventPublisher)(nil)
	_ domain.ImageStore      = (*MockImageStore)(nil)
	_ domain.BookingExporter = (*MockBookingExporter)(nil)
)
