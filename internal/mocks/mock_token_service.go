package mocks

import (
	"strings"
	"time"

	"github.com/you/staysvc/domain"
)

// MockTokenService implements domain.TokenService interface for testing
type MockTokenService struct {
	IssueFunc  func(identity domain.Identity, now time.Time) (string, error)
	VerifyFunc func(token string, now time.Time) (*domain.Identity, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

// Issue returns "token_<account id>" by default
func (m *MockTokenService) Issue(identity domain.Identity, now time.Time) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(identity, now)
	}
	return "token_" + identity.AccountID, nil
}

// Verify accepts tokens produced by the default Issue
func (m *MockTokenService) Verify(token string, now time.Time) (*domain.Identity, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(token, now)
	}
	if id, ok := strings.CutPrefix(token, "token_"); ok && id != "" {
		return &domain.Identity{AccountID: id}, nil
	}
	return nil, domain.ErrInvalidToken
}

// Compile-time interface compliance verification
var _ domain.TokenService = (*MockTokenService)(nil)
