package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/you/staysvc/domain"
)

const minPasswordLength = 6

// IdentityServiceImpl implements domain.IdentityService
type IdentityServiceImpl struct {
	accounts    domain.AccountRepository
	passwordSvc domain.PasswordService
	tokenSvc    domain.TokenService
	events      domain.EventPublisher
	now         func() time.Time
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	accounts domain.AccountRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	events domain.EventPublisher,
) domain.IdentityService {
	return &IdentityServiceImpl{
		accounts:    accounts,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		events:      events,
		now:         time.Now,
	}
}

// Register implements domain.IdentityService
func (s *IdentityServiceImpl) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	switch {
	case name == "":
		return nil, domain.NewValidationError("name is required")
	case email == "":
		return nil, domain.NewValidationError("email is required")
	case len(password) < minPasswordLength:
		return nil, domain.NewValidationError("password must be at least %d characters", minPasswordLength)
	}

	key := domain.NormalizeEmail(email)
	existing, err := s.accounts.FindByEmailKey(ctx, key)
	if err == nil && existing != nil {
		return nil, domain.ErrDuplicateAccount
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	hashed, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		EmailKey:     key,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		// a concurrent registration may win the unique index
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.issue(account, now)
	if err != nil {
		return nil, err
	}

	log.Printf("ACCOUNT_REGISTERED: id=%s", account.ID)
	publish(ctx, s.events, domain.NewEvent(domain.AccountRegisteredEvent, account.ID, account.ID, now))

	return &domain.AuthResult{Token: token, Account: account}, nil
}

// Authenticate implements domain.IdentityService.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *IdentityServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	account, err := s.accounts.FindByEmailKey(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Printf("LOGIN_LOOKUP_FAILED: error=%v", err)
		}
		return nil, domain.ErrInvalidCredentials
	}

	if !s.passwordSvc.Verify(account.PasswordHash, password) {
		log.Printf("LOGIN_FAILED: account=%s", account.ID)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issue(account, s.now())
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: token, Account: account}, nil
}

// Resolve implements domain.IdentityService
func (s *IdentityServiceImpl) Resolve(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, accountID)
}

func (s *IdentityServiceImpl) issue(account *domain.Account, now time.Time) (string, error) {
	token, err := s.tokenSvc.Issue(domain.Identity{AccountID: account.ID, Email: account.Email}, now)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}
