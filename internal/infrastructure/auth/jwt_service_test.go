package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/staysvc/domain"
)

func TestJWTService_IssueAndVerify(t *testing.T) {
	svc := NewJWTService("test-secret", "staysvc", 7*24*time.Hour)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := svc.Issue(domain.Identity{AccountID: "acc-1", Email: "sarah@example.com"}, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.Verify(token, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "acc-1", identity.AccountID)
	assert.Equal(t, "sarah@example.com", identity.Email)

	// still valid just before the seven day window closes
	_, err = svc.Verify(token, now.Add(7*24*time.Hour-time.Second))
	assert.NoError(t, err)
}

func TestJWTService_IssueUniqueTokens(t *testing.T) {
	svc := NewJWTService("test-secret", "staysvc", time.Hour)
	now := time.Now()
	id := domain.Identity{AccountID: "acc-1", Email: "a@example.com"}

	a, err := svc.Issue(id, now)
	require.NoError(t, err)
	b, err := svc.Issue(id, now)
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "jti should make tokens issued in the same second distinct")
}

func TestJWTService_VerifyFailures(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewJWTService("test-secret", "staysvc", time.Hour)
	valid, err := svc.Issue(domain.Identity{AccountID: "acc-1", Email: "a@example.com"}, now)
	require.NoError(t, err)

	otherSecret, err := NewJWTService("other-secret", "staysvc", time.Hour).
		Issue(domain.Identity{AccountID: "acc-1"}, now)
	require.NoError(t, err)

	otherIssuer, err := NewJWTService("test-secret", "someone-else", time.Hour).
		Issue(domain.Identity{AccountID: "acc-1"}, now)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"account_id": "acc-1",
		"iss":        "staysvc",
		"exp":        now.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "staysvc",
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"account_id": "acc-1",
		"iss":        "staysvc",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		at          time.Time
		expectedErr error
	}{
		{name: "expired", token: valid, at: now.Add(2 * time.Hour), expectedErr: domain.ErrTokenExpired},
		{name: "garbage", token: "not-a-jwt", at: now, expectedErr: domain.ErrTokenMalformed},
		{name: "empty", token: "", at: now, expectedErr: domain.ErrInvalidToken},
		{name: "wrong secret", token: otherSecret, at: now, expectedErr: domain.ErrInvalidToken},
		{name: "wrong issuer", token: otherIssuer, at: now, expectedErr: domain.ErrInvalidToken},
		{name: "none algorithm", token: noneAlg, at: now, expectedErr: domain.ErrInvalidToken},
		{name: "missing account id", token: noSubject, at: now, expectedErr: domain.ErrTokenMalformed},
		{name: "missing expiry", token: noExpiry, at: now, expectedErr: domain.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.Verify(tt.token, tt.at)
			assert.Nil(t, identity)
			assert.True(t, errors.Is(err, tt.expectedErr), "expected %v, got %v", tt.expectedErr, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidToken), "every verification failure is an invalid token")
		})
	}
}
