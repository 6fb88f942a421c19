package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/you/staysvc/domain"
	"github.com/you/staysvc/internal/infrastructure/auth"
	"github.com/you/staysvc/internal/mocks"
)

func newGatedRouter(gate *SessionGate) *gin.Engine {
	r := gin.New()
	r.GET("/private", gate.Require(), func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		fromCtx, ctxOK := IdentityFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"account_id": identity.AccountID,
			"email":      identity.Email,
			"found":      ok && ctxOK && fromCtx == identity,
		})
	})
	return r
}

func TestSessionGate_Require(t *testing.T) {
	gin.SetMode(gin.TestMode)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := auth.NewJWTService("test-secret", "staysvc", 7*24*time.Hour)
	valid, err := tokens.Issue(domain.Identity{AccountID: "account-1", Email: "sarah@example.com"}, now)
	require.NoError(t, err)
	foreign, err := auth.NewJWTService("other-secret", "staysvc", time.Hour).Issue(domain.Identity{AccountID: "account-1"}, now)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		at             time.Time
		expectedStatus int
		expectedCode   domain.ErrorKind
		expectedError  string
	}{
		{name: "valid token", header: "Bearer " + valid, at: now.Add(time.Hour), expectedStatus: http.StatusOK},
		{name: "lower case scheme", header: "bearer " + valid, at: now, expectedStatus: http.StatusOK},
		{name: "missing header", header: "", at: now, expectedStatus: http.StatusUnauthorized, expectedCode: domain.KindUnauthenticated, expectedError: "no token, authorization denied"},
		{name: "empty bearer", header: "Bearer   ", at: now, expectedStatus: http.StatusUnauthorized, expectedCode: domain.KindUnauthenticated},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", at: now, expectedStatus: http.StatusUnauthorized, expectedCode: domain.KindInvalidToken, expectedError: "token is not valid"},
		{name: "no scheme", header: valid, at: now, expectedStatus: http.StatusUnauthorized, expectedCode: domain.KindInvalidToken},
		{name: "garbage token", header: "Bearer not-a-jwt", at: now, expectedStatus: http.StatusUnauthorized, expectedCode: domain.KindInvalidToken, expectedError: "token is not valid"},
		{name: "foreign signature", header: "Bearer " + foreign, at: now, expectedStatus: http.StatusUnauthorized, expectedCode: domain.KindInvalidToken},
		{name: "expired token", header: "Bearer " + valid, at: now.Add(8 * 24 * time.Hour), expectedStatus: http.StatusUnauthorized, expectedCode: domain.KindInvalidToken, expectedError: "token is not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			gate := NewSessionGate(tokens).WithClock(func() time.Time { return at })
			router := newGatedRouter(gate)

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, "account-1", body["account_id"])
				assert.Equal(t, "sarah@example.com", body["email"])
				assert.Equal(t, true, body["found"])
				return
			}
			assert.Equal(t, string(tt.expectedCode), body["code"])
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			}
		})
	}
}

func TestSessionGate_PassesClockToVerifier(t *testing.T) {
	gin.SetMode(gin.TestMode)

	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	var seen time.Time
	tokens := mocks.NewMockTokenService()
	tokens.VerifyFunc = func(token string, now time.Time) (*domain.Identity, error) {
		seen = now
		return &domain.Identity{AccountID: "a1"}, nil
	}

	router := newGatedRouter(NewSessionGate(tokens).WithClock(func() time.Time { return fixed }))
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen.Equal(fixed))
}

func TestIdentityFrom_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := IdentityFrom(c)
	assert.False(t, ok)
}
