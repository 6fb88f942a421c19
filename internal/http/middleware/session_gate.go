package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/staysvc/domain"
)

const identityKey = "identity"

type identityCtxKey struct{}

// SessionGate admits requests carrying a valid bearer session token
type SessionGate struct {
	tokenSvc domain.TokenService
	now      func() time.Time
}

// NewSessionGate creates a gate that verifies tokens against the wall clock
func NewSessionGate(tokenSvc domain.TokenService) *SessionGate {
	return &SessionGate{tokenSvc: tokenSvc, now: time.Now}
}

// WithClock overrides the clock used to check token expiry
func (g *SessionGate) WithClock(now func() time.Time) *SessionGate {
	g.now = now
	return g
}

// Require rejects the request with 401 unless it carries a verifiable token
func (g *SessionGate) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := g.authenticate(c.GetHeader("Authorization"))
		if err != nil {
			kind := domain.KindOf(err)
			msg := domain.ErrInvalidToken.Error()
			if kind == domain.KindUnauthenticated {
				msg = err.Error()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": kind})
			return
		}

		c.Set(identityKey, *identity)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), identityCtxKey{}, *identity))
		c.Next()
	}
}

func (g *SessionGate) authenticate(header string) (*domain.Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, domain.ErrUnauthenticated
	}

	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return nil, domain.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	identity, err := g.tokenSvc.Verify(token, g.now())
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return identity, nil
}

// IdentityFrom returns the identity stored by the gate
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}

// IdentityFromContext returns the identity stored in a request context by the gate
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return identity, ok
}
