package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService_HashAndVerify(t *testing.T) {
	svc := NewPasswordService(bcrypt.MinCost)

	hash, err := svc.Hash("secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "secret123" || !strings.HasPrefix(hash, "$2a$") {
		t.Errorf("expected a bcrypt hash, got %q", hash)
	}
	if !svc.Verify(hash, "secret123") {
		t.Error("expected matching password to verify")
	}
	if svc.Verify(hash, "Secret123") {
		t.Error("expected different password to fail")
	}
	if svc.Verify("not-a-hash", "secret123") {
		t.Error("expected malformed hash to fail")
	}
}

func TestNewPasswordService_Cost(t *testing.T) {
	tests := []struct {
		name     string
		cost     int
		expected int
	}{
		{name: "configured cost", cost: 10, expected: 10},
		{name: "zero falls back to default", cost: 0, expected: bcrypt.DefaultCost},
		{name: "too high falls back to default", cost: 99, expected: bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPasswordService(tt.cost).(*PasswordServiceImpl)
			if svc.cost != tt.expected {
				t.Errorf("expected cost %d, got %d", tt.expected, svc.cost)
			}
		})
	}
}
