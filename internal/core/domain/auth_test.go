package domain

import (
	"testing"
	"time"
)

func TestAuthContextIsAdmin(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleAdmin, true},
		{RoleViewer, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			ctx := &AuthContext{Subject: "ops", Role: tt.role}
			if ctx.IsAdmin() != tt.expected {
				t.Errorf("expected IsAdmin() = %v for role %s", tt.expected, tt.role)
			}
		})
	}
}

func TestRoleIsValid(t *testing.T) {
	if !RoleAdmin.IsValid() || !RoleViewer.IsValid() {
		t.Error("expected built-in roles to be valid")
	}
	if Role("owner").IsValid() {
		t.Error("expected unknown role to be invalid")
	}
}

func TestTokenClaimsIsExpired(t *testing.T) {
	now := time.Now()

	live := &TokenClaims{ExpiresAt: now.Add(time.Hour).Unix()}
	if live.IsExpired(now) {
		t.Error("expected live token not to be expired")
	}

	dead := &TokenClaims{ExpiresAt: now.Add(-time.Second).Unix()}
	if !dead.IsExpired(now) {
		t.Error("expected past token to be expired")
	}
}
