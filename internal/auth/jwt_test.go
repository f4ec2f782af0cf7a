package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateAdmin("ops")
	if err != nil {
		t.Fatalf("GenerateAdmin failed: %v", err)
	}

	claims, err := m.ValidateAdmin(token)
	if err != nil {
		t.Fatalf("ValidateAdmin failed: %v", err)
	}
	if claims.Subject != "ops" || claims.Role != RoleAdmin {
		t.Errorf("claims = %+v, want subject ops with admin role", claims)
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	valid, err := m.GenerateAdmin("ops")
	if err != nil {
		t.Fatalf("GenerateAdmin failed: %v", err)
	}

	expiredManager := NewJWTManager("test-secret", time.Hour)
	expiredManager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredManager.GenerateAdmin("ops")
	if err != nil {
		t.Fatalf("GenerateAdmin failed: %v", err)
	}

	otherSecret, err := NewJWTManager("other-secret", time.Hour).GenerateAdmin("ops")
	if err != nil {
		t.Fatalf("GenerateAdmin failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"tampered", valid + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestJWTManager_RequiresAdminRole(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	claims := &Claims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := m.ValidateAdmin(token); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
