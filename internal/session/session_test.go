package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signToken builds an HS256 token with the given claims. The signing key is
// irrelevant since FromToken never verifies signatures.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	raw, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestFromToken_Officer(t *testing.T) {
	t.Parallel()

	raw := signToken(t, jwt.MapClaims{
		"sub":        "officer-7",
		"role":       "officer",
		"department": "Roads",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	s, err := FromToken(raw)
	if err != nil {
		t.Fatalf("FromToken: %v", err)
	}
	if s.Role != RoleOfficer {
		t.Errorf("Role = %q, want officer", s.Role)
	}
	if s.Department != "roads" {
		t.Errorf("Department = %q, want normalized %q", s.Department, "roads")
	}
	if s.Subject != "officer-7" {
		t.Errorf("Subject = %q, want officer-7", s.Subject)
	}
	if s.Token != raw {
		t.Error("Token not carried through")
	}
}

func TestFromToken_AdminNoDepartment(t *testing.T) {
	t.Parallel()

	raw := signToken(t, jwt.MapClaims{
		"sub":  "admin-1",
		"role": "city_admin",
	})

	s, err := FromToken(raw)
	if err != nil {
		t.Fatalf("FromToken: %v", err)
	}
	if s.Role != RoleCityAdmin {
		t.Errorf("Role = %q, want city_admin", s.Role)
	}
	if s.Department != "" {
		t.Errorf("Department = %q, want empty for admin", s.Department)
	}
}

func TestFromToken_OfficerMissingDepartment(t *testing.T) {
	t.Parallel()

	raw := signToken(t, jwt.MapClaims{"sub": "o", "role": "officer"})
	if _, err := FromToken(raw); err == nil {
		t.Fatal("expected error for officer without department claim")
	}
}

func TestFromToken_Expired(t *testing.T) {
	t.Parallel()

	raw := signToken(t, jwt.MapClaims{
		"sub":  "c",
		"role": "citizen",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})

	_, err := FromToken(raw)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestFromToken_UnknownRole(t *testing.T) {
	t.Parallel()

	raw := signToken(t, jwt.MapClaims{"sub": "x", "role": "superuser"})
	if _, err := FromToken(raw); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestFromToken_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := FromToken("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
