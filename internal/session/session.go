// Package session models the already-established operator session. The
// console never issues or refreshes credentials; it decodes the role and
// department claims from the bearer token it was handed and treats them as
// read-only context for the life of the view.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linnemanlabs/cityline/internal/complaint"
)

// Role is the operator's role as asserted by the authentication service.
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleOfficer   Role = "officer"
	RoleCityAdmin Role = "city_admin"
)

// ErrTokenExpired is returned when the session token's exp claim has passed.
// The console refuses to start with a dead session rather than fail every
// upstream call.
var ErrTokenExpired = errors.New("session token expired")

// Session is the immutable authentication context for one console view.
type Session struct {
	Token      string
	Subject    string
	Role       Role
	Department string // set for officers, empty otherwise
}

type claims struct {
	Role       string `json:"role"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

// FromToken decodes the session claims from raw. The signature is not
// verified here: the upstream service is the authority on every request and
// rejects forged tokens; the console only needs the claims to derive its
// visibility scope.
func FromToken(raw string) (*Session, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &c); err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	if c.ExpiresAt != nil && c.ExpiresAt.Before(time.Now()) {
		return nil, ErrTokenExpired
	}

	role, err := parseRole(c.Role)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Token:   raw,
		Subject: c.Subject,
		Role:    role,
	}
	if role == RoleOfficer {
		if c.Department == "" {
			return nil, errors.New("officer session has no department claim")
		}
		s.Department = complaint.NormalizeDepartment(c.Department)
	}
	return s, nil
}

func parseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleCitizen, RoleOfficer, RoleCityAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("unknown role %q in session token", raw)
}
