// Package scope derives the role-bound visibility predicate from the active
// session. The scope is applied before facet filtering and cannot be widened
// by user selections.
package scope

import (
	"strings"

	"github.com/linnemanlabs/cityline/internal/complaint"
	"github.com/linnemanlabs/cityline/internal/session"
)

// Scope is the non-overridable portion of visibility for one view.
type Scope struct {
	role       session.Role
	department string // normalized, officers only
}

// Resolve computes the scope for a session.
func Resolve(s *session.Session) Scope {
	sc := Scope{role: s.Role}
	if s.Role == session.RoleOfficer {
		sc.department = complaint.NormalizeDepartment(s.Department)
	}
	return sc
}

// Allows reports whether c is visible under this scope.
//
// Officers see complaints whose department contains their bound department,
// case-insensitively; containment rather than equality tolerates upstream
// spellings like "roads & transport". Citizens pass through: authorship
// scoping is enforced server-side and the client assumes nothing stronger.
// Admins are unrestricted.
func (sc Scope) Allows(c *complaint.Complaint) bool {
	if sc.role != session.RoleOfficer {
		return true
	}
	dept := complaint.NormalizeDepartment(string(c.Department))
	return strings.Contains(dept, sc.department)
}

// LockedDepartment returns the department the view's facet control is locked
// to, or "" when the department facet is freely selectable.
func (sc Scope) LockedDepartment() string {
	return sc.department
}

// Role returns the role this scope was resolved from.
func (sc Scope) Role() session.Role {
	return sc.role
}
