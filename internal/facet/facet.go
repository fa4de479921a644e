// Package facet applies user-selected department/urgency/status facets on
// top of the role-derived scope. Filtering is stable and side-effect free:
// it can be recomputed at any time from the current cache.
package facet

import (
	"errors"
	"strings"

	"github.com/linnemanlabs/cityline/internal/complaint"
	"github.com/linnemanlabs/cityline/internal/scope"
)

// All is the sentinel selection matching every value of a facet.
const All = "all"

// ErrDepartmentLocked is returned when a selection tries to widen or move
// the department facet on an officer-scoped view.
var ErrDepartmentLocked = errors.New("department facet is locked by scope")

// Selection holds the three independent facet choices. The zero value is
// not useful; construct with New.
type Selection struct {
	department string
	urgency    string
	status     string
}

// New returns a selection with every facet set to All, except that an
// officer scope pins the department facet to its bound department.
func New(sc scope.Scope) Selection {
	s := Selection{department: All, urgency: All, status: All}
	if locked := sc.LockedDepartment(); locked != "" {
		s.department = locked
	}
	return s
}

// Department returns the current department selection.
func (s Selection) Department() string { return s.department }

// Urgency returns the current urgency selection.
func (s Selection) Urgency() string { return s.urgency }

// Status returns the current status selection.
func (s Selection) Status() string { return s.status }

// SetDepartment updates the department facet. Officer-scoped views may only
// re-assert their bound department.
func (s *Selection) SetDepartment(sc scope.Scope, value string) error {
	v := normalize(value)
	if locked := sc.LockedDepartment(); locked != "" && v != locked {
		return ErrDepartmentLocked
	}
	s.department = v
	return nil
}

// SetUrgency updates the urgency facet.
func (s *Selection) SetUrgency(value string) {
	s.urgency = normalize(value)
}

// SetStatus updates the status facet.
func (s *Selection) SetStatus(value string) {
	s.status = normalize(value)
}

// Apply returns the complaints visible under sc that match every facet,
// preserving input order. Selecting All on every facet yields the scoped
// sequence unchanged.
func (s Selection) Apply(sc scope.Scope, in []complaint.Complaint) []complaint.Complaint {
	locked := sc.LockedDepartment()
	out := make([]complaint.Complaint, 0, len(in))
	for i := range in {
		c := &in[i]
		if !sc.Allows(c) {
			continue
		}
		if !s.matches(c, locked) {
			continue
		}
		out = append(out, *c)
	}
	return out
}

func (s Selection) matches(c *complaint.Complaint, locked string) bool {
	// A locked department facet restates the scope, which already matched
	// by containment. Re-checking with facet equality would hide records
	// the scope deliberately admits (e.g. "roads & transport" for "roads").
	deptLocked := locked != "" && s.department == locked
	if !deptLocked && s.department != All && normalize(string(c.Department)) != s.department {
		return false
	}
	if s.urgency != All && normalize(string(c.Urgency)) != s.urgency {
		return false
	}
	if s.status != All && normalize(string(c.Status)) != s.status {
		return false
	}
	return true
}

func normalize(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return All
	}
	return v
}
