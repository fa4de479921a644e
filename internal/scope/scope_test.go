package scope

import (
	"testing"

	"github.com/linnemanlabs/cityline/internal/complaint"
	"github.com/linnemanlabs/cityline/internal/session"
)

func TestResolve_OfficerAllows(t *testing.T) {
	t.Parallel()

	sc := Resolve(&session.Session{Role: session.RoleOfficer, Department: "roads"})

	tests := []struct {
		name string
		dept complaint.Department
		want bool
	}{
		{"exact match", "roads", true},
		{"case-insensitive", "Roads", true},
		{"containment", "roads & transport", true},
		{"other department", "water", false},
		{"empty department", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := &complaint.Complaint{Department: tt.dept}
			if got := sc.Allows(c); got != tt.want {
				t.Errorf("Allows(dept=%q) = %v, want %v", tt.dept, got, tt.want)
			}
		})
	}
}

func TestResolve_OfficerContainmentLaw(t *testing.T) {
	t.Parallel()

	// Every complaint visible to an officer matches the bound department.
	sc := Resolve(&session.Session{Role: session.RoleOfficer, Department: "Water"})

	sample := []complaint.Complaint{
		{ID: "1", Department: "water"},
		{ID: "2", Department: "roads"},
		{ID: "3", Department: "Water supply"},
		{ID: "4", Department: "sanitation"},
	}

	for i := range sample {
		if sc.Allows(&sample[i]) && sample[i].Department != "water" && sample[i].Department != "Water supply" {
			t.Errorf("officer scope leaked complaint %s (dept=%q)", sample[i].ID, sample[i].Department)
		}
	}
	if sc.LockedDepartment() != "water" {
		t.Errorf("LockedDepartment = %q, want %q", sc.LockedDepartment(), "water")
	}
}

func TestResolve_AdminUnrestricted(t *testing.T) {
	t.Parallel()

	sc := Resolve(&session.Session{Role: session.RoleCityAdmin})
	for _, dept := range []complaint.Department{"roads", "water", ""} {
		if !sc.Allows(&complaint.Complaint{Department: dept}) {
			t.Errorf("admin scope blocked dept %q", dept)
		}
	}
	if sc.LockedDepartment() != "" {
		t.Errorf("LockedDepartment = %q, want empty for admin", sc.LockedDepartment())
	}
}

func TestResolve_CitizenPassthrough(t *testing.T) {
	t.Parallel()

	// The server already restricts citizens to their own complaints; the
	// client-side predicate must not hide anything the server returned.
	sc := Resolve(&session.Session{Role: session.RoleCitizen})
	if !sc.Allows(&complaint.Complaint{Department: "roads"}) {
		t.Error("citizen scope blocked a server-returned complaint")
	}
}
