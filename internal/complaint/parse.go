package complaint

import (
	"fmt"
	"strings"
)

// Case normalization happens here, at the boundary. Comparisons elsewhere
// are plain equality on the normalized enum values.

// ParseStatus normalizes raw into a known Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusSubmitted, StatusInProgress, StatusResolved, StatusRejected:
		return s, nil
	}
	return "", fmt.Errorf("unknown status %q", raw)
}

// ParseUrgency normalizes raw into a known Urgency.
func ParseUrgency(raw string) (Urgency, error) {
	u := Urgency(strings.ToLower(strings.TrimSpace(raw)))
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return u, nil
	}
	return "", fmt.Errorf("unknown urgency %q", raw)
}

// ParseDepartment normalizes raw into a known Department.
func ParseDepartment(raw string) (Department, error) {
	d := Department(strings.ToLower(strings.TrimSpace(raw)))
	switch d {
	case DeptRoads, DeptWater, DeptSanitation, DeptElectricity, DeptSafety, DeptTraffic, DeptGeneral:
		return d, nil
	}
	return "", fmt.Errorf("unknown department %q", raw)
}

// NormalizeDepartment lower-cases and trims without validating against the
// fixed set. Officer department bindings come from session claims and may
// carry upstream spellings like "Roads Dept".
func NormalizeDepartment(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
