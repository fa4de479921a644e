// Package stats computes derived dashboard statistics from a complaint
// sequence. Everything here is a pure function of its input.
package stats

import (
	"math"

	"github.com/linnemanlabs/cityline/internal/complaint"
)

// Summary is the headline counter row of the dashboard.
type Summary struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
	Urgent  int `json:"urgent"`
	// Open counts only submitted complaints; stricter views use it in
	// place of Pending.
	Open           int `json:"open"`
	Resolved       int `json:"resolved"`
	ResolutionRate int `json:"resolution_rate"`
}

// Bucket is one value of a distribution with its count.
type Bucket struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Compute aggregates the headline summary. Pending counts everything not
// resolved; urgent counts critical and high; resolution rate is the
// percentage of resolved complaints rounded to the nearest integer, 0 for an
// empty input.
func Compute(in []complaint.Complaint) Summary {
	var s Summary
	s.Total = len(in)
	for i := range in {
		c := &in[i]
		if c.Status != complaint.StatusResolved {
			s.Pending++
		} else {
			s.Resolved++
		}
		if c.Status == complaint.StatusSubmitted {
			s.Open++
		}
		if c.Urgency.IsUrgent() {
			s.Urgent++
		}
	}
	if s.Total > 0 {
		s.ResolutionRate = int(math.Round(float64(s.Resolved) / float64(s.Total) * 100))
	}
	return s
}

// ByCategory groups complaints by category in first-seen order.
func ByCategory(in []complaint.Complaint) []Bucket {
	return distribution(in, func(c *complaint.Complaint) string { return c.Category })
}

// ByDepartment groups complaints by department in first-seen order.
func ByDepartment(in []complaint.Complaint) []Bucket {
	return distribution(in, func(c *complaint.Complaint) string { return string(c.Department) })
}

// distribution buckets by key in order of first occurrence, matching the
// dashboard's insertion-ordered grouping rather than a sorted one.
func distribution(in []complaint.Complaint, key func(*complaint.Complaint) string) []Bucket {
	index := make(map[string]int, len(in))
	var out []Bucket
	for i := range in {
		k := key(&in[i])
		if k == "" {
			continue
		}
		if at, ok := index[k]; ok {
			out[at].Count++
			continue
		}
		index[k] = len(out)
		out = append(out, Bucket{Value: k, Count: 1})
	}
	return out
}

// PriorityQueue returns up to n critical/high complaints, preserving the
// input's timestamp-descending order.
func PriorityQueue(in []complaint.Complaint, n int) []complaint.Complaint {
	if n < 0 {
		n = 0
	}
	out := make([]complaint.Complaint, 0, n)
	for i := range in {
		if !in[i].Urgency.IsUrgent() {
			continue
		}
		out = append(out, in[i])
		if len(out) == n {
			break
		}
	}
	return out
}
