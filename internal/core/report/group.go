// Package report groups visit and sample records into summary rows.
//
// Every report is one call to Summarize with a Spec naming the grouping key,
// the timestamp that feeds the group's Timeline, and how a record folds into
// its group. Keys are comparable structs, never joined strings, so names that
// contain a delimiter cannot collide.
package report

import (
	"sort"
	"strings"
	"time"
)

// Spec parameterizes Summarize.
type Spec[R any, K comparable, A any] struct {
	Key      func(R) K
	New      func(R) *A
	Add      func(*A, R)        // optional
	When     func(R) time.Time  // optional, requires Timeline
	Timeline func(*A) *Timeline // optional
}

// Summarize folds records into groups, returned in first-seen order.
func Summarize[R any, K comparable, A any](records []R, spec Spec[R, K, A]) []*A {
	index := make(map[K]int)
	groups := make([]*A, 0)
	for _, r := range records {
		k := spec.Key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, spec.New(r))
		}
		acc := groups[i]
		if spec.Timeline != nil && spec.When != nil {
			spec.Timeline(acc).observe(spec.When(r))
		}
		if spec.Add != nil {
			spec.Add(acc, r)
		}
	}
	return groups
}

// Timeline tracks how often and when a group was visited.
type Timeline struct {
	TotalVisits    int         `json:"totalVisits"`
	FirstVisitDate time.Time   `json:"firstVisitDate"`
	LastVisitDate  time.Time   `json:"lastVisitDate"`
	AllVisitDates  []time.Time `json:"allVisitDates"`
}

func (t *Timeline) observe(at time.Time) {
	if t.TotalVisits == 0 || at.Before(t.FirstVisitDate) {
		t.FirstVisitDate = at
	}
	if t.TotalVisits == 0 || at.After(t.LastVisitDate) {
		t.LastVisitDate = at
	}
	t.TotalVisits++
	t.AllVisitDates = append(t.AllVisitDates, at)
}

// sortDesc orders the visit dates newest first.
func (t *Timeline) sortDesc() {
	sort.SliceStable(t.AllVisitDates, func(i, j int) bool {
		return t.AllVisitDates[i].After(t.AllVisitDates[j])
	})
}

// orderedSet keeps distinct strings in insertion order.
type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func (s *orderedSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s *orderedSet) values() []string {
	return append([]string{}, s.items...)
}

// sorted returns the values in byte order.
func (s *orderedSet) sorted() []string {
	out := s.values()
	sort.Strings(out)
	return out
}

// nameLess orders display names case-insensitively, falling back to byte order.
func nameLess(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
