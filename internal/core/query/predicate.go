// Package query holds a small, storage-neutral predicate used to describe which
// records an operation reads. Repositories translate it to their native filter
// language; services and the visibility filter only ever compose it.
//
// A Predicate is immutable: every builder method returns a new value, so a base
// predicate can be shared and narrowed without aliasing.
package query

import (
	"fmt"
	"strings"
	"time"
)

// Op is a comparison applied to a single field.
type Op int

const (
	OpEq           Op = iota // field == value
	OpIn                     // field is one of values
	OpInFold                 // field is one of values, ignoring case
	OpNotNull                // field is present and not null
	OpGte                    // field >= value
	OpLte                    // field <= value
	OpContainsFold           // field contains value, ignoring case
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpIn:
		return "in"
	case OpInFold:
		return "in_fold"
	case OpNotNull:
		return "not_null"
	case OpGte:
		return "gte"
	case OpLte:
		return "lte"
	case OpContainsFold:
		return "contains_fold"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Condition is one field comparison.
type Condition struct {
	Field  string
	Op     Op
	Values []any
}

// Predicate is a conjunction of conditions and of "any of" groups, where each
// group is satisfied when at least one of its conditions holds.
type Predicate struct {
	all   []Condition
	anyOf [][]Condition
}

// All returns a predicate that matches every record.
func All() Predicate { return Predicate{} }

// Conditions returns the conjunctive conditions.
func (p Predicate) Conditions() []Condition { return p.all }

// Groups returns the disjunctive groups.
func (p Predicate) Groups() [][]Condition { return p.anyOf }

// IsEmpty reports whether the predicate places no restriction.
func (p Predicate) IsEmpty() bool { return len(p.all) == 0 && len(p.anyOf) == 0 }

func (p Predicate) with(c Condition) Predicate {
	all := make([]Condition, len(p.all), len(p.all)+1)
	copy(all, p.all)
	return Predicate{all: append(all, c), anyOf: p.anyOf}
}

// Eq adds field == value.
func (p Predicate) Eq(field string, value any) Predicate {
	return p.with(Condition{Field: field, Op: OpEq, Values: []any{value}})
}

// In adds field ∈ values.
func (p Predicate) In(field string, values ...string) Predicate {
	return p.with(Condition{Field: field, Op: OpIn, Values: strs(values)})
}

// InFold adds a case-insensitive field ∈ values.
func (p Predicate) InFold(field string, values ...string) Predicate {
	return p.with(Condition{Field: field, Op: OpInFold, Values: strs(values)})
}

// NotNull adds "field is set".
func (p Predicate) NotNull(field string) Predicate {
	return p.with(Condition{Field: field, Op: OpNotNull})
}

// Between adds from <= field <= to. Zero bounds are skipped.
func (p Predicate) Between(field string, from, to time.Time) Predicate {
	out := p
	if !from.IsZero() {
		out = out.with(Condition{Field: field, Op: OpGte, Values: []any{from}})
	}
	if !to.IsZero() {
		out = out.with(Condition{Field: field, Op: OpLte, Values: []any{to}})
	}
	return out
}

// AnyContains adds a group matching records where at least one of fields
// contains term, ignoring case. A blank term adds nothing.
func (p Predicate) AnyContains(term string, fields ...string) Predicate {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return p
	}
	group := make([]Condition, 0, len(fields))
	for _, f := range fields {
		group = append(group, Condition{Field: f, Op: OpContainsFold, Values: []any{term}})
	}
	groups := make([][]Condition, len(p.anyOf), len(p.anyOf)+1)
	copy(groups, p.anyOf)
	return Predicate{all: p.all, anyOf: append(groups, group)}
}

func strs(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
