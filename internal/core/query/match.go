package query

import (
	"strings"
	"time"
)

// Getter returns the value of a named field on a record, and whether it is set.
type Getter func(field string) (any, bool)

// Matches evaluates p against a record exposed through get. It is the
// reference semantics repositories must reproduce.
func (p Predicate) Matches(get Getter) bool {
	for _, c := range p.all {
		if !c.matches(get) {
			return false
		}
	}
	for _, group := range p.anyOf {
		ok := false
		for _, c := range group {
			if c.matches(get) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (c Condition) matches(get Getter) bool {
	v, ok := get(c.Field)
	if c.Op == OpNotNull {
		return ok && v != nil && v != ""
	}
	if !ok {
		return false
	}

	switch c.Op {
	case OpEq:
		return equal(v, c.Values[0])
	case OpIn:
		for _, want := range c.Values {
			if equal(v, want) {
				return true
			}
		}
		return false
	case OpInFold:
		s, _ := v.(string)
		for _, want := range c.Values {
			if w, _ := want.(string); strings.EqualFold(s, w) {
				return true
			}
		}
		return false
	case OpContainsFold:
		s, _ := v.(string)
		w, _ := c.Values[0].(string)
		return strings.Contains(strings.ToLower(s), strings.ToLower(w))
	case OpGte, OpLte:
		t, ok1 := v.(time.Time)
		bound, ok2 := c.Values[0].(time.Time)
		if !ok1 || !ok2 {
			return false
		}
		if c.Op == OpGte {
			return !t.Before(bound)
		}
		return !t.After(bound)
	}
	return false
}

func equal(a, b any) bool {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}
