package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRoles(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain", "Sales", []string{"Sales"}},
		{"blank", "   ", nil},
		{"json array", `["Sales", "Admin"]`, []string{"Sales", "Admin"}},
		{"double encoded", `"[\"Sales\",\"Manager\"]"`, []string{"Sales", "Manager"}},
		{"dedupe and trim", `[" Sales ", "sales", "", "Admin"]`, []string{"Sales", "Admin"}},
		{"plain with spaces", " Super Admin ", []string{"Super Admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseRoles(tc.raw))
		})
	}
}

func TestIsUnrestricted(t *testing.T) {
	for _, role := range []string{"admin", " Admin ", "SUPER ADMIN", "super admin"} {
		assert.True(t, IsUnrestricted(role), role)
	}
	for _, role := range []string{"", "Sales", "superadmin", "manager"} {
		assert.False(t, IsUnrestricted(role), role)
	}
}

func TestHasRole(t *testing.T) {
	roles := ParseRoles(`["Sales","Manager"]`)
	assert.True(t, HasRole(roles, " manager"))
	assert.False(t, HasRole(roles, "Admin"))
}

func TestIdentity_Authenticated(t *testing.T) {
	var nilID *Identity
	assert.False(t, nilID.Authenticated())
	assert.False(t, (&Identity{Email: "asha@hapl.in"}).Authenticated())
	assert.False(t, (&Identity{CurrentRole: "Sales", Email: "  "}).Authenticated())
	assert.True(t, (&Identity{CurrentRole: "Sales", Email: "asha@hapl.in"}).Authenticated())
}

func TestNewIdentity(t *testing.T) {
	u := &User{ID: "u1", Email: "asha@hapl.in", Role: `["Sales","Manager"]`, ManagerEmail: "boss@hapl.in"}
	id := NewIdentity(u, "Manager")
	assert.Equal(t, "Manager", id.CurrentRole)
	assert.Equal(t, []string{"Sales", "Manager"}, id.Roles)
	assert.Equal(t, "boss@hapl.in", id.ManagerEmail)
}

func TestValidHaplID(t *testing.T) {
	assert.True(t, ValidHaplID("HAPL-1741597200000"))
	for _, id := range []string{"", "HAPL-", "hapl-1", "HAPL-12a", " HAPL-1"} {
		assert.False(t, ValidHaplID(id), id)
	}
}

func TestTodayVisitCount(t *testing.T) {
	assert.Equal(t, 1, TodayVisitCount(VisitTypeNewVisit, 0))
	assert.Equal(t, 4, TodayVisitCount(VisitTypeNewVisit, 3))
	assert.Equal(t, 1, TodayVisitCount("Follow Up", 3))
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 3, 10, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), DateOnly(in))
}

func TestValidationError(t *testing.T) {
	err := Invalid("Invalid cursor")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Invalid cursor", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.True(t, errors.Is(ErrVisitNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrNoData, ErrNotFound))
}
