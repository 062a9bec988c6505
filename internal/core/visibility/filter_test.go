package visibility

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/query"
)

type stubDirectory struct {
	byManager map[string][]string
	err       error
	calls     int
}

func (d *stubDirectory) SubordinateEmails(_ context.Context, managerEmail string) ([]string, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.byManager[strings.ToLower(managerEmail)], nil
}

type record struct {
	email  string
	status string
}

func (r record) get(field string) (any, bool) {
	switch field {
	case domain.FieldVisitEmail:
		return r.email, true
	case domain.FieldVisitStatus:
		return r.status, r.status != ""
	}
	return nil, false
}

var records = []record{
	{email: "manager@hapl.in", status: domain.StatusCompleted},
	{email: "rep.one@hapl.in", status: domain.StatusCompleted},
	{email: "REP.TWO@hapl.in", status: domain.StatusAdHoc},
	{email: "outsider@hapl.in", status: domain.StatusCompleted},
	{email: "other.manager@hapl.in", status: domain.StatusPending},
	{email: "rep.one@hapl.in"},
}

func apply(p query.Predicate) []record {
	var out []record
	for _, r := range records {
		if p.Matches(r.get) {
			out = append(out, r)
		}
	}
	return out
}

func newTestFilter(dir Directory) (*Filter, *[]Outcome) {
	var seen []Outcome
	f := NewFilter(dir, zerolog.Nop(), WithObserver(func(o Outcome) { seen = append(seen, o) }))
	return f, &seen
}

func restricted(email string) *domain.Identity {
	return &domain.Identity{ID: "u1", Email: email, CurrentRole: "Visit Admin"}
}

func TestNarrow_RestrictedSeesSelfAndSubordinates(t *testing.T) {
	dir := &stubDirectory{byManager: map[string][]string{
		"manager@hapl.in": {"rep.one@hapl.in", "rep.two@hapl.in"},
	}}
	f, seen := newTestFilter(dir)

	base := query.All().NotNull(domain.FieldVisitStatus)
	got := apply(f.Narrow(context.Background(), restricted("Manager@hapl.in"), base, KindVisit))

	require.Len(t, got, 3)
	for _, r := range got {
		email := strings.ToLower(r.email)
		assert.Contains(t, []string{"manager@hapl.in", "rep.one@hapl.in", "rep.two@hapl.in"}, email)
		assert.NotEmpty(t, r.status, "base predicate must still apply")
	}
	assert.Equal(t, 1, dir.calls)
	assert.Equal(t, []Outcome{OutcomeNarrowed}, *seen)
}

func TestNarrow_UnrestrictedIsIdentity(t *testing.T) {
	for _, role := range []string{"admin", "Admin", " SUPER ADMIN ", "super admin"} {
		t.Run(role, func(t *testing.T) {
			dir := &stubDirectory{}
			f, seen := newTestFilter(dir)
			base := query.All().In(domain.FieldVisitStatus, domain.ReportableStatuses...)

			got := f.Narrow(context.Background(), &domain.Identity{Email: "boss@hapl.in", CurrentRole: role}, base, KindVisit)

			assert.Equal(t, base, got)
			assert.Zero(t, dir.calls)
			assert.Equal(t, []Outcome{OutcomeUnrestricted}, *seen)
		})
	}
}

func TestNarrow_MissingIdentityFieldsPassThrough(t *testing.T) {
	f, seen := newTestFilter(&stubDirectory{})
	base := query.All().NotNull(domain.FieldVisitStatus)

	assert.Equal(t, base, f.Narrow(context.Background(), nil, base, KindVisit))
	assert.Equal(t, base, f.Narrow(context.Background(), &domain.Identity{Email: "a@hapl.in"}, base, KindVisit))
	assert.Equal(t, base, f.Narrow(context.Background(), &domain.Identity{CurrentRole: "rep"}, base, KindVisit))
	assert.Equal(t, []Outcome{OutcomePassthrough, OutcomePassthrough, OutcomePassthrough}, *seen)
}

func TestNarrow_LookupFailureFallsBackToSelf(t *testing.T) {
	dir := &stubDirectory{err: errors.New("directory down")}
	f, seen := newTestFilter(dir)

	got := apply(f.Narrow(context.Background(), restricted("rep.one@hapl.in"), query.All(), KindVisit))

	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "rep.one@hapl.in", r.email)
	}
	assert.Equal(t, []Outcome{OutcomeFallback}, *seen)
}

func TestNarrow_UnknownKindIsNoop(t *testing.T) {
	dir := &stubDirectory{}
	f, seen := newTestFilter(dir)
	base := query.All().NotNull(domain.FieldVisitStatus)

	got := f.Narrow(context.Background(), restricted("rep.one@hapl.in"), base, EntityKind("invoice"))

	assert.Equal(t, base, got)
	assert.Zero(t, dir.calls)
	assert.Equal(t, []Outcome{OutcomeUnknownKind}, *seen)
}

func TestNarrow_Idempotent(t *testing.T) {
	dir := &stubDirectory{byManager: map[string][]string{"manager@hapl.in": {"rep.one@hapl.in"}}}
	f, _ := newTestFilter(dir)
	base := query.All().NotNull(domain.FieldVisitStatus)
	id := restricted("manager@hapl.in")

	first := f.Narrow(context.Background(), id, base, KindVisit)
	second := f.Narrow(context.Background(), id, base, KindVisit)

	assert.Equal(t, first, second)
	assert.Equal(t, apply(first), apply(second))
	assert.Len(t, base.Conditions(), 1, "base predicate must not be mutated")
}

func TestNarrow_UsesKindSpecificField(t *testing.T) {
	f, _ := newTestFilter(&stubDirectory{})

	for kind, field := range map[EntityKind]string{
		KindVisit:      "email",
		KindIntimation: "user_email",
		KindSample:     "sales_user_email",
	} {
		p := f.Narrow(context.Background(), restricted("rep@hapl.in"), query.All(), kind)
		conds := p.Conditions()
		require.Len(t, conds, 1)
		assert.Equal(t, field, conds[0].Field)
		assert.Equal(t, query.OpInFold, conds[0].Op)
	}
}

func TestVisibleEmails(t *testing.T) {
	got := VisibleEmails("Me@hapl.in", []string{"a@hapl.in", "A@HAPL.IN", "", "me@hapl.in", "b@hapl.in"})
	assert.Equal(t, []string{"a@hapl.in", "me@hapl.in", "b@hapl.in"}, got)
}
