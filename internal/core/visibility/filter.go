// Package visibility decides which records a caller may read.
//
// Callers holding an unrestricted role (admin, super admin) see everything.
// Everyone else sees records owned by themselves or by users whose recorded
// manager email matches theirs.
package visibility

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hapl/fieldsales/internal/core/domain"
	"github.com/hapl/fieldsales/internal/core/query"
)

// EntityKind selects the email-bearing field a narrowed predicate constrains.
type EntityKind string

const (
	KindVisit      EntityKind = "visit"
	KindIntimation EntityKind = "intimation"
	KindSample     EntityKind = "sample"
)

var emailFields = map[EntityKind]string{
	KindVisit:      domain.FieldVisitEmail,
	KindIntimation: "user_email",
	KindSample:     "sales_user_email",
}

// EmailField returns the owner-email field for kind.
func EmailField(kind EntityKind) (string, bool) {
	f, ok := emailFields[kind]
	return f, ok
}

// Outcome labels how a Narrow call was decided.
type Outcome string

const (
	OutcomePassthrough  Outcome = "passthrough"
	OutcomeUnrestricted Outcome = "unrestricted"
	OutcomeUnknownKind  Outcome = "unknown_kind"
	OutcomeNarrowed     Outcome = "narrowed"
	OutcomeFallback     Outcome = "fallback"
)

// Directory resolves the users reporting to a manager.
type Directory interface {
	SubordinateEmails(ctx context.Context, managerEmail string) ([]string, error)
}

// Filter narrows base predicates to what an identity may see.
type Filter struct {
	dir     Directory
	log     zerolog.Logger
	observe func(Outcome)
}

// Option configures a Filter.
type Option func(*Filter)

// WithObserver registers a callback invoked once per Narrow decision.
func WithObserver(fn func(Outcome)) Option {
	return func(f *Filter) { f.observe = fn }
}

func NewFilter(dir Directory, log zerolog.Logger, opts ...Option) *Filter {
	f := &Filter{dir: dir, log: log, observe: func(Outcome) {}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Narrow returns base intersected with the caller's visibility set for kind.
//
// An identity without a current role or email passes through unchanged, as
// does an unknown kind. A failed subordinate lookup narrows to the caller's
// own email only.
func (f *Filter) Narrow(ctx context.Context, id *domain.Identity, base query.Predicate, kind EntityKind) query.Predicate {
	if !id.Authenticated() {
		f.observe(OutcomePassthrough)
		return base
	}
	if domain.IsUnrestricted(id.CurrentRole) {
		f.observe(OutcomeUnrestricted)
		return base
	}

	field, ok := emailFields[kind]
	if !ok {
		f.log.Warn().Str("kind", string(kind)).Msg("visibility filter skipped for unknown entity kind")
		f.observe(OutcomeUnknownKind)
		return base
	}

	subordinates, err := f.dir.SubordinateEmails(ctx, id.Email)
	if err != nil {
		f.log.Error().Err(err).Str("email", id.Email).Msg("subordinate lookup failed, narrowing to self")
		f.observe(OutcomeFallback)
		return base.InFold(field, id.Email)
	}

	f.observe(OutcomeNarrowed)
	return base.InFold(field, VisibleEmails(id.Email, subordinates)...)
}

// VisibleEmails returns subordinates followed by self, without blanks and
// without case-insensitive duplicates.
func VisibleEmails(self string, subordinates []string) []string {
	out := make([]string, 0, len(subordinates)+1)
	seen := make(map[string]struct{}, len(subordinates)+1)
	for _, e := range append(append([]string{}, subordinates...), self) {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		key := strings.ToLower(e)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
