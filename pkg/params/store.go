package params

import (
	"log/slog"
	"net/url"
	"sync"

	"github.com/google/go-querystring/query"
)

// Ptr returns a pointer to v, for building a [Patch].
func Ptr[T any](v T) *T {
	return &v
}

// Patch is a partial update of [Parameters]. Nil fields are left unchanged.
type Patch struct {
	// Page is zero-based, like [Parameters.Page].
	Page       *int
	Rows       *int
	Order      *Order
	Start      *int
	End        *int
	CurrentTab *string
}

// queryPatch is the wire form of a [Patch].
type queryPatch struct {
	Page       *int    `url:"page,omitempty"`
	Rows       *int    `url:"rows,omitempty"`
	Order      *Order  `url:"order,omitempty"`
	Start      *int    `url:"start,omitempty"`
	End        *int    `url:"end,omitempty"`
	CurrentTab *string `url:"currentTab,omitempty"`
}

// Values encodes the patch as query values for scope s.
func (p Patch) Values(s Scope) (url.Values, error) {
	qp := queryPatch{
		Rows:       p.Rows,
		Order:      p.Order,
		Start:      p.Start,
		End:        p.End,
		CurrentTab: p.CurrentTab,
	}
	if p.Page != nil {
		qp.Page = Ptr(max(*p.Page, 0) + 1)
	}

	raw, err := query.Values(qp)
	if err != nil {
		return nil, err //nolint:wrapcheck // Only fails for non-struct input.
	}

	out := make(url.Values, len(raw))
	for k, v := range raw {
		out[s.Key(k)] = v
	}

	return out, nil
}

// Store owns the pagination parameters. The location held by its
// [History] is the single source of truth.
type Store struct {
	history History
	mu      sync.Mutex
}

// NewStore creates a [Store] backed by h.
func NewStore(h History) *Store {
	return &Store{history: h}
}

// Get reads the parameters of scope s from the current location.
func (s *Store) Get(scope Scope) Parameters {
	return FromQuery(s.history.Location().Query(), scope)
}

// Update merges patch into the latest location, replaces the location and
// returns the merged parameters. Keys not named by patch are preserved.
func (s *Store) Update(scope Scope, patch Patch) Parameters {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc := s.history.Location()

	values, err := patch.Values(scope)
	if err != nil {
		slog.Error("encode pagination patch", slog.Any("err", err))

		return FromQuery(loc.Query(), scope)
	}

	q := loc.Query()
	for k, v := range values {
		q[k] = v
	}

	loc.RawQuery = q.Encode()
	s.history.Replace(loc)

	slog.Debug("location updated", slog.String("location", loc.String()))

	return FromQuery(q, scope)
}

// Location returns the current location as a string.
func (s *Store) Location() string {
	return s.history.Location().String()
}
