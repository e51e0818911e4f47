package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// FetchFunc performs the upstream call on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Service wraps a Store with single-flight coalescing: for any key there is
// at most one outstanding upstream fetch, shared by all concurrent callers.
// Construct one per process and pass it around; there is no package-level
// instance.
type Service struct {
	store Store
	group singleflight.Group
	now   func() time.Time
}

type ServiceOption func(*Service)

func StoreOption(store Store) ServiceOption {
	return func(s *Service) {
		s.store = store
	}
}

// NowOption overrides the clock, for tests.
func NowOption(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func New(opts ...ServiceOption) *Service {
	s := &Service{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	return s
}

// GetOrFetch returns a fresh cached payload if one exists, otherwise joins
// the in-flight fetch for key, otherwise invokes fetch exactly once and
// caches its result for ttl. Failures are never cached; the in-flight handle
// is dropped as soon as the fetch settles.
func (s *Service) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) ([]byte, error) {
	if e, ok := s.store.Get(ctx, key); ok && e.Fresh(s.now()) {
		return e.Payload, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a racing caller may have repopulated
		// the entry between our freshness check and joining the group.
		if e, ok := s.store.Get(ctx, key); ok && e.Fresh(s.now()) {
			return e.Payload, nil
		}
		payload, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.store.Set(ctx, key, Entry{
			ExpiresAt: s.now().Add(ttl),
			Payload:   payload,
		})
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Stale returns whatever entry exists for key regardless of expiry. Used
// after retries are exhausted: degraded data beats no data.
func (s *Service) Stale(ctx context.Context, key string) ([]byte, bool) {
	e, ok := s.store.Get(ctx, key)
	if !ok {
		return nil, false
	}
	return e.Payload, true
}

// Key builds a canonical cache key: operation name, coordinates rounded to
// two decimals, units, then any window/timestep parameters. Logically
// identical requests must collide.
func Key(op string, lat, lon float64, units string, extra ...string) string {
	parts := []string{fmt.Sprintf("%s:%.2f,%.2f:%s", op, lat, lon, units)}
	parts = append(parts, extra...)
	return strings.Join(parts, ":")
}
