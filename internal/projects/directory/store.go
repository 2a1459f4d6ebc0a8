// Package directory owns the in-memory copy of the project directory.
//
// Every successful refresh publishes a new immutable Snapshot. Readers load the
// current snapshot without locking and never observe a list that is being
// replaced; refreshes are serialised with each other.
package directory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/argentech/argentech-backend/internal/logging"
	"github.com/argentech/argentech-backend/internal/metrics"
	"github.com/argentech/argentech-backend/internal/projects/domain"
	"github.com/argentech/argentech-backend/internal/projects/filter"
)

// Loader fetches the full denormalized directory. No filtering happens in the loader.
type Loader interface {
	ListWithFounders(ctx context.Context) ([]domain.Project, error)
}

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is one published copy of the directory. Projects must not be modified.
type Snapshot struct {
	Version  uint64
	Projects []domain.Project
	LoadedAt time.Time
}

// view is swapped as a whole so status, snapshot and error always agree.
type view struct {
	status Status
	snap   *Snapshot
	err    error
}

type Store struct {
	loader  Loader
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	version uint64

	cur atomic.Pointer[view]
}

type Option func(*Store)

// WithBreaker routes loader calls through cb. An open breaker fails the
// refresh immediately; it never retries.
func WithBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(s *Store) { s.breaker = cb }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(loader Loader, opts ...Option) *Store {
	s := &Store{loader: loader, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.cur.Store(&view{status: StatusIdle})
	return s
}

// Refresh fetches the directory and publishes it as a new snapshot. On failure
// the previous snapshot is dropped and the store reports the FetchError until
// the next successful refresh.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.cur.Load()
	s.cur.Store(&view{status: StatusLoading, snap: prev.snap})

	projects, err := s.load(ctx)
	if err != nil {
		fe := &domain.FetchError{Err: err}
		s.cur.Store(&view{status: StatusFailed, err: fe})
		s.metrics.ObserveFetchError()
		logging.Op(ctx, "directory.refresh").WithError(err).Error("failed to load projects")
		return nil, fe
	}

	s.version++
	snap := &Snapshot{
		Version:  s.version,
		Projects: freeze(projects),
		LoadedAt: s.now(),
	}
	s.cur.Store(&view{status: StatusReady, snap: snap})
	s.metrics.SetSnapshot(snap.Version, len(snap.Projects))

	logging.Op(ctx, "directory.refresh").
		WithField("version", snap.Version).
		WithField("projects", len(snap.Projects)).
		Info("directory snapshot published")
	return snap, nil
}

// Snapshot returns the published snapshot, the last FetchError, or
// ErrNotLoaded when no refresh has completed yet.
func (s *Store) Snapshot() (*Snapshot, error) {
	v := s.cur.Load()
	if v.err != nil {
		return nil, v.err
	}
	if v.snap == nil {
		return nil, domain.ErrNotLoaded
	}
	return v.snap, nil
}

func (s *Store) Status() Status {
	return s.cur.Load().status
}

// Apply filters the current snapshot and reports which version it used.
func (s *Store) Apply(c domain.Criteria) ([]domain.Project, uint64, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, 0, err
	}
	start := time.Now()
	out := filter.Apply(snap.Projects, c)
	s.metrics.ObserveFilter(time.Since(start))
	return out, snap.Version, nil
}

func (s *Store) load(ctx context.Context) ([]domain.Project, error) {
	if s.breaker == nil {
		return s.loader.ListWithFounders(ctx)
	}
	v, err := s.breaker.Execute(func() (interface{}, error) {
		return s.loader.ListWithFounders(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Project), nil
}

// freeze copies the list so later changes by the loader cannot leak into a
// published snapshot. Founder lists are never nil.
func freeze(in []domain.Project) []domain.Project {
	out := make([]domain.Project, len(in))
	for i, p := range in {
		founders := make([]domain.Founder, len(p.Founders))
		copy(founders, p.Founders)
		p.Founders = founders
		out[i] = p
	}
	return out
}
