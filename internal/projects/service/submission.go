package service

import (
	"context"
	"errors"
	"sync"

	"github.com/argentech/argentech-backend/internal/logging"
	"github.com/argentech/argentech-backend/internal/metrics"
	"github.com/argentech/argentech-backend/internal/projects/domain"
)

// Store is the write side of the persistence collaborator.
type Store interface {
	InsertProject(ctx context.Context, d domain.ProjectDraft) (domain.ProjectID, error)
	InsertFounders(ctx context.Context, founders []domain.FounderDraft) error
}

// TxStore is implemented by stores that can write a project and its founders
// atomically. It must report failures as *domain.PersistenceError.
type TxStore interface {
	SubmitTx(ctx context.Context, d domain.ProjectDraft, founders []domain.FounderDraft) (domain.ProjectID, error)
}

// SuccessHook runs after a submission succeeded, before its result is released.
type SuccessHook func(ctx context.Context, id domain.ProjectID)

// Workflow validates and persists a project together with its founders.
//
// The default path is two sequential writes. If the founders write fails the
// project stays in the store without founders; nothing is rolled back.
type Workflow struct {
	store         Store
	vocab         *domain.Vocabulary
	transactional bool
	onSuccess     SuccessHook
	observer      func(State)
	metrics       *metrics.Metrics
}

type Option func(*Workflow)

// WithTransactional makes the workflow use TxStore when the store supports it.
func WithTransactional(on bool) Option {
	return func(w *Workflow) { w.transactional = on }
}

func WithSuccessHook(h SuccessHook) Option {
	return func(w *Workflow) { w.onSuccess = h }
}

// WithObserver receives every state transition of every attempt.
func WithObserver(fn func(State)) Option {
	return func(w *Workflow) { w.observer = fn }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

// NewWorkflow creates a submission workflow. A nil vocabulary disables the
// enumerated value checks.
func NewWorkflow(store Store, vocab *domain.Vocabulary, opts ...Option) *Workflow {
	w := &Workflow{store: store, vocab: vocab}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Submit runs one attempt to completion and returns the new project's id.
// Errors are *domain.ValidationError or *domain.PersistenceError.
func (w *Workflow) Submit(ctx context.Context, draft domain.ProjectDraft, founders []domain.FounderDraft) (domain.ProjectID, error) {
	a := w.newAttempt()
	w.run(ctx, a, draft, founders)
	return a.Wait()
}

// Start runs one attempt in the background. The returned Attempt reports its
// state while in flight and its result once done.
func (w *Workflow) Start(ctx context.Context, draft domain.ProjectDraft, founders []domain.FounderDraft) *Attempt {
	a := w.newAttempt()
	a.transition(StateValidating)
	go w.run(ctx, a, draft, founders)
	return a
}

func (w *Workflow) newAttempt() *Attempt {
	return &Attempt{state: StateIdle, done: make(chan struct{}), observer: w.observer}
}

func (w *Workflow) run(ctx context.Context, a *Attempt, draft domain.ProjectDraft, founders []domain.FounderDraft) {
	defer a.close()
	log := logging.Op(ctx, "projects.submit")

	a.transition(StateValidating)
	draft = draft.Normalize()
	normalized := make([]domain.FounderDraft, len(founders))
	for i, f := range founders {
		normalized[i] = f.Normalize()
	}

	if err := Validate(draft, normalized, w.vocab); err != nil {
		log.WithError(err).Info("submission rejected")
		w.finish(a, StateValidationFailed, "", err)
		return
	}

	// Once writing starts the attempt runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	if tx, ok := w.store.(TxStore); ok && w.transactional {
		w.runTx(ctx, a, tx, draft, normalized)
		return
	}

	a.transition(StateWritingProject)
	id, err := w.store.InsertProject(ctx, draft)
	if err != nil {
		log.WithError(err).Error("failed to insert project")
		w.finish(a, StateProjectWriteFailed, "", &domain.PersistenceError{Phase: domain.PhaseProject, Err: err})
		return
	}

	a.transition(StateWritingFounders)
	linked := make([]domain.FounderDraft, len(normalized))
	for i, f := range normalized {
		f.ProjectID = id
		linked[i] = f
	}
	if err := w.store.InsertFounders(ctx, linked); err != nil {
		log.WithError(err).
			WithField("project_id", id).
			Error("failed to insert founders, project left without founders")
		w.finish(a, StateFounderWriteFailed, id, &domain.PersistenceError{Phase: domain.PhaseFounders, Err: err})
		return
	}

	log.WithField("project_id", id).WithField("founders", len(linked)).Info("project submitted")
	w.finish(a, StateSucceeded, id, nil)
	w.succeeded(ctx, id)
}

func (w *Workflow) runTx(ctx context.Context, a *Attempt, tx TxStore, draft domain.ProjectDraft, founders []domain.FounderDraft) {
	log := logging.Op(ctx, "projects.submit")

	a.transition(StateWritingProject)
	id, err := tx.SubmitTx(ctx, draft, founders)
	if err != nil {
		var pe *domain.PersistenceError
		if !errors.As(err, &pe) {
			pe = &domain.PersistenceError{Phase: domain.PhaseProject, Err: err}
		}
		log.WithError(err).WithField("phase", pe.Phase).Error("transactional submission failed")
		state := StateProjectWriteFailed
		if pe.Phase == domain.PhaseFounders {
			state = StateFounderWriteFailed
		}
		w.finish(a, state, "", pe)
		return
	}

	log.WithField("project_id", id).WithField("founders", len(founders)).Info("project submitted")
	w.finish(a, StateSucceeded, id, nil)
	w.succeeded(ctx, id)
}

func (w *Workflow) finish(a *Attempt, s State, id domain.ProjectID, err error) {
	a.complete(s, id, err)
	w.metrics.ObserveSubmission(s.String())
}

func (w *Workflow) succeeded(ctx context.Context, id domain.ProjectID) {
	if w.onSuccess != nil {
		w.onSuccess(ctx, id)
	}
}

// Attempt is one run of the workflow. It is safe for concurrent use.
type Attempt struct {
	mu       sync.Mutex
	state    State
	id       domain.ProjectID
	err      error
	done     chan struct{}
	once     sync.Once
	observer func(State)
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Pending reports whether the attempt has started and not reached a terminal state.
// Callers use it to block re-submission and show a busy indicator.
func (a *Attempt) Pending() bool {
	s := a.State()
	return s != StateIdle && !s.Terminal()
}

// Done is closed once the result is available.
func (a *Attempt) Done() <-chan struct{} { return a.done }

// Wait blocks until the attempt finishes.
func (a *Attempt) Wait() (domain.ProjectID, error) {
	<-a.done
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.id, a.err
}

func (a *Attempt) transition(s State) {
	a.mu.Lock()
	if a.state == s {
		a.mu.Unlock()
		return
	}
	a.state = s
	a.mu.Unlock()
	if a.observer != nil {
		a.observer(s)
	}
}

func (a *Attempt) complete(s State, id domain.ProjectID, err error) {
	a.mu.Lock()
	a.id, a.err = id, err
	a.mu.Unlock()
	a.transition(s)
}

func (a *Attempt) close() {
	a.once.Do(func() { close(a.done) })
}
