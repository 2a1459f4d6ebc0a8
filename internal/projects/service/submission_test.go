package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argentech/argentech-backend/internal/projects/domain"
)

// memStore records every call and keeps what was written.
type memStore struct {
	mu sync.Mutex

	nextID       domain.ProjectID
	projectErr   error
	foundersErr  error
	block        chan struct{}
	projectCalls int
	founderCalls int
	projects     map[domain.ProjectID]domain.ProjectDraft
	founders     []domain.FounderDraft
	sawCancelled bool
}

func newMemStore(id domain.ProjectID) *memStore {
	return &memStore{nextID: id, projects: map[domain.ProjectID]domain.ProjectDraft{}}
}

func (m *memStore) InsertProject(ctx context.Context, d domain.ProjectDraft) (domain.ProjectID, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projectCalls++
	if ctx.Err() != nil {
		m.sawCancelled = true
	}
	if m.projectErr != nil {
		return "", m.projectErr
	}
	m.projects[m.nextID] = d
	return m.nextID, nil
}

func (m *memStore) InsertFounders(ctx context.Context, founders []domain.FounderDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.founderCalls++
	if m.foundersErr != nil {
		return m.foundersErr
	}
	m.founders = append(m.founders, founders...)
	return nil
}

func (m *memStore) foundersOf(id domain.ProjectID) []domain.FounderDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.FounderDraft
	for _, f := range m.founders {
		if f.ProjectID == id {
			out = append(out, f)
		}
	}
	return out
}

func testVocab() *domain.Vocabulary {
	return domain.NewVocabulary([]string{"Córdoba", "Mendoza"}, []string{"Software", "Biotech"})
}

func TestSubmit_Success(t *testing.T) {
	store := newMemStore("p1")
	var hooked domain.ProjectID
	w := NewWorkflow(store, testVocab(), WithSuccessHook(func(ctx context.Context, id domain.ProjectID) {
		hooked = id
	}))

	id, err := w.Submit(context.Background(),
		domain.ProjectDraft{Name: " DataCo ", Industry: "Software", Province: "Córdoba"},
		[]domain.FounderDraft{
			{Name: "Ana", Province: "Córdoba"},
			{Name: "Beto", Contact: "beto@example.com"},
		})

	require.NoError(t, err)
	assert.Equal(t, domain.ProjectID("p1"), id)
	assert.Equal(t, domain.ProjectID("p1"), hooked)
	assert.Equal(t, "DataCo", store.projects["p1"].Name)

	founders := store.foundersOf("p1")
	require.Len(t, founders, 2)
	assert.Equal(t, "Ana", founders[0].Name)
	assert.Equal(t, "Beto", founders[1].Name)
	assert.Equal(t, 1, store.founderCalls, "founders are written in one bulk call")
}

func TestSubmit_ValidationHappensBeforeAnyWrite(t *testing.T) {
	cases := []struct {
		name     string
		draft    domain.ProjectDraft
		founders []domain.FounderDraft
		msg      string
	}{
		{
			name:     "missing province",
			draft:    domain.ProjectDraft{Name: "X", Province: ""},
			founders: []domain.FounderDraft{{Name: "Y"}},
			msg:      domain.MsgMissingProjectFields,
		},
		{
			name:     "missing name",
			draft:    domain.ProjectDraft{Name: "   ", Province: "Córdoba"},
			founders: []domain.FounderDraft{{Name: "Y"}},
			msg:      domain.MsgMissingProjectFields,
		},
		{
			name:     "blank founder name",
			draft:    domain.ProjectDraft{Name: "X", Province: "Córdoba"},
			founders: []domain.FounderDraft{{Name: "Y"}, {Name: ""}},
			msg:      domain.MsgMissingFounderFields,
		},
		{
			name:     "no founders",
			draft:    domain.ProjectDraft{Name: "X", Province: "Córdoba"},
			founders: nil,
			msg:      domain.MsgMissingFounderFields,
		},
		{
			name:     "unknown province",
			draft:    domain.ProjectDraft{Name: "X", Province: "Atlantis"},
			founders: []domain.FounderDraft{{Name: "Y"}},
			msg:      domain.MsgInvalidProjectFields,
		},
		{
			name:     "unknown industry",
			draft:    domain.ProjectDraft{Name: "X", Province: "Córdoba", Industry: "Mining"},
			founders: []domain.FounderDraft{{Name: "Y"}},
			msg:      domain.MsgInvalidProjectFields,
		},
		{
			name:     "unknown founder province",
			draft:    domain.ProjectDraft{Name: "X", Province: "Córdoba"},
			founders: []domain.FounderDraft{{Name: "Y", Province: "Atlantis"}},
			msg:      domain.MsgInvalidFounderFields,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore("p1")
			w := NewWorkflow(store, testVocab())

			_, err := w.Submit(context.Background(), tc.draft, tc.founders)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.msg, ve.Message)
			assert.Equal(t, 0, store.projectCalls)
			assert.Equal(t, 0, store.founderCalls)
		})
	}
}

func TestSubmit_WithoutVocabularySkipsValueChecks(t *testing.T) {
	store := newMemStore("p1")
	w := NewWorkflow(store, nil)

	_, err := w.Submit(context.Background(),
		domain.ProjectDraft{Name: "X", Province: "Anywhere"},
		[]domain.FounderDraft{{Name: "Y"}})
	require.NoError(t, err)
}

func TestSubmit_ProjectFailureWritesNoFounders(t *testing.T) {
	store := newMemStore("p1")
	store.projectErr = errors.New("insert rejected")
	w := NewWorkflow(store, testVocab())

	_, err := w.Submit(context.Background(),
		domain.ProjectDraft{Name: "X", Province: "Córdoba"},
		[]domain.FounderDraft{{Name: "Y"}})

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.PhaseProject, pe.Phase)
	assert.ErrorIs(t, err, store.projectErr)
	assert.Equal(t, 1, store.projectCalls)
	assert.Equal(t, 0, store.founderCalls)
}

func TestSubmit_FounderFailureLeavesOrphan(t *testing.T) {
	store := newMemStore("p1")
	store.foundersErr = errors.New("insert rejected")
	hookCalled := false
	w := NewWorkflow(store, testVocab(), WithSuccessHook(func(context.Context, domain.ProjectID) {
		hookCalled = true
	}))

	_, err := w.Submit(context.Background(),
		domain.ProjectDraft{Name: "X", Province: "Córdoba"},
		[]domain.FounderDraft{{Name: "Y"}})

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.PhaseFounders, pe.Phase)

	require.Len(t, store.projects, 1)
	_, ok := store.projects["p1"]
	assert.True(t, ok)
	assert.Empty(t, store.foundersOf("p1"))
	assert.False(t, hookCalled)
}

func TestSubmit_ObservedTransitions(t *testing.T) {
	run := func(store *memStore) []State {
		var mu sync.Mutex
		var seen []State
		w := NewWorkflow(store, testVocab(), WithObserver(func(s State) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		}))
		_, _ = w.Submit(context.Background(),
			domain.ProjectDraft{Name: "X", Province: "Córdoba"},
			[]domain.FounderDraft{{Name: "Y"}})
		return seen
	}

	assert.Equal(t,
		[]State{StateValidating, StateWritingProject, StateWritingFounders, StateSucceeded},
		run(newMemStore("p1")))

	failing := newMemStore("p1")
	failing.foundersErr = errors.New("boom")
	assert.Equal(t,
		[]State{StateValidating, StateWritingProject, StateWritingFounders, StateFounderWriteFailed},
		run(failing))

	failing = newMemStore("p1")
	failing.projectErr = errors.New("boom")
	assert.Equal(t,
		[]State{StateValidating, StateWritingProject, StateProjectWriteFailed},
		run(failing))
}

func TestStart_ExposesPendingState(t *testing.T) {
	store := newMemStore("p1")
	store.block = make(chan struct{})
	w := NewWorkflow(store, testVocab())

	a := w.Start(context.Background(),
		domain.ProjectDraft{Name: "X", Province: "Córdoba"},
		[]domain.FounderDraft{{Name: "Y"}})

	assert.True(t, a.Pending())
	select {
	case <-a.Done():
		t.Fatal("attempt finished while the store was blocked")
	case <-time.After(20 * time.Millisecond):
	}

	close(store.block)
	id, err := a.Wait()
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectID("p1"), id)
	assert.False(t, a.Pending())
	assert.Equal(t, StateSucceeded, a.State())
}

func TestSubmit_CallerCancellationDoesNotAbortWrites(t *testing.T) {
	store := newMemStore("p1")
	store.block = make(chan struct{})
	w := NewWorkflow(store, testVocab())

	ctx, cancel := context.WithCancel(context.Background())
	a := w.Start(ctx,
		domain.ProjectDraft{Name: "X", Province: "Córdoba"},
		[]domain.FounderDraft{{Name: "Y"}})

	cancel()
	close(store.block)

	_, err := a.Wait()
	require.NoError(t, err)
	assert.False(t, store.sawCancelled)
	assert.Len(t, store.foundersOf("p1"), 1)
}

// txStore adds the transactional path on top of memStore.
type txStore struct {
	*memStore
	txErr   error
	txCalls int
}

func (s *txStore) SubmitTx(ctx context.Context, d domain.ProjectDraft, founders []domain.FounderDraft) (domain.ProjectID, error) {
	s.txCalls++
	if s.txErr != nil {
		return "", s.txErr
	}
	return s.nextID, nil
}

func TestSubmit_Transactional(t *testing.T) {
	t.Run("used only when enabled", func(t *testing.T) {
		store := &txStore{memStore: newMemStore("p1")}
		w := NewWorkflow(store, testVocab())

		_, err := w.Submit(context.Background(),
			domain.ProjectDraft{Name: "X", Province: "Córdoba"},
			[]domain.FounderDraft{{Name: "Y"}})
		require.NoError(t, err)
		assert.Equal(t, 0, store.txCalls)
		assert.Equal(t, 1, store.projectCalls)
	})

	t.Run("founders failure keeps its phase", func(t *testing.T) {
		store := &txStore{
			memStore: newMemStore("p1"),
			txErr:    &domain.PersistenceError{Phase: domain.PhaseFounders, Err: errors.New("boom")},
		}
		var last State
		w := NewWorkflow(store, testVocab(),
			WithTransactional(true),
			WithObserver(func(s State) { last = s }))

		_, err := w.Submit(context.Background(),
			domain.ProjectDraft{Name: "X", Province: "Córdoba"},
			[]domain.FounderDraft{{Name: "Y"}})

		var pe *domain.PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, domain.PhaseFounders, pe.Phase)
		assert.Equal(t, StateFounderWriteFailed, last)
		assert.Equal(t, 1, store.txCalls)
		assert.Equal(t, 0, store.projectCalls)
	})

	t.Run("plain errors are reported as project phase", func(t *testing.T) {
		store := &txStore{memStore: newMemStore("p1"), txErr: errors.New("begin failed")}
		w := NewWorkflow(store, testVocab(), WithTransactional(true))

		_, err := w.Submit(context.Background(),
			domain.ProjectDraft{Name: "X", Province: "Córdoba"},
			[]domain.FounderDraft{{Name: "Y"}})

		var pe *domain.PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, domain.PhaseProject, pe.Phase)
	})
}

func TestState(t *testing.T) {
	assert.Equal(t, "writing_founders", StateWritingFounders.String())
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StateValidationFailed.Terminal())
	assert.False(t, StateWritingProject.Terminal())
	assert.False(t, StateIdle.Terminal())
}
