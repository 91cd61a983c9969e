package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssl2010/englishlearn-api/internal/domain"
	"github.com/ssl2010/englishlearn-api/internal/store"
)

// fakeSessionStore serves a fixed list of archival candidates and records
// status updates. Methods the sweeper never touches stay on the embedded
// nil interface.
type fakeSessionStore struct {
	store.SessionStore

	candidates []*domain.PracticeSession
	listErr    error
	updateErr  map[uuid.UUID]error
	updated    []*domain.PracticeSession
}

func (f *fakeSessionStore) ListCorrectedBefore(
	_ context.Context,
	_ time.Time,
	_ int,
) ([]*domain.PracticeSession, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.candidates, nil
}

func (f *fakeSessionStore) UpdateStatus(_ context.Context, session *domain.PracticeSession) error {
	if err := f.updateErr[session.ID]; err != nil {
		return err
	}
	f.updated = append(f.updated, session)
	return nil
}

func correctedSession(t *testing.T) *domain.PracticeSession {
	t.Helper()
	correctedAt := time.Now().UTC().Add(-48 * time.Hour)
	return &domain.PracticeSession{
		ID:          uuid.New(),
		StudentID:   uuid.New(),
		Title:       "unit 3 review",
		Status:      domain.SessionStatusCorrected,
		CreatedAt:   correctedAt.Add(-time.Hour),
		CorrectedAt: &correctedAt,
	}
}

func newTestSweeper(t *testing.T, sessions store.SessionStore) *RetentionSweeper {
	t.Helper()
	sweeper, err := NewRetentionSweeper(sessions, RetentionConfig{
		ArchiveAfter:  24 * time.Hour,
		SweepInterval: time.Minute,
	}, nil)
	require.NoError(t, err)
	return sweeper
}

func TestSweepArchivesOverdueSessions(t *testing.T) {
	t.Parallel()

	first := correctedSession(t)
	second := correctedSession(t)
	fake := &fakeSessionStore{candidates: []*domain.PracticeSession{first, second}}

	newTestSweeper(t, fake).sweep(context.Background())

	require.Len(t, fake.updated, 2)
	for _, session := range fake.updated {
		assert.Equal(t, domain.SessionStatusArchived, session.Status)
		require.NotNil(t, session.ArchivedAt)
	}
}

func TestSweepSkipsFailingSession(t *testing.T) {
	t.Parallel()

	healthy := correctedSession(t)
	broken := correctedSession(t)
	fake := &fakeSessionStore{
		candidates: []*domain.PracticeSession{broken, healthy},
		updateErr:  map[uuid.UUID]error{broken.ID: errors.New("row locked")},
	}

	newTestSweeper(t, fake).sweep(context.Background())

	require.Len(t, fake.updated, 1)
	assert.Equal(t, healthy.ID, fake.updated[0].ID)
}

func TestSweepSkipsSessionInWrongState(t *testing.T) {
	t.Parallel()

	// An already-archived session should never be listed, but a repeat
	// archival must not be persisted if one slips through.
	stale := correctedSession(t)
	archivedAt := time.Now().UTC()
	stale.Status = domain.SessionStatusArchived
	stale.ArchivedAt = &archivedAt
	fake := &fakeSessionStore{candidates: []*domain.PracticeSession{stale}}

	newTestSweeper(t, fake).sweep(context.Background())

	assert.Empty(t, fake.updated)
}

func TestSweepToleratesListError(t *testing.T) {
	t.Parallel()

	fake := &fakeSessionStore{listErr: errors.New("db offline")}
	newTestSweeper(t, fake).sweep(context.Background())
	assert.Empty(t, fake.updated)
}

func TestSweepEmptyBacklog(t *testing.T) {
	t.Parallel()

	fake := &fakeSessionStore{}
	newTestSweeper(t, fake).sweep(context.Background())
	assert.Empty(t, fake.updated)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	fake := &fakeSessionStore{candidates: []*domain.PracticeSession{correctedSession(t)}}
	sweeper := newTestSweeper(t, fake)

	sweeper.Start()
	sweeper.Stop()

	assert.NotEmpty(t, fake.updated, "the initial sweep runs on start")
}

func TestNewRetentionSweeperValidation(t *testing.T) {
	t.Parallel()

	valid := RetentionConfig{ArchiveAfter: time.Hour, SweepInterval: time.Minute}

	_, err := NewRetentionSweeper(nil, valid, nil)
	assert.Error(t, err)

	_, err = NewRetentionSweeper(&fakeSessionStore{}, RetentionConfig{SweepInterval: time.Minute}, nil)
	assert.Error(t, err)

	_, err = NewRetentionSweeper(&fakeSessionStore{}, RetentionConfig{ArchiveAfter: time.Hour}, nil)
	assert.Error(t, err)
}
