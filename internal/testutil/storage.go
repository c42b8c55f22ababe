package testutil

import (
	"context"
	"sync"

	"github.com/mcoot/eventgames/internal/model"
	"github.com/mcoot/eventgames/internal/storage"
	"github.com/mcoot/eventgames/internal/storage/memory"
)

// FailingStorage is a memory store whose result operations and Ping fail
// while an error is set. Participant and team operations keep working.
type FailingStorage struct {
	*memory.Storage

	mu  sync.RWMutex
	err error
}

var _ storage.Storage = (*FailingStorage)(nil)

// NewFailingStorage creates a store that fails result operations with err
func NewFailingStorage(err error) *FailingStorage {
	return &FailingStorage{Storage: memory.New(), err: err}
}

// SetErr changes the injected error; nil restores normal behaviour
func (f *FailingStorage) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FailingStorage) current() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

func (f *FailingStorage) InsertResult(ctx context.Context, result *model.GameResult) (bool, error) {
	if err := f.current(); err != nil {
		return false, err
	}
	return f.Storage.InsertResult(ctx, result)
}

func (f *FailingStorage) UpsertBestResult(ctx context.Context, result *model.GameResult) (model.SubmitOutcome, *model.GameResult, error) {
	if err := f.current(); err != nil {
		return "", nil, err
	}
	return f.Storage.UpsertBestResult(ctx, result)
}

func (f *FailingStorage) GetResultsForParticipant(ctx context.Context, id model.ParticipantID) ([]*model.GameResult, error) {
	if err := f.current(); err != nil {
		return nil, err
	}
	return f.Storage.GetResultsForParticipant(ctx, id)
}

func (f *FailingStorage) ListResults(ctx context.Context) ([]*model.GameResult, error) {
	if err := f.current(); err != nil {
		return nil, err
	}
	return f.Storage.ListResults(ctx)
}

func (f *FailingStorage) DeleteAllResults(ctx context.Context) (int, error) {
	if err := f.current(); err != nil {
		return 0, err
	}
	return f.Storage.DeleteAllResults(ctx)
}

func (f *FailingStorage) Ping(ctx context.Context) error {
	if err := f.current(); err != nil {
		return err
	}
	return f.Storage.Ping(ctx)
}
