// File: services/mock_vote_store.go
package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"school-vote/models"
	"school-vote/store"
)

// ensure MockVoteStore implements store.VoteStore
var _ store.VoteStore = (*MockVoteStore)(nil)

// MockVoteStore is a testify mock of the vote store for service and
// controller tests.
type MockVoteStore struct {
	mock.Mock
}

func (m *MockVoteStore) InsertVote(ctx context.Context, rec models.VoteRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *MockVoteStore) QueryByEmail(ctx context.Context, email string) ([]models.VoteRecord, error) {
	args := m.Called(ctx, email)
	recs, _ := args.Get(0).([]models.VoteRecord)
	return recs, args.Error(1)
}

func (m *MockVoteStore) ListAll(ctx context.Context) ([]models.VoteRecord, error) {
	args := m.Called(ctx)
	recs, _ := args.Get(0).([]models.VoteRecord)
	return recs, args.Error(1)
}

func (m *MockVoteStore) DeleteAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockVoteStore) Close() error {
	return m.Called().Error(0)
}
