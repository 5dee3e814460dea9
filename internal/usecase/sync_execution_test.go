package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

type mockSafeClient struct {
	mock.Mock
}

func (m *mockSafeClient) GetTransactionExecutionInfo(ctx context.Context, safeTxHash string) (*models.SafeExecutionInfo, error) {
	args := m.Called(ctx, safeTxHash)
	if info := args.Get(0); info != nil {
		return info.(*models.SafeExecutionInfo), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSyncExecution(t *testing.T) {
	const (
		safeTxHash = "0x5f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0"
		execTxHash = "0xabc0000000000000000000000000000000000000000000000000000000000def"
	)

	env := newTestEnv(t)
	p := passedProposal(t, env)
	queued, err := env.proposals.Queue(env.ctx, usecase.QueueProposalParams{Proposal: p.Key, SafeTxHash: safeTxHash})
	require.NoError(t, err)

	safe := &mockSafeClient{}
	sync := usecase.NewSyncExecution(env.store, safe, env.sink, env.clock, usecase.NopProgress{}, discardLogger())

	safe.On("GetTransactionExecutionInfo", mock.Anything, safeTxHash).Return(&models.SafeExecutionInfo{
		Confirmations:         1,
		ConfirmationsRequired: 2,
	}, nil).Once()

	res, err := sync.Execute(env.ctx, usecase.SyncExecutionParams{Proposal: p.Key})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.False(t, res.Transactions[0].Executed)
	assert.Equal(t, 1, res.Transactions[0].Confirmations)
	assert.Empty(t, res.Events)

	safe.On("GetTransactionExecutionInfo", mock.Anything, safeTxHash).Return(&models.SafeExecutionInfo{
		IsExecuted:            true,
		TxHash:                execTxHash,
		Confirmations:         2,
		ConfirmationsRequired: 2,
	}, nil).Once()

	env.advance(60)
	res, err = sync.Execute(env.ctx, usecase.SyncExecutionParams{})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	synced := res.Transactions[0]
	assert.True(t, synced.Executed)
	assert.True(t, synced.NewlyExecuted)
	assert.Equal(t, execTxHash, synced.ExecutionTxHash)
	assert.Equal(t, queued.Transaction.Key, synced.Transaction)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "ProposalExecuted", res.Events[0].EventName())

	view, err := env.governance.Proposal(env.ctx, p.Key)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusExecuted, view.Transaction.Status)
	assert.Equal(t, env.clock.Now(), view.Transaction.ExecutedAt)

	// already executed: no further Safe query
	res, err = sync.Execute(env.ctx, usecase.SyncExecutionParams{Proposal: p.Key})
	require.NoError(t, err)
	assert.True(t, res.Transactions[0].Executed)
	assert.False(t, res.Transactions[0].NewlyExecuted)

	safe.AssertExpectations(t)
}

func TestSyncExecution_Errors(t *testing.T) {
	t.Run("proposal not queued", func(t *testing.T) {
		env := newTestEnv(t)
		p := passedProposal(t, env)
		sync := usecase.NewSyncExecution(env.store, &mockSafeClient{}, env.sink, env.clock, usecase.NopProgress{}, discardLogger())

		_, err := sync.Execute(env.ctx, usecase.SyncExecutionParams{Proposal: p.Key})
		assert.ErrorIs(t, err, domain.ErrProposalNotQueued)
	})

	t.Run("queued without safe hash", func(t *testing.T) {
		env := newTestEnv(t)
		p := passedProposal(t, env)
		_, err := env.proposals.Queue(env.ctx, usecase.QueueProposalParams{Proposal: p.Key})
		require.NoError(t, err)
		sync := usecase.NewSyncExecution(env.store, &mockSafeClient{}, env.sink, env.clock, usecase.NopProgress{}, discardLogger())

		_, err = sync.Execute(env.ctx, usecase.SyncExecutionParams{Proposal: p.Key})
		assert.ErrorIs(t, err, domain.ErrMissingSafeTxHash)

		res, err := sync.Execute(env.ctx, usecase.SyncExecutionParams{})
		require.NoError(t, err)
		assert.Empty(t, res.Transactions)
	})

	t.Run("service failure is reported per transaction", func(t *testing.T) {
		const safeTxHash = "0x1111111111111111111111111111111111111111111111111111111111111111"
		env := newTestEnv(t)
		p := passedProposal(t, env)
		_, err := env.proposals.Queue(env.ctx, usecase.QueueProposalParams{Proposal: p.Key, SafeTxHash: safeTxHash})
		require.NoError(t, err)

		safe := &mockSafeClient{}
		safe.On("GetTransactionExecutionInfo", mock.Anything, safeTxHash).Return(nil, errors.New("service unavailable"))
		sync := usecase.NewSyncExecution(env.store, safe, env.sink, env.clock, usecase.NopProgress{}, discardLogger())

		res, err := sync.Execute(env.ctx, usecase.SyncExecutionParams{Proposal: p.Key})
		require.NoError(t, err)
		require.Len(t, res.Transactions, 1)
		assert.Equal(t, "service unavailable", res.Transactions[0].Error)
		assert.False(t, res.Transactions[0].Executed)
	})
}
