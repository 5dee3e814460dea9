package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// SyncExecution marks queued proposals executed once their Safe
// transaction went through
type SyncExecution struct {
	uow        unitOfWork
	safeClient SafeClient
	progress   ProgressSink
}

// NewSyncExecution creates a new execution sync use case
func NewSyncExecution(store Store, safeClient SafeClient, sink EventSink, clock Clock, progress ProgressSink, log *slog.Logger) *SyncExecution {
	return &SyncExecution{
		uow:        newUnitOfWork(store, sink, clock, log, "sync"),
		safeClient: safeClient,
		progress:   progress,
	}
}

// SyncExecutionParams selects what to sync. A zero Proposal syncs every
// queued proposal of Governor (or of all governors).
type SyncExecutionParams struct {
	Governor common.Address
	Proposal common.Address
}

// SyncedTransaction is the outcome for one queued transaction
type SyncedTransaction struct {
	Proposal              common.Address `json:"proposal" yaml:"proposal"`
	Transaction           common.Address `json:"transaction" yaml:"transaction"`
	SafeTxHash            string         `json:"safeTxHash" yaml:"safeTxHash"`
	Executed              bool           `json:"executed" yaml:"executed"`
	NewlyExecuted         bool           `json:"newlyExecuted" yaml:"newlyExecuted"`
	ExecutionTxHash       string         `json:"executionTxHash,omitempty" yaml:"executionTxHash,omitempty"`
	Confirmations         int            `json:"confirmations" yaml:"confirmations"`
	ConfirmationsRequired int            `json:"confirmationsRequired" yaml:"confirmationsRequired"`
	Error                 string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// SyncExecutionResult contains the result of a sync run
type SyncExecutionResult struct {
	Transactions []*SyncedTransaction
	Events       []events.Event
}

// Execute queries the Safe Transaction Service outside any unit of work
// and then records each execution in its own unit.
func (s *SyncExecution) Execute(ctx context.Context, params SyncExecutionParams) (*SyncExecutionResult, error) {
	pending, err := s.collect(ctx, params)
	if err != nil {
		return nil, err
	}

	result := &SyncExecutionResult{}
	for i, q := range pending {
		s.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "sync",
			Current: i + 1,
			Total:   len(pending),
			Message: fmt.Sprintf("Checking Safe transaction %s", q.SafeTxHash),
			Spinner: true,
		})

		synced := &SyncedTransaction{
			Proposal:    q.Proposal,
			Transaction: q.Key,
			SafeTxHash:  q.SafeTxHash,
			Executed:    q.Status == models.TransactionStatusExecuted,
		}
		result.Transactions = append(result.Transactions, synced)
		if synced.Executed {
			synced.ExecutionTxHash = q.ExecutionTxHash
			continue
		}

		info, err := s.safeClient.GetTransactionExecutionInfo(ctx, q.SafeTxHash)
		if err != nil {
			synced.Error = err.Error()
			continue
		}
		synced.Confirmations = info.Confirmations
		synced.ConfirmationsRequired = info.ConfirmationsRequired
		if !info.IsExecuted {
			continue
		}

		evts, err := s.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
			return markExecuted(tx, q.Key, info.TxHash, now)
		})
		if err != nil {
			synced.Error = err.Error()
			continue
		}
		synced.Executed = true
		synced.NewlyExecuted = len(evts) > 0
		synced.ExecutionTxHash = info.TxHash
		result.Events = append(result.Events, evts...)
	}
	s.progress.OnProgress(ctx, ProgressEvent{Stage: "sync", Spinner: false})

	return result, nil
}

// collect returns the queued transactions to check.
func (s *SyncExecution) collect(ctx context.Context, params SyncExecutionParams) ([]*models.QueuedTransaction, error) {
	var out []*models.QueuedTransaction
	err := s.uow.store.View(ctx, func(tx Tx) error {
		if params.Proposal != (common.Address{}) {
			p, err := tx.GetProposal(params.Proposal)
			if err != nil {
				return err
			}
			if p.QueuedAt == 0 {
				return domain.ErrProposalNotQueued
			}
			q, err := tx.GetQueuedTransaction(p.QueuedTransaction)
			if err != nil {
				return err
			}
			if q.SafeTxHash == "" {
				return domain.ErrMissingSafeTxHash
			}
			out = append(out, q)
			return nil
		}

		proposals, err := tx.ListProposals(ProposalFilter{Governor: params.Governor})
		if err != nil {
			return err
		}
		for _, p := range proposals {
			if p.QueuedAt == 0 {
				continue
			}
			q, err := tx.GetQueuedTransaction(p.QueuedTransaction)
			if err != nil {
				return err
			}
			if q.SafeTxHash == "" || q.Status == models.TransactionStatusExecuted {
				continue
			}
			out = append(out, q)
		}
		return nil
	})
	return out, err
}

// markExecuted is a no-op when another run already recorded the execution.
func markExecuted(tx Tx, key common.Address, executionTxHash string, now int64) ([]events.Event, error) {
	q, err := tx.GetQueuedTransaction(key)
	if err != nil {
		return nil, err
	}
	if q.Status == models.TransactionStatusExecuted {
		return nil, nil
	}

	q.Status = models.TransactionStatusExecuted
	q.ExecutedAt = now
	q.ExecutionTxHash = executionTxHash
	if err := tx.SaveQueuedTransaction(q); err != nil {
		return nil, err
	}
	return []events.Event{events.ProposalExecutedEvent{
		Proposal:        q.Proposal,
		Transaction:     q.Key,
		SafeTxHash:      q.SafeTxHash,
		ExecutionTxHash: executionTxHash,
	}}, nil
}
