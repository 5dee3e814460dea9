package smartwallet

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/checked"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// Wallet records queued instruction batches with their timelock ETA.
// Execution itself happens outside this process.
type Wallet struct {
	log *slog.Logger
}

func NewWallet(log *slog.Logger) *Wallet {
	return &Wallet{log: log.With("component", "smartwallet")}
}

// QueueTransaction stores a QUEUED transaction for the proposal. The ETA
// is now + delay, or NoETA when the governor has no timelock.
func (w *Wallet) QueueTransaction(tx usecase.Tx, req usecase.QueueTransactionRequest) (*models.QueuedTransaction, error) {
	if req.TimelockDelay < 0 {
		return nil, domain.ErrInvalidTimelockDelay
	}

	key := domain.QueuedTransactionKey(req.SmartWallet, req.Proposal)
	if _, err := tx.GetQueuedTransaction(key); err == nil {
		return nil, fmt.Errorf("%w: transaction %s", domain.ErrAlreadyExists, key.Hex())
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	eta := models.NoETA
	if req.TimelockDelay > 0 {
		var err error
		if eta, err = checked.AddSeconds(req.Now, uint64(req.TimelockDelay)); err != nil {
			return nil, err
		}
	}

	queued := &models.QueuedTransaction{
		Key:          key,
		SmartWallet:  req.SmartWallet,
		Proposal:     req.Proposal,
		Status:       models.TransactionStatusQueued,
		Instructions: req.Instructions,
		Proposer:     req.Proposer,
		QueuedAt:     req.Now,
		ETA:          eta,
		SafeTxHash:   req.SafeTxHash,
	}
	if err := tx.SaveQueuedTransaction(queued); err != nil {
		return nil, err
	}

	w.log.Debug("queued transaction", "transaction", key, "proposal", req.Proposal, "eta", eta)
	return queued, nil
}

var _ usecase.SmartWallet = (*Wallet)(nil)
