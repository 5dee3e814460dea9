package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/checked"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// InstantWithdraw redeems an escrow early through a redeemer: the
// principal goes to the treasury and the owner is paid receipt tokens
// for the escrow's voting power.
type InstantWithdraw struct {
	uow    unitOfWork
	ledger TokenLedger
}

// NewInstantWithdraw creates a new instant withdraw use case
func NewInstantWithdraw(store Store, ledger TokenLedger, sink EventSink, clock Clock, log *slog.Logger) *InstantWithdraw {
	return &InstantWithdraw{
		uow:    newUnitOfWork(store, sink, clock, log, "instant_withdraw"),
		ledger: ledger,
	}
}

// InstantWithdrawParams contains parameters for an early redemption
type InstantWithdrawParams struct {
	Caller   common.Address
	Redeemer common.Address
	Escrow   common.Address
}

// InstantWithdrawResult contains the redemption outcome
type InstantWithdrawResult struct {
	Escrow        *models.Escrow         `json:"escrow" yaml:"escrow"`
	Redeemer      *models.LockerRedeemer `json:"redeemer" yaml:"redeemer"`
	Blacklist     *models.Blacklist      `json:"blacklist" yaml:"blacklist"`
	Amount        uint64                 `json:"amount" yaml:"amount"`
	VotingPower   uint64                 `json:"votingPower" yaml:"votingPower"`
	ReceiptAmount uint64                 `json:"receiptAmount" yaml:"receiptAmount"`
	Events        []events.Event         `json:"-" yaml:"-"`
}

// Execute redeems the escrow. Only the escrow owner may call it, and each
// escrow can be redeemed once.
func (w *InstantWithdraw) Execute(ctx context.Context, params InstantWithdrawParams) (*InstantWithdrawResult, error) {
	result := &InstantWithdrawResult{}
	evts, err := w.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		r, err := tx.GetRedeemer(params.Redeemer)
		if err != nil {
			return nil, err
		}
		escrow, err := tx.GetEscrow(params.Escrow)
		if err != nil {
			return nil, err
		}
		if escrow.Locker != r.Locker {
			return nil, domain.ErrEscrowLockerMismatch
		}
		if params.Caller != escrow.Owner {
			return nil, fmt.Errorf("%w: %s does not own escrow %s", domain.ErrUnauthorized, params.Caller.Hex(), escrow.Key.Hex())
		}
		l, err := tx.GetLocker(r.Locker)
		if err != nil {
			return nil, err
		}

		blacklistKey := domain.BlacklistKey(l.Key, escrow.Key)
		if err := validateWithdraw(tx, r, escrow, blacklistKey); err != nil {
			return nil, err
		}

		amount := escrow.Amount
		power, err := escrow.VotingPower(l.Params, now)
		if err != nil {
			return nil, err
		}
		// Floor division: the remainder stays with the redeemer.
		receipt, err := checked.Div(power, r.RedemptionRate)
		if err != nil {
			return nil, err
		}

		if err := w.ledger.Transfer(tx, escrow.Tokens, r.Treasury, escrow.Key, amount); err != nil {
			return nil, fmt.Errorf("failed to move escrow to treasury: %w", err)
		}
		userReceipt, err := w.ledger.OpenAccount(tx, r.ReceiptMint, escrow.Owner)
		if err != nil {
			return nil, err
		}
		if err := w.ledger.Transfer(tx, r.ReceiptAccount, userReceipt.Key, r.Key, receipt); err != nil {
			return nil, fmt.Errorf("failed to pay receipt tokens: %w", err)
		}

		if r.Amount, err = checked.Sub(r.Amount, receipt); err != nil {
			return nil, fmt.Errorf("%w: redeemer holds %d, need %d", domain.ErrInsufficientFunds, r.Amount, receipt)
		}
		if l.LockedSupply, err = checked.Sub(l.LockedSupply, amount); err != nil {
			return nil, err
		}
		escrow.Reset()

		entry := &models.Blacklist{
			Key:       blacklistKey,
			Locker:    l.Key,
			Escrow:    escrow.Key,
			Owner:     escrow.Owner,
			Timestamp: now,
		}
		if err := tx.SaveRedeemer(r); err != nil {
			return nil, err
		}
		if err := tx.SaveLocker(l); err != nil {
			return nil, err
		}
		if err := tx.SaveEscrow(escrow); err != nil {
			return nil, err
		}
		if err := tx.SaveBlacklist(entry); err != nil {
			return nil, err
		}

		result.Escrow = escrow
		result.Redeemer = r
		result.Blacklist = entry
		result.Amount = amount
		result.VotingPower = power
		result.ReceiptAmount = receipt
		return []events.Event{events.InstantWithdrawEvent{
			Locker:        l.Key,
			Escrow:        escrow.Key,
			Owner:         escrow.Owner,
			Amount:        amount,
			VotingPower:   power,
			ReceiptAmount: receipt,
			Timestamp:     now,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// validateWithdraw runs the redemption checks in order: escrow not empty,
// not blacklisted, redeemer active, escrow started before the cutoff.
func validateWithdraw(tx Tx, r *models.LockerRedeemer, escrow *models.Escrow, blacklistKey common.Address) error {
	if escrow.Amount == 0 {
		return domain.ErrEscrowEmpty
	}
	_, err := tx.GetBlacklist(blacklistKey)
	switch {
	case err == nil:
		return domain.ErrEscrowBlacklisted
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	if r.Status != models.RedeemerStatusActive {
		return domain.ErrRedeemerNotActive
	}
	if escrow.EscrowStartedAt >= r.CutoffDate {
		return fmt.Errorf("%w: started %d, cutoff %d", domain.ErrEscrowTooRecent, escrow.EscrowStartedAt, r.CutoffDate)
	}
	return nil
}
