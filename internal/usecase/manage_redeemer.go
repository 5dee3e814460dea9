package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/checked"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// ManageRedeemer administers early-exit redeemers
type ManageRedeemer struct {
	uow      unitOfWork
	ledger   TokenLedger
	deployer common.Address
}

// NewManageRedeemer creates a new redeemer administration use case
func NewManageRedeemer(cfg *config.RuntimeConfig, store Store, ledger TokenLedger, sink EventSink, clock Clock, log *slog.Logger) *ManageRedeemer {
	return &ManageRedeemer{
		uow:      newUnitOfWork(store, sink, clock, log, "redeemer"),
		ledger:   ledger,
		deployer: cfg.Deployer,
	}
}

// CreateRedeemerParams contains parameters for creating a redeemer
type CreateRedeemerParams struct {
	Caller         common.Address
	Locker         common.Address
	ReceiptMint    common.Address
	Treasury       common.Address
	RedemptionRate uint64
	CutoffDate     int64
}

// RedeemerResult is returned by redeemer mutations
type RedeemerResult struct {
	Redeemer *models.LockerRedeemer
	Events   []events.Event
}

// Create opens an active, unfunded redeemer administered by the caller.
// Only the configured deployer may create redeemers.
func (m *ManageRedeemer) Create(ctx context.Context, params CreateRedeemerParams) (*RedeemerResult, error) {
	if m.deployer == (common.Address{}) {
		return nil, domain.ErrDeployerNotConfigured
	}
	if params.Caller != m.deployer {
		return nil, fmt.Errorf("%w: %s is not the redeemer deployer", domain.ErrUnauthorized, params.Caller.Hex())
	}
	if params.RedemptionRate == 0 {
		return nil, domain.ErrInvalidRedemptionRate
	}
	if params.ReceiptMint == (common.Address{}) {
		return nil, fmt.Errorf("%w: receipt mint must be set", domain.ErrInvalidAddress)
	}

	var redeemer *models.LockerRedeemer
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		if params.CutoffDate >= now {
			return nil, fmt.Errorf("%w: cutoff %d, now %d", domain.ErrInvalidCutoffDate, params.CutoffDate, now)
		}
		l, err := tx.GetLocker(params.Locker)
		if err != nil {
			return nil, err
		}
		if err := requireMint(tx, params.Treasury, l.TokenMint); err != nil {
			return nil, err
		}

		key := domain.RedeemerKey(l.Key, params.ReceiptMint)
		_, err = tx.GetRedeemer(key)
		if err := ensureAbsent(err); err != nil {
			return nil, fmt.Errorf("redeemer %s: %w", key.Hex(), err)
		}

		receipts, err := m.ledger.OpenAccount(tx, params.ReceiptMint, key)
		if err != nil {
			return nil, fmt.Errorf("failed to open receipt account: %w", err)
		}

		redeemer = &models.LockerRedeemer{
			Key:            key,
			Locker:         l.Key,
			Admin:          params.Caller,
			ReceiptMint:    params.ReceiptMint,
			ReceiptAccount: receipts.Key,
			Status:         models.RedeemerStatusActive,
			RedemptionRate: params.RedemptionRate,
			Treasury:       params.Treasury,
			CutoffDate:     params.CutoffDate,
		}
		if err := tx.SaveRedeemer(redeemer); err != nil {
			return nil, err
		}
		return []events.Event{events.CreateRedeemerEvent{
			Redeemer:       key,
			Locker:         l.Key,
			Admin:          params.Caller,
			ReceiptMint:    params.ReceiptMint,
			Treasury:       params.Treasury,
			RedemptionRate: params.RedemptionRate,
			CutoffDate:     params.CutoffDate,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &RedeemerResult{Redeemer: redeemer, Events: evts}, nil
}

// UpdateAdmin nominates a new admin. The nominee takes over only after
// calling AcceptAdmin.
func (m *ManageRedeemer) UpdateAdmin(ctx context.Context, caller, redeemerKey, newAdmin common.Address) (*RedeemerResult, error) {
	if newAdmin == (common.Address{}) {
		return nil, fmt.Errorf("%w: new admin must be set", domain.ErrInvalidAddress)
	}
	return m.adminUpdate(ctx, caller, redeemerKey, func(tx Tx, r *models.LockerRedeemer, now int64) (events.Event, error) {
		prev := r.PendingAdmin
		r.PendingAdmin = newAdmin
		return events.UpdateRedeemerAdminEvent{
			Redeemer:     r.Key,
			Admin:        r.Admin,
			PrevPending:  prev,
			PendingAdmin: newAdmin,
		}, nil
	})
}

// AcceptAdmin promotes the pending admin. Only the pending admin may call it.
func (m *ManageRedeemer) AcceptAdmin(ctx context.Context, caller, redeemerKey common.Address) (*RedeemerResult, error) {
	var redeemer *models.LockerRedeemer
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		r, err := tx.GetRedeemer(redeemerKey)
		if err != nil {
			return nil, err
		}
		if r.PendingAdmin == (common.Address{}) {
			return nil, domain.ErrNoPendingAdmin
		}
		if caller != r.PendingAdmin {
			return nil, fmt.Errorf("%w: %s is not the pending admin", domain.ErrUnauthorized, caller.Hex())
		}

		prev := r.Admin
		r.Admin = r.PendingAdmin
		r.PendingAdmin = common.Address{}
		if err := tx.SaveRedeemer(r); err != nil {
			return nil, err
		}
		redeemer = r
		return []events.Event{events.AcceptRedeemerAdminEvent{
			Redeemer:  r.Key,
			PrevAdmin: prev,
			NewAdmin:  r.Admin,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &RedeemerResult{Redeemer: redeemer, Events: evts}, nil
}

// UpdateTreasury changes where redeemed principal goes. The treasury must
// hold the locker's token.
func (m *ManageRedeemer) UpdateTreasury(ctx context.Context, caller, redeemerKey, treasury common.Address) (*RedeemerResult, error) {
	return m.adminUpdate(ctx, caller, redeemerKey, func(tx Tx, r *models.LockerRedeemer, now int64) (events.Event, error) {
		l, err := tx.GetLocker(r.Locker)
		if err != nil {
			return nil, err
		}
		if err := requireMint(tx, treasury, l.TokenMint); err != nil {
			return nil, err
		}
		prev := r.Treasury
		r.Treasury = treasury
		return events.UpdateTreasuryEvent{
			Redeemer:     r.Key,
			PrevTreasury: prev,
			NewTreasury:  treasury,
		}, nil
	})
}

// AddFunds deposits receipt tokens from an account owned by the admin.
func (m *ManageRedeemer) AddFunds(ctx context.Context, caller, redeemerKey, source common.Address, amount uint64) (*RedeemerResult, error) {
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}
	return m.adminUpdate(ctx, caller, redeemerKey, func(tx Tx, r *models.LockerRedeemer, now int64) (events.Event, error) {
		if source == (common.Address{}) {
			source = domain.TokenAccountKey(r.ReceiptMint, caller)
		}
		if err := requireMint(tx, source, r.ReceiptMint); err != nil {
			return nil, err
		}
		if err := m.ledger.Transfer(tx, source, r.ReceiptAccount, caller, amount); err != nil {
			return nil, fmt.Errorf("failed to deposit receipt tokens: %w", err)
		}

		prev := r.Amount
		var err error
		if r.Amount, err = checked.Add(r.Amount, amount); err != nil {
			return nil, err
		}
		return events.AddFundsEvent{
			Redeemer:   r.Key,
			Admin:      caller,
			Amount:     amount,
			PrevAmount: prev,
			NewAmount:  r.Amount,
		}, nil
	})
}

// RemoveAllFundsResult contains the emptied redeemer and the amount removed
type RemoveAllFundsResult struct {
	Redeemer *models.LockerRedeemer
	Amount   uint64
	Events   []events.Event
}

// RemoveAllFunds withdraws the whole funded balance to an account of the
// admin. It fails when there is nothing to remove.
func (m *ManageRedeemer) RemoveAllFunds(ctx context.Context, caller, redeemerKey, destination common.Address) (*RemoveAllFundsResult, error) {
	var removed uint64
	res, err := m.adminUpdate(ctx, caller, redeemerKey, func(tx Tx, r *models.LockerRedeemer, now int64) (events.Event, error) {
		if r.Amount == 0 {
			return nil, fmt.Errorf("%w: no funds to remove", domain.ErrInsufficientFunds)
		}
		dest := destination
		if dest == (common.Address{}) {
			acct, err := m.ledger.OpenAccount(tx, r.ReceiptMint, caller)
			if err != nil {
				return nil, err
			}
			dest = acct.Key
		}
		acct, err := tx.GetTokenAccount(dest)
		if err != nil {
			return nil, err
		}
		if acct.Mint != r.ReceiptMint || acct.Owner != caller {
			return nil, fmt.Errorf("%w: destination must be a receipt account of the admin", domain.ErrInvalidTokenAccount)
		}

		removed = r.Amount
		if err := m.ledger.Transfer(tx, r.ReceiptAccount, dest, r.Key, removed); err != nil {
			return nil, fmt.Errorf("failed to withdraw receipt tokens: %w", err)
		}
		r.Amount = 0
		return events.RemoveAllFundsEvent{
			Redeemer:    r.Key,
			Admin:       caller,
			Destination: dest,
			Amount:      removed,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &RemoveAllFundsResult{Redeemer: res.Redeemer, Amount: removed, Events: res.Events}, nil
}

// Toggle pauses or resumes redemptions.
func (m *ManageRedeemer) Toggle(ctx context.Context, caller, redeemerKey common.Address, status uint8) (*RedeemerResult, error) {
	next, err := models.ParseRedeemerStatus(status)
	if err != nil {
		return nil, err
	}
	return m.adminUpdate(ctx, caller, redeemerKey, func(tx Tx, r *models.LockerRedeemer, now int64) (events.Event, error) {
		prev := r.Status
		r.Status = next
		return events.ToggleRedeemerEvent{
			Redeemer:   r.Key,
			PrevStatus: prev,
			NewStatus:  next,
		}, nil
	})
}

// UpdateRate sets a new, different, non-zero redemption rate.
func (m *ManageRedeemer) UpdateRate(ctx context.Context, caller, redeemerKey common.Address, rate uint64) (*RedeemerResult, error) {
	if rate == 0 {
		return nil, domain.ErrInvalidRedemptionRate
	}
	return m.adminUpdate(ctx, caller, redeemerKey, func(tx Tx, r *models.LockerRedeemer, now int64) (events.Event, error) {
		if rate == r.RedemptionRate {
			return nil, domain.ErrRedemptionRateSame
		}
		prev := r.RedemptionRate
		r.RedemptionRate = rate
		return events.UpdateRedemptionRateEvent{
			Redeemer:     r.Key,
			PreviousRate: prev,
			NewRate:      rate,
		}, nil
	})
}

// Redeemer returns one redeemer.
func (m *ManageRedeemer) Redeemer(ctx context.Context, key common.Address) (*models.LockerRedeemer, error) {
	var r *models.LockerRedeemer
	err := m.uow.store.View(ctx, func(tx Tx) error {
		var err error
		r, err = tx.GetRedeemer(key)
		return err
	})
	return r, err
}

// ListRedeemers returns the redeemers of a locker.
func (m *ManageRedeemer) ListRedeemers(ctx context.Context, locker common.Address) ([]*models.LockerRedeemer, error) {
	var out []*models.LockerRedeemer
	err := m.uow.store.View(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListRedeemers(locker)
		return err
	})
	return out, err
}

// adminUpdate loads a redeemer, checks the caller is its admin, applies fn
// and saves it.
func (m *ManageRedeemer) adminUpdate(ctx context.Context, caller, redeemerKey common.Address, fn func(tx Tx, r *models.LockerRedeemer, now int64) (events.Event, error)) (*RedeemerResult, error) {
	var redeemer *models.LockerRedeemer
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		r, err := loadRedeemerAsAdmin(tx, caller, redeemerKey)
		if err != nil {
			return nil, err
		}
		evt, err := fn(tx, r, now)
		if err != nil {
			return nil, err
		}
		if err := tx.SaveRedeemer(r); err != nil {
			return nil, err
		}
		redeemer = r
		return []events.Event{evt}, nil
	})
	if err != nil {
		return nil, err
	}
	return &RedeemerResult{Redeemer: redeemer, Events: evts}, nil
}

func loadRedeemerAsAdmin(tx Tx, caller, redeemerKey common.Address) (*models.LockerRedeemer, error) {
	r, err := tx.GetRedeemer(redeemerKey)
	if err != nil {
		return nil, err
	}
	if caller != r.Admin {
		return nil, fmt.Errorf("%w: %s is not the redeemer admin", domain.ErrUnauthorized, caller.Hex())
	}
	return r, nil
}

// requireMint checks that account exists and holds mint.
func requireMint(tx Tx, account, mint common.Address) error {
	acct, err := tx.GetTokenAccount(account)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidTokenAccount, err)
	}
	if acct.Mint != mint {
		return fmt.Errorf("%w: account %s holds %s, want %s", domain.ErrInvalidTokenAccount, account.Hex(), acct.Mint.Hex(), mint.Hex())
	}
	return nil
}
