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

// ManageTokens exposes the token ledger for funding identities
type ManageTokens struct {
	uow    unitOfWork
	ledger TokenLedger
}

// NewManageTokens creates a new token use case
func NewManageTokens(store Store, ledger TokenLedger, sink EventSink, clock Clock, log *slog.Logger) *ManageTokens {
	return &ManageTokens{
		uow:    newUnitOfWork(store, sink, clock, log, "tokens"),
		ledger: ledger,
	}
}

// TokenAccountResult is returned by token mutations
type TokenAccountResult struct {
	Account *models.TokenAccount
	Events  []events.Event
}

// CreateAccount opens owner's canonical account for mint. It is a no-op
// when the account already exists.
func (m *ManageTokens) CreateAccount(ctx context.Context, mint, owner common.Address) (*TokenAccountResult, error) {
	if mint == (common.Address{}) || owner == (common.Address{}) {
		return nil, fmt.Errorf("%w: mint and owner must be set", domain.ErrInvalidAddress)
	}

	var acct *models.TokenAccount
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		var err error
		acct, err = m.ledger.OpenAccount(tx, mint, owner)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return &TokenAccountResult{Account: acct, Events: evts}, nil
}

// MintTo credits newly minted tokens to owner's account for mint,
// opening it first when needed.
func (m *ManageTokens) MintTo(ctx context.Context, mint, owner common.Address, amount uint64) (*TokenAccountResult, error) {
	if amount == 0 {
		return nil, domain.ErrInvalidAmount
	}

	var acct *models.TokenAccount
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		a, err := m.ledger.OpenAccount(tx, mint, owner)
		if err != nil {
			return nil, err
		}
		if err := m.ledger.MintTo(tx, a.Key, amount); err != nil {
			return nil, err
		}
		if acct, err = tx.GetTokenAccount(a.Key); err != nil {
			return nil, err
		}
		return []events.Event{events.MintToEvent{Mint: mint, Account: a.Key, Amount: amount}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &TokenAccountResult{Account: acct, Events: evts}, nil
}

// Account returns one token account.
func (m *ManageTokens) Account(ctx context.Context, key common.Address) (*models.TokenAccount, error) {
	var acct *models.TokenAccount
	err := m.uow.store.View(ctx, func(tx Tx) error {
		var err error
		acct, err = tx.GetTokenAccount(key)
		return err
	})
	return acct, err
}

// ListAccounts returns every account held by owner.
func (m *ManageTokens) ListAccounts(ctx context.Context, owner common.Address) ([]*models.TokenAccount, error) {
	var out []*models.TokenAccount
	err := m.uow.store.View(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListTokenAccounts(owner)
		return err
	})
	return out, err
}
