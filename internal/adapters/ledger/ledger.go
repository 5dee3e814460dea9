package ledger

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/checked"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// Ledger keeps token balances as TokenAccount records in the store.
type Ledger struct {
	log *slog.Logger
}

func NewLedger(log *slog.Logger) *Ledger {
	return &Ledger{log: log.With("component", "ledger")}
}

// OpenAccount returns owner's account for mint, creating it when missing.
func (l *Ledger) OpenAccount(tx usecase.Tx, mint, owner common.Address) (*models.TokenAccount, error) {
	key := domain.TokenAccountKey(mint, owner)
	acct, err := tx.GetTokenAccount(key)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	acct = &models.TokenAccount{Key: key, Mint: mint, Owner: owner}
	if err := tx.SaveTokenAccount(acct); err != nil {
		return nil, err
	}
	l.log.Debug("opened token account", "account", key, "mint", mint, "owner", owner)
	return acct, nil
}

// Transfer moves amount between two accounts of the same mint.
func (l *Ledger) Transfer(tx usecase.Tx, from, to, authority common.Address, amount uint64) error {
	src, err := tx.GetTokenAccount(from)
	if err != nil {
		return err
	}
	if src.Owner != authority {
		return fmt.Errorf("%w: %s does not own token account %s", domain.ErrUnauthorized, authority.Hex(), from.Hex())
	}
	if amount == 0 || from == to {
		return nil
	}

	dst, err := tx.GetTokenAccount(to)
	if err != nil {
		return err
	}
	if src.Mint != dst.Mint {
		return fmt.Errorf("%w: mint mismatch %s != %s", domain.ErrInvalidTokenAccount, src.Mint.Hex(), dst.Mint.Hex())
	}

	if src.Amount < amount {
		return fmt.Errorf("%w: account %s holds %d, need %d", domain.ErrInsufficientFunds, from.Hex(), src.Amount, amount)
	}
	src.Amount -= amount
	if dst.Amount, err = checked.Add(dst.Amount, amount); err != nil {
		return err
	}

	if err := tx.SaveTokenAccount(src); err != nil {
		return err
	}
	if err := tx.SaveTokenAccount(dst); err != nil {
		return err
	}
	l.log.Debug("transfer", "from", from, "to", to, "amount", amount)
	return nil
}

// MintTo credits new tokens to an existing account.
func (l *Ledger) MintTo(tx usecase.Tx, account common.Address, amount uint64) error {
	acct, err := tx.GetTokenAccount(account)
	if err != nil {
		return err
	}
	if acct.Amount, err = checked.Add(acct.Amount, amount); err != nil {
		return err
	}
	return tx.SaveTokenAccount(acct)
}

var _ usecase.TokenLedger = (*Ledger)(nil)
