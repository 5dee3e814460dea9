package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/checked"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// LockAuthorityKind says through which path a lock was requested.
type LockAuthorityKind string

const (
	// LockAuthorityOwner is a lock sent directly by the escrow owner.
	LockAuthorityOwner LockAuthorityKind = "owner"
	// LockAuthorityProgram is a lock relayed by a program on behalf of
	// the owner. It needs a whitelist entry.
	LockAuthorityProgram LockAuthorityKind = "program"
	// LockAuthorityPermissionless is a lock on a locker without whitelist.
	LockAuthorityPermissionless LockAuthorityKind = "permissionless"
)

// LockAuthority is the authorization context of a lock call.
type LockAuthority struct {
	Kind LockAuthorityKind
	// ProgramID is the relaying program, only set for LockAuthorityProgram.
	ProgramID common.Address
}

// ParseLockAuthorityKind converts user input into a LockAuthorityKind.
func ParseLockAuthorityKind(s string) (LockAuthorityKind, error) {
	switch k := LockAuthorityKind(s); k {
	case LockAuthorityOwner, LockAuthorityProgram, LockAuthorityPermissionless:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidLockAuthority, s)
}

// ManageEscrow creates escrows and moves tokens in and out of them
type ManageEscrow struct {
	uow    unitOfWork
	ledger TokenLedger
}

// NewManageEscrow creates a new escrow use case
func NewManageEscrow(store Store, ledger TokenLedger, sink EventSink, clock Clock, log *slog.Logger) *ManageEscrow {
	return &ManageEscrow{
		uow:    newUnitOfWork(store, sink, clock, log, "escrow"),
		ledger: ledger,
	}
}

// EscrowResult is returned by escrow mutations
type EscrowResult struct {
	Escrow *models.Escrow
	Locker *models.Locker
	Events []events.Event
}

// Create opens an empty escrow for owner and its holding token account.
// The owner starts as its own vote delegate.
func (m *ManageEscrow) Create(ctx context.Context, lockerKey, owner common.Address) (*EscrowResult, error) {
	if owner == (common.Address{}) {
		return nil, fmt.Errorf("%w: escrow owner must be set", domain.ErrInvalidAddress)
	}

	result := &EscrowResult{}
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		l, err := tx.GetLocker(lockerKey)
		if err != nil {
			return nil, err
		}

		key := domain.EscrowKey(l.Key, owner)
		_, err = tx.GetEscrow(key)
		if err := ensureAbsent(err); err != nil {
			return nil, fmt.Errorf("escrow %s: %w", key.Hex(), err)
		}

		holding, err := m.ledger.OpenAccount(tx, l.TokenMint, key)
		if err != nil {
			return nil, fmt.Errorf("failed to open escrow holding account: %w", err)
		}

		escrow := &models.Escrow{
			Key:          key,
			Locker:       l.Key,
			Owner:        owner,
			Tokens:       holding.Key,
			VoteDelegate: owner,
		}
		if err := tx.SaveEscrow(escrow); err != nil {
			return nil, err
		}
		result.Escrow = escrow
		result.Locker = l
		return []events.Event{events.NewEscrowEvent{
			Escrow:      key,
			EscrowOwner: owner,
			Locker:      l.Key,
			Timestamp:   now,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// LockParams contains parameters for locking tokens
type LockParams struct {
	Caller    common.Address
	Escrow    common.Address
	Authority LockAuthority
	// SourceTokens is a token account of the escrow owner. Defaults to the
	// owner's canonical account for the locker's mint.
	SourceTokens common.Address
	Amount       uint64
	Duration     uint64
}

// Lock moves Amount into the escrow and sets the lock to end Duration
// seconds from now. The new end may not be earlier than the current one.
func (m *ManageEscrow) Lock(ctx context.Context, params LockParams) (*EscrowResult, error) {
	result := &EscrowResult{}
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		escrow, l, err := loadOwnedEscrow(tx, params.Caller, params.Escrow)
		if err != nil {
			return nil, err
		}
		if err := authorizeLock(tx, l, escrow, params.Authority); err != nil {
			return nil, err
		}

		source := params.SourceTokens
		if source == (common.Address{}) {
			source = domain.TokenAccountKey(l.TokenMint, escrow.Owner)
		}

		evt, err := m.lock(tx, l, escrow, source, params.Amount, params.Duration, now)
		if err != nil {
			return nil, err
		}
		result.Escrow = escrow
		result.Locker = l
		return []events.Event{evt}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// ExtendLockDuration pushes the end of the lock without adding tokens.
func (m *ManageEscrow) ExtendLockDuration(ctx context.Context, caller, escrowKey common.Address, duration uint64) (*EscrowResult, error) {
	result := &EscrowResult{}
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		escrow, l, err := loadOwnedEscrow(tx, caller, escrowKey)
		if err != nil {
			return nil, err
		}
		evt, err := m.lock(tx, l, escrow, escrow.Tokens, 0, duration, now)
		if err != nil {
			return nil, err
		}
		result.Escrow = escrow
		result.Locker = l
		return []events.Event{evt}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// lock is the single locking algorithm behind every authorization path.
// escrow and l are updated in place and saved.
func (m *ManageEscrow) lock(tx Tx, l *models.Locker, escrow *models.Escrow, source common.Address, amount, duration uint64, now int64) (events.Event, error) {
	if err := l.Params.CheckDuration(duration); err != nil {
		return nil, err
	}
	unlockAt, err := checked.AddSeconds(now, duration)
	if err != nil {
		return nil, err
	}
	if escrow.EscrowEndsAt > unlockAt {
		return nil, fmt.Errorf("%w: escrow ends at %d, new end %d", domain.ErrRefreshCannotShorten, escrow.EscrowEndsAt, unlockAt)
	}

	if amount > 0 {
		if err := m.ledger.Transfer(tx, source, escrow.Tokens, escrow.Owner, amount); err != nil {
			return nil, fmt.Errorf("failed to transfer tokens into escrow: %w", err)
		}
	}
	if escrow.Amount, err = checked.Add(escrow.Amount, amount); err != nil {
		return nil, err
	}
	if l.LockedSupply, err = checked.Add(l.LockedSupply, amount); err != nil {
		return nil, err
	}

	prevEndsAt := escrow.EscrowEndsAt
	escrow.EscrowStartedAt = now
	escrow.EscrowEndsAt = unlockAt

	if err := tx.SaveEscrow(escrow); err != nil {
		return nil, err
	}
	if err := tx.SaveLocker(l); err != nil {
		return nil, err
	}
	return events.LockEvent{
		Locker:           l.Key,
		EscrowOwner:      escrow.Owner,
		TokenMint:        l.TokenMint,
		Amount:           amount,
		LockerSupply:     l.LockedSupply,
		Duration:         duration,
		PrevEscrowEndsAt: prevEndsAt,
		NextEscrowEndsAt: unlockAt,
	}, nil
}

// authorizeLock settles the lock authority against the locker whitelist.
func authorizeLock(tx Tx, l *models.Locker, escrow *models.Escrow, auth LockAuthority) error {
	switch auth.Kind {
	case LockAuthorityOwner, "":
		return nil
	case LockAuthorityPermissionless:
		if l.Params.WhitelistEnabled {
			return domain.ErrMustProvideWhitelist
		}
		return nil
	case LockAuthorityProgram:
		if !l.Params.WhitelistEnabled {
			return domain.ErrMustCallLockPermissionless
		}
		return checkWhitelisted(tx, l.Key, auth.ProgramID, escrow.Owner)
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidLockAuthority, auth.Kind)
	}
}

// checkWhitelisted accepts an entry for program that applies to any owner
// or to this escrow owner. A program approved only for other owners fails
// with ErrEscrowOwnerNotWhitelisted.
func checkWhitelisted(tx Tx, locker, program, owner common.Address) error {
	for _, o := range []common.Address{{}, owner} {
		_, err := tx.GetWhitelistEntry(domain.WhitelistEntryKey(locker, program, o))
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}

	entries, err := tx.ListWhitelistEntries(locker)
	if err != nil {
		return err
	}
	if lo.ContainsBy(entries, func(e *models.LockerWhitelistEntry) bool { return e.ProgramID == program }) {
		return fmt.Errorf("%w: %s", domain.ErrEscrowOwnerNotWhitelisted, owner.Hex())
	}
	return fmt.Errorf("%w: %s", domain.ErrProgramNotWhitelisted, program.Hex())
}

// Exit returns the whole balance of an ended escrow to its owner.
func (m *ManageEscrow) Exit(ctx context.Context, caller, escrowKey common.Address) (*EscrowResult, error) {
	result := &EscrowResult{}
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		escrow, l, err := loadOwnedEscrow(tx, caller, escrowKey)
		if err != nil {
			return nil, err
		}
		if !escrow.Ended(now) {
			return nil, fmt.Errorf("%w: escrow ends at %d", domain.ErrEscrowNotEnded, escrow.EscrowEndsAt)
		}

		released := escrow.Amount
		if released > 0 {
			dest, err := m.ledger.OpenAccount(tx, l.TokenMint, escrow.Owner)
			if err != nil {
				return nil, err
			}
			if err := m.ledger.Transfer(tx, escrow.Tokens, dest.Key, escrow.Key, released); err != nil {
				return nil, fmt.Errorf("failed to release escrow tokens: %w", err)
			}
		}
		if l.LockedSupply, err = checked.Sub(l.LockedSupply, released); err != nil {
			return nil, err
		}
		escrow.Reset()

		if err := tx.SaveEscrow(escrow); err != nil {
			return nil, err
		}
		if err := tx.SaveLocker(l); err != nil {
			return nil, err
		}
		result.Escrow = escrow
		result.Locker = l
		return []events.Event{events.ExitEscrowEvent{
			EscrowOwner:    escrow.Owner,
			Locker:         l.Key,
			Timestamp:      now,
			LockerSupply:   l.LockedSupply,
			ReleasedAmount: released,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// SetVoteDelegate changes who may vote with the escrow's power.
func (m *ManageEscrow) SetVoteDelegate(ctx context.Context, caller, escrowKey, delegate common.Address) (*EscrowResult, error) {
	if delegate == (common.Address{}) {
		return nil, fmt.Errorf("%w: vote delegate must be set", domain.ErrInvalidAddress)
	}

	result := &EscrowResult{}
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		escrow, l, err := loadOwnedEscrow(tx, caller, escrowKey)
		if err != nil {
			return nil, err
		}

		old := escrow.VoteDelegate
		escrow.VoteDelegate = delegate
		if err := tx.SaveEscrow(escrow); err != nil {
			return nil, err
		}
		result.Escrow = escrow
		result.Locker = l
		return []events.Event{events.SetVoteDelegateEvent{
			EscrowOwner: escrow.Owner,
			OldDelegate: old,
			NewDelegate: delegate,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

func loadOwnedEscrow(tx Tx, caller, escrowKey common.Address) (*models.Escrow, *models.Locker, error) {
	escrow, err := tx.GetEscrow(escrowKey)
	if err != nil {
		return nil, nil, err
	}
	if caller != escrow.Owner {
		return nil, nil, fmt.Errorf("%w: %s does not own escrow %s", domain.ErrUnauthorized, caller.Hex(), escrowKey.Hex())
	}
	l, err := tx.GetLocker(escrow.Locker)
	if err != nil {
		return nil, nil, err
	}
	return escrow, l, nil
}
