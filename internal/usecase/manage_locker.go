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

// ManageLocker creates lockers and handles their governance-owned settings
type ManageLocker struct {
	uow unitOfWork
}

// NewManageLocker creates a new locker management use case
func NewManageLocker(store Store, sink EventSink, clock Clock, log *slog.Logger) *ManageLocker {
	return &ManageLocker{uow: newUnitOfWork(store, sink, clock, log, "locker")}
}

// CreateLockerParams contains parameters for creating a locker
type CreateLockerParams struct {
	Base      common.Address
	TokenMint common.Address
	Governor  common.Address
	Params    models.LockerParams
}

// LockerResult is returned by locker mutations
type LockerResult struct {
	Locker *models.Locker
	Events []events.Event
}

// Create initializes a locker for a token under a governor.
func (m *ManageLocker) Create(ctx context.Context, params CreateLockerParams) (*LockerResult, error) {
	if params.Base == (common.Address{}) {
		return nil, fmt.Errorf("%w: locker base must be set", domain.ErrInvalidAddress)
	}
	if params.TokenMint == (common.Address{}) {
		return nil, fmt.Errorf("%w: token mint must be set", domain.ErrInvalidAddress)
	}
	if err := params.Params.Validate(); err != nil {
		return nil, err
	}

	var locker *models.Locker
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		if _, err := tx.GetGovernor(params.Governor); err != nil {
			return nil, err
		}

		key := domain.LockerKey(params.Base)
		_, err := tx.GetLocker(key)
		if err := ensureAbsent(err); err != nil {
			return nil, fmt.Errorf("locker %s: %w", key.Hex(), err)
		}

		locker = &models.Locker{
			Key:       key,
			Base:      params.Base,
			TokenMint: params.TokenMint,
			Governor:  params.Governor,
			Params:    params.Params,
		}
		if err := tx.SaveLocker(locker); err != nil {
			return nil, err
		}
		return []events.Event{events.NewLockerEvent{
			Governor:  params.Governor,
			Locker:    key,
			TokenMint: params.TokenMint,
			Params:    params.Params,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &LockerResult{Locker: locker, Events: evts}, nil
}

// SetParams replaces the locking rules. Only the governor's smart wallet
// may call it.
func (m *ManageLocker) SetParams(ctx context.Context, caller, lockerKey common.Address, params models.LockerParams) (*LockerResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var locker *models.Locker
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		l, err := loadLockerAsGovernance(tx, caller, lockerKey)
		if err != nil {
			return nil, err
		}

		prev := l.Params
		l.Params = params
		if err := tx.SaveLocker(l); err != nil {
			return nil, err
		}
		locker = l
		return []events.Event{events.LockerSetParamsEvent{
			Locker:     l.Key,
			PrevParams: prev,
			Params:     params,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &LockerResult{Locker: locker, Events: evts}, nil
}

// LockPrivilegeParams names a program allowed to lock on behalf of owners.
// A zero Owner applies to every escrow owner.
type LockPrivilegeParams struct {
	Caller    common.Address
	Locker    common.Address
	ProgramID common.Address
	Owner     common.Address
}

// WhitelistResult is returned by whitelist mutations
type WhitelistResult struct {
	Entry  *models.LockerWhitelistEntry
	Events []events.Event
}

// ApproveLockPrivilege whitelists a program. Only the governor's smart
// wallet may call it.
func (m *ManageLocker) ApproveLockPrivilege(ctx context.Context, params LockPrivilegeParams) (*WhitelistResult, error) {
	if params.ProgramID == (common.Address{}) {
		return nil, fmt.Errorf("%w: program id must be set", domain.ErrInvalidAddress)
	}

	var entry *models.LockerWhitelistEntry
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		l, err := loadLockerAsGovernance(tx, params.Caller, params.Locker)
		if err != nil {
			return nil, err
		}

		key := domain.WhitelistEntryKey(l.Key, params.ProgramID, params.Owner)
		_, err = tx.GetWhitelistEntry(key)
		if err := ensureAbsent(err); err != nil {
			return nil, fmt.Errorf("whitelist entry %s: %w", key.Hex(), err)
		}

		entry = &models.LockerWhitelistEntry{
			Key:       key,
			Locker:    l.Key,
			ProgramID: params.ProgramID,
			Owner:     params.Owner,
		}
		if err := tx.SaveWhitelistEntry(entry); err != nil {
			return nil, err
		}
		return []events.Event{events.ApproveLockPrivilegeEvent{
			Locker:    l.Key,
			ProgramID: params.ProgramID,
			Owner:     params.Owner,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &WhitelistResult{Entry: entry, Events: evts}, nil
}

// RevokeLockPrivilege removes a whitelist entry. Only the governor's smart
// wallet may call it.
func (m *ManageLocker) RevokeLockPrivilege(ctx context.Context, params LockPrivilegeParams) (*WhitelistResult, error) {
	var entry *models.LockerWhitelistEntry
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		l, err := loadLockerAsGovernance(tx, params.Caller, params.Locker)
		if err != nil {
			return nil, err
		}

		key := domain.WhitelistEntryKey(l.Key, params.ProgramID, params.Owner)
		if entry, err = tx.GetWhitelistEntry(key); err != nil {
			return nil, err
		}
		if err := tx.DeleteWhitelistEntry(key); err != nil {
			return nil, err
		}
		return []events.Event{events.RevokeLockPrivilegeEvent{
			Locker:    l.Key,
			ProgramID: entry.ProgramID,
			Owner:     entry.Owner,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &WhitelistResult{Entry: entry, Events: evts}, nil
}

// loadLockerAsGovernance loads a locker and checks that caller is the
// smart wallet of its governor.
func loadLockerAsGovernance(tx Tx, caller, lockerKey common.Address) (*models.Locker, error) {
	l, err := tx.GetLocker(lockerKey)
	if err != nil {
		return nil, err
	}
	g, err := tx.GetGovernor(l.Governor)
	if err != nil {
		return nil, err
	}
	if err := requireSmartWallet(g, caller); err != nil {
		return nil, err
	}
	return l, nil
}
