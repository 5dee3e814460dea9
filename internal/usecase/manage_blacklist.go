package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// ManageBlacklist lets a redeemer admin override redemption markers
type ManageBlacklist struct {
	uow unitOfWork
}

// NewManageBlacklist creates a new blacklist use case
func NewManageBlacklist(store Store, sink EventSink, clock Clock, log *slog.Logger) *ManageBlacklist {
	return &ManageBlacklist{uow: newUnitOfWork(store, sink, clock, log, "blacklist")}
}

// BlacklistParams names an escrow of the redeemer's locker
type BlacklistParams struct {
	Caller   common.Address
	Redeemer common.Address
	Escrow   common.Address
}

// BlacklistResult is returned by blacklist mutations
type BlacklistResult struct {
	Entry  *models.Blacklist
	Events []events.Event
}

// Add marks an escrow as not redeemable.
func (m *ManageBlacklist) Add(ctx context.Context, params BlacklistParams) (*BlacklistResult, error) {
	var entry *models.Blacklist
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		r, escrow, err := loadBlacklistTarget(tx, params)
		if err != nil {
			return nil, err
		}

		key := domain.BlacklistKey(r.Locker, escrow.Key)
		_, err = tx.GetBlacklist(key)
		if err := ensureAbsent(err); err != nil {
			return nil, fmt.Errorf("blacklist %s: %w", key.Hex(), err)
		}

		entry = &models.Blacklist{
			Key:       key,
			Locker:    r.Locker,
			Escrow:    escrow.Key,
			Owner:     escrow.Owner,
			Timestamp: now,
		}
		if err := tx.SaveBlacklist(entry); err != nil {
			return nil, err
		}
		return []events.Event{events.AddBlacklistEntryEvent{
			Locker:    r.Locker,
			Escrow:    escrow.Key,
			Owner:     escrow.Owner,
			Admin:     params.Caller,
			Timestamp: now,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &BlacklistResult{Entry: entry, Events: evts}, nil
}

// Remove clears the marker so the escrow can be redeemed again.
func (m *ManageBlacklist) Remove(ctx context.Context, params BlacklistParams) (*BlacklistResult, error) {
	var entry *models.Blacklist
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		r, err := loadRedeemerAsAdmin(tx, params.Caller, params.Redeemer)
		if err != nil {
			return nil, err
		}

		key := domain.BlacklistKey(r.Locker, params.Escrow)
		if entry, err = tx.GetBlacklist(key); err != nil {
			return nil, err
		}
		if err := tx.DeleteBlacklist(key); err != nil {
			return nil, err
		}
		return []events.Event{events.RemoveBlacklistEntryEvent{
			Locker:    entry.Locker,
			Escrow:    entry.Escrow,
			Owner:     entry.Owner,
			Admin:     params.Caller,
			Timestamp: now,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &BlacklistResult{Entry: entry, Events: evts}, nil
}

// Check returns the marker of an escrow, or nil when it has none.
func (m *ManageBlacklist) Check(ctx context.Context, locker, escrow common.Address) (*models.Blacklist, error) {
	var entry *models.Blacklist
	err := m.uow.store.View(ctx, func(tx Tx) error {
		var err error
		entry, err = tx.GetBlacklist(domain.BlacklistKey(locker, escrow))
		if errors.Is(err, domain.ErrNotFound) {
			entry = nil
			return nil
		}
		return err
	})
	return entry, err
}

func loadBlacklistTarget(tx Tx, params BlacklistParams) (*models.LockerRedeemer, *models.Escrow, error) {
	r, err := loadRedeemerAsAdmin(tx, params.Caller, params.Redeemer)
	if err != nil {
		return nil, nil, err
	}
	escrow, err := tx.GetEscrow(params.Escrow)
	if err != nil {
		return nil, nil, err
	}
	if escrow.Locker != r.Locker {
		return nil, nil, fmt.Errorf("%w: escrow %s is not under locker %s", domain.ErrEscrowLockerMismatch, escrow.Key.Hex(), r.Locker.Hex())
	}
	return r, escrow, nil
}
