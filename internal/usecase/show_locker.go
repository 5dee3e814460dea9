package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// EscrowView is an escrow with its voting power at the query time.
type EscrowView struct {
	Escrow      *models.Escrow `json:"escrow" yaml:"escrow"`
	VotingPower uint64         `json:"votingPower" yaml:"votingPower"`
	Ended       bool           `json:"ended" yaml:"ended"`
}

// LockerView is a locker with its whitelist.
type LockerView struct {
	Locker    *models.Locker                 `json:"locker" yaml:"locker"`
	Whitelist []*models.LockerWhitelistEntry `json:"whitelist" yaml:"whitelist"`
	Escrows   int                            `json:"escrows" yaml:"escrows"`
}

// ShowLocker answers read-only locker queries
type ShowLocker struct {
	store Store
	clock Clock
}

// NewShowLocker creates a new locker query use case
func NewShowLocker(store Store, clock Clock) *ShowLocker {
	return &ShowLocker{store: store, clock: clock}
}

func (s *ShowLocker) Locker(ctx context.Context, key common.Address) (*LockerView, error) {
	var view *LockerView
	err := s.store.View(ctx, func(tx Tx) error {
		l, err := tx.GetLocker(key)
		if err != nil {
			return err
		}
		whitelist, err := tx.ListWhitelistEntries(key)
		if err != nil {
			return err
		}
		escrows, err := tx.ListEscrows(EscrowFilter{Locker: key})
		if err != nil {
			return err
		}
		view = &LockerView{Locker: l, Whitelist: whitelist, Escrows: len(escrows)}
		return nil
	})
	return view, err
}

func (s *ShowLocker) ListLockers(ctx context.Context) ([]*models.Locker, error) {
	var lockers []*models.Locker
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		lockers, err = tx.ListLockers()
		return err
	})
	return lockers, err
}

func (s *ShowLocker) Escrow(ctx context.Context, key common.Address) (*EscrowView, error) {
	now := s.clock.Now()
	var view *EscrowView
	err := s.store.View(ctx, func(tx Tx) error {
		e, err := tx.GetEscrow(key)
		if err != nil {
			return err
		}
		l, err := tx.GetLocker(e.Locker)
		if err != nil {
			return err
		}
		view, err = escrowView(e, l, now)
		return err
	})
	return view, err
}

// ListEscrows returns escrows of a locker and/or owner with live voting power.
func (s *ShowLocker) ListEscrows(ctx context.Context, filter EscrowFilter) ([]*EscrowView, error) {
	now := s.clock.Now()
	var views []*EscrowView
	err := s.store.View(ctx, func(tx Tx) error {
		escrows, err := tx.ListEscrows(filter)
		if err != nil {
			return err
		}
		lockers := map[common.Address]*models.Locker{}
		for _, e := range escrows {
			l, ok := lockers[e.Locker]
			if !ok {
				if l, err = tx.GetLocker(e.Locker); err != nil {
					return err
				}
				lockers[e.Locker] = l
			}
			v, err := escrowView(e, l, now)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

func escrowView(e *models.Escrow, l *models.Locker, now int64) (*EscrowView, error) {
	power, err := e.VotingPower(l.Params, now)
	if err != nil {
		return nil, err
	}
	return &EscrowView{Escrow: e, VotingPower: power, Ended: e.Ended(now)}, nil
}
