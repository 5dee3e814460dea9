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

// ManageGovernor creates governors and updates their configuration
type ManageGovernor struct {
	uow unitOfWork
}

// NewManageGovernor creates a new governor management use case
func NewManageGovernor(store Store, sink EventSink, clock Clock, log *slog.Logger) *ManageGovernor {
	return &ManageGovernor{uow: newUnitOfWork(store, sink, clock, log, "governor")}
}

// CreateGovernorParams contains parameters for creating a governor
type CreateGovernorParams struct {
	Base        common.Address
	Electorate  common.Address
	SmartWallet common.Address
	Params      models.GovernanceParameters
}

// GovernorResult is returned by every governor mutation
type GovernorResult struct {
	Governor *models.Governor
	Events   []events.Event
}

// Create initializes a governor keyed by its base identity.
func (m *ManageGovernor) Create(ctx context.Context, params CreateGovernorParams) (*GovernorResult, error) {
	if params.Base == (common.Address{}) {
		return nil, fmt.Errorf("%w: governor base must be set", domain.ErrInvalidAddress)
	}
	if err := params.Params.Validate(); err != nil {
		return nil, err
	}

	var governor *models.Governor
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		key := domain.GovernorKey(params.Base)
		_, err := tx.GetGovernor(key)
		if err := ensureAbsent(err); err != nil {
			return nil, fmt.Errorf("governor %s: %w", key.Hex(), err)
		}

		governor = &models.Governor{
			Key:         key,
			Base:        params.Base,
			Electorate:  params.Electorate,
			SmartWallet: params.SmartWallet,
			Params:      params.Params,
		}
		if err := tx.SaveGovernor(governor); err != nil {
			return nil, err
		}
		return []events.Event{events.GovernorCreateEvent{
			Governor:    key,
			Electorate:  params.Electorate,
			SmartWallet: params.SmartWallet,
			Parameters:  params.Params,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &GovernorResult{Governor: governor, Events: evts}, nil
}

// SetParams replaces the governance parameters. Only the smart wallet may
// call it.
func (m *ManageGovernor) SetParams(ctx context.Context, caller, governorKey common.Address, params models.GovernanceParameters) (*GovernorResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var governor *models.Governor
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		g, err := tx.GetGovernor(governorKey)
		if err != nil {
			return nil, err
		}
		if err := requireSmartWallet(g, caller); err != nil {
			return nil, err
		}

		prev := g.Params
		g.Params = params
		if err := tx.SaveGovernor(g); err != nil {
			return nil, err
		}
		governor = g
		return []events.Event{events.GovernorSetParamsEvent{
			Governor:   g.Key,
			PrevParams: prev,
			Params:     params,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &GovernorResult{Governor: governor, Events: evts}, nil
}

// SetElectorate replaces the electorate. Only the smart wallet may call it.
func (m *ManageGovernor) SetElectorate(ctx context.Context, caller, governorKey, electorate common.Address) (*GovernorResult, error) {
	var governor *models.Governor
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		g, err := tx.GetGovernor(governorKey)
		if err != nil {
			return nil, err
		}
		if err := requireSmartWallet(g, caller); err != nil {
			return nil, err
		}

		prev := g.Electorate
		g.Electorate = electorate
		if err := tx.SaveGovernor(g); err != nil {
			return nil, err
		}
		governor = g
		return []events.Event{events.GovernorSetElectorateEvent{
			Governor:       g.Key,
			PrevElectorate: prev,
			NewElectorate:  electorate,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &GovernorResult{Governor: governor, Events: evts}, nil
}

func requireSmartWallet(g *models.Governor, caller common.Address) error {
	if caller != g.SmartWallet {
		return fmt.Errorf("%w: %s is not the smart wallet of governor %s", domain.ErrUnauthorized, caller.Hex(), g.Key.Hex())
	}
	return nil
}

// ensureAbsent maps the error of a Get to ErrAlreadyExists when the record
// was found and to nil when it was missing.
func ensureAbsent(err error) error {
	switch {
	case err == nil:
		return domain.ErrAlreadyExists
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return err
	}
}
