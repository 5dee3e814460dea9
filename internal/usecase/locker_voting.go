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

// LockerVoting lets escrow delegates drive governance with locked power.
// The locker is the governor's electorate on this path.
type LockerVoting struct {
	uow unitOfWork
}

// NewLockerVoting creates a new locker voting use case
func NewLockerVoting(store Store, sink EventSink, clock Clock, log *slog.Logger) *LockerVoting {
	return &LockerVoting{uow: newUnitOfWork(store, sink, clock, log, "locker_voting")}
}

// EscrowProposalParams names an escrow acting on a proposal
type EscrowProposalParams struct {
	Caller   common.Address
	Escrow   common.Address
	Proposal common.Address
}

// CastVoteParams contains parameters for voting with an escrow
type CastVoteParams struct {
	EscrowProposalParams
	Side models.VoteSide
}

// LockerVoteResult is returned by locker-mediated voting
type LockerVoteResult struct {
	Proposal    *models.Proposal
	Vote        *models.Vote
	VotingPower uint64
	Events      []events.Event
}

// ActivateProposal activates a draft when the escrow holds at least the
// locker's activation minimum.
func (v *LockerVoting) ActivateProposal(ctx context.Context, params EscrowProposalParams) (*LockerVoteResult, error) {
	result := &LockerVoteResult{}
	evts, err := v.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		escrow, l, err := loadDelegatedEscrow(tx, params)
		if err != nil {
			return nil, err
		}
		power, err := escrow.VotingPower(l.Params, now)
		if err != nil {
			return nil, err
		}
		if power < l.Params.ProposalActivationMinVotes {
			return nil, fmt.Errorf("%w: %d < %d", domain.ErrInsufficientVotePower, power, l.Params.ProposalActivationMinVotes)
		}

		p, evt, err := activateProposal(tx, l.Key, params.Proposal, now)
		if err != nil {
			return nil, err
		}
		result.Proposal = p
		result.VotingPower = power
		return []events.Event{evt}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// CastVote records the escrow's current voting power on side. The vote
// belongs to the escrow owner and is created when missing.
func (v *LockerVoting) CastVote(ctx context.Context, params CastVoteParams) (*LockerVoteResult, error) {
	if params.Side > models.VoteSideAbstain {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidVoteSide, params.Side)
	}

	result := &LockerVoteResult{}
	evts, err := v.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		escrow, l, err := loadDelegatedEscrow(tx, params.EscrowProposalParams)
		if err != nil {
			return nil, err
		}
		power, err := escrow.VotingPower(l.Params, now)
		if err != nil {
			return nil, err
		}

		var out []events.Event
		vote, created, err := ensureVote(tx, params.Proposal, escrow.Owner)
		if err != nil {
			return nil, err
		}
		if created != nil {
			out = append(out, created)
		}

		p, evt, err := setVote(tx, l.Key, vote, params.Side, power, now)
		if err != nil {
			return nil, err
		}
		result.Proposal = p
		result.Vote = vote
		result.VotingPower = power
		return append(out, evt), nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// loadDelegatedEscrow checks that the caller is the escrow's vote delegate
// and that its locker is the electorate of the proposal's governor.
func loadDelegatedEscrow(tx Tx, params EscrowProposalParams) (*models.Escrow, *models.Locker, error) {
	escrow, err := tx.GetEscrow(params.Escrow)
	if err != nil {
		return nil, nil, err
	}
	if params.Caller != escrow.VoteDelegate {
		return nil, nil, fmt.Errorf("%w: %s is not the vote delegate of escrow %s", domain.ErrUnauthorized, params.Caller.Hex(), escrow.Key.Hex())
	}
	l, err := tx.GetLocker(escrow.Locker)
	if err != nil {
		return nil, nil, err
	}
	p, err := tx.GetProposal(params.Proposal)
	if err != nil {
		return nil, nil, err
	}
	if p.Governor != l.Governor {
		return nil, nil, domain.ErrLockerGovernorMismatch
	}
	g, err := tx.GetGovernor(l.Governor)
	if err != nil {
		return nil, nil, err
	}
	if g.Electorate != l.Key {
		return nil, nil, domain.ErrElectorateNotLocker
	}
	return escrow, l, nil
}
