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

// ManageVote registers voters and records their weighted votes
type ManageVote struct {
	uow unitOfWork
}

// NewManageVote creates a new vote use case
func NewManageVote(store Store, sink EventSink, clock Clock, log *slog.Logger) *ManageVote {
	return &ManageVote{uow: newUnitOfWork(store, sink, clock, log, "vote")}
}

// VoteResult is returned by vote mutations
type VoteResult struct {
	Vote     *models.Vote
	Proposal *models.Proposal
	Events   []events.Event
}

// NewVote registers voter on a proposal with a pending, weightless vote.
// Registering twice returns the existing vote.
func (m *ManageVote) NewVote(ctx context.Context, proposalKey, voter common.Address) (*VoteResult, error) {
	result := &VoteResult{}
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		p, err := tx.GetProposal(proposalKey)
		if err != nil {
			return nil, err
		}
		vote, evt, err := ensureVote(tx, p.Key, voter)
		if err != nil {
			return nil, err
		}
		result.Vote = vote
		result.Proposal = p
		if evt == nil {
			return nil, nil
		}
		return []events.Event{evt}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// SetVoteParams contains parameters for recording a vote
type SetVoteParams struct {
	Caller   common.Address
	Proposal common.Address
	Voter    common.Address
	Side     models.VoteSide
	Weight   uint64
}

// SetVote records side and weight for a registered voter. Only the
// governor's electorate may call it, while the proposal is active.
func (m *ManageVote) SetVote(ctx context.Context, params SetVoteParams) (*VoteResult, error) {
	if params.Side > models.VoteSideAbstain {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidVoteSide, params.Side)
	}

	result := &VoteResult{}
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		vote, err := tx.GetVote(domain.VoteKey(params.Proposal, params.Voter))
		if err != nil {
			return nil, err
		}
		p, evt, err := setVote(tx, params.Caller, vote, params.Side, params.Weight, now)
		if err != nil {
			return nil, err
		}
		result.Vote = vote
		result.Proposal = p
		return []events.Event{evt}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// ensureVote loads the vote of voter on proposal, creating a pending one
// when missing. The event is nil when the vote already existed.
func ensureVote(tx Tx, proposal, voter common.Address) (*models.Vote, events.Event, error) {
	key := domain.VoteKey(proposal, voter)
	vote, err := tx.GetVote(key)
	if err == nil {
		return vote, nil, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}

	vote = &models.Vote{
		Key:      key,
		Proposal: proposal,
		Voter:    voter,
		Side:     models.VoteSidePending,
	}
	if err := tx.SaveVote(vote); err != nil {
		return nil, nil, err
	}
	return vote, events.NewVoteEvent{Proposal: proposal, Voter: voter, Vote: key}, nil
}

// setVote moves the vote's contribution from its recorded side to the new
// one and overwrites the vote. vote is updated in place.
func setVote(tx Tx, electorate common.Address, vote *models.Vote, side models.VoteSide, weight uint64, now int64) (*models.Proposal, events.Event, error) {
	p, err := tx.GetProposal(vote.Proposal)
	if err != nil {
		return nil, nil, err
	}
	g, err := tx.GetGovernor(p.Governor)
	if err != nil {
		return nil, nil, err
	}
	if electorate != g.Electorate {
		return nil, nil, fmt.Errorf("%w: %s is not the electorate of governor %s", domain.ErrUnauthorized, electorate.Hex(), g.Key.Hex())
	}
	if state := p.State(now); state != models.ProposalStateActive {
		return nil, nil, fmt.Errorf("%w: proposal is %s", domain.ErrProposalNotActive, state)
	}

	prevSide, prevWeight := vote.Side, vote.Weight
	if err := p.ApplyVote(prevSide, prevWeight, side, weight); err != nil {
		return nil, nil, err
	}
	vote.Side = side
	vote.Weight = weight

	if err := tx.SaveProposal(p); err != nil {
		return nil, nil, err
	}
	if err := tx.SaveVote(vote); err != nil {
		return nil, nil, err
	}
	return p, events.VoteSetEvent{
		Governor:   g.Key,
		Proposal:   p.Key,
		Voter:      vote.Voter,
		Vote:       vote.Key,
		PrevSide:   prevSide,
		PrevWeight: prevWeight,
		Side:       side,
		Weight:     weight,
	}, nil
}
