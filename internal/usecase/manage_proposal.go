package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/checked"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// ManageProposal drives the proposal lifecycle
type ManageProposal struct {
	uow         unitOfWork
	smartWallet SmartWallet
}

// NewManageProposal creates a new proposal lifecycle use case
func NewManageProposal(store Store, smartWallet SmartWallet, sink EventSink, clock Clock, log *slog.Logger) *ManageProposal {
	return &ManageProposal{
		uow:         newUnitOfWork(store, sink, clock, log, "proposal"),
		smartWallet: smartWallet,
	}
}

// CreateProposalParams contains parameters for opening a proposal
type CreateProposalParams struct {
	Governor     common.Address
	Proposer     common.Address
	Instructions []models.ProposalInstruction
}

// ProposalResult is returned by every proposal mutation
type ProposalResult struct {
	Proposal *models.Proposal
	Events   []events.Event
}

// Create opens a draft proposal at the governor's next index and snapshots
// the current quorum.
func (m *ManageProposal) Create(ctx context.Context, params CreateProposalParams) (*ProposalResult, error) {
	var proposal *models.Proposal
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		g, err := tx.GetGovernor(params.Governor)
		if err != nil {
			return nil, err
		}

		index := g.ProposalCount
		if g.ProposalCount, err = checked.Add(g.ProposalCount, 1); err != nil {
			return nil, err
		}

		proposal = &models.Proposal{
			Key:          domain.ProposalKey(g.Key, index),
			Governor:     g.Key,
			Index:        index,
			Proposer:     params.Proposer,
			QuorumVotes:  g.Params.QuorumVotes,
			CreatedAt:    now,
			Instructions: params.Instructions,
		}
		if proposal.Instructions == nil {
			proposal.Instructions = []models.ProposalInstruction{}
		}
		if err := tx.SaveProposal(proposal); err != nil {
			return nil, err
		}
		if err := tx.SaveGovernor(g); err != nil {
			return nil, err
		}

		return []events.Event{events.ProposalCreateEvent{
			Governor:     g.Key,
			Proposal:     proposal.Key,
			Index:        index,
			Instructions: proposal.Instructions,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &ProposalResult{Proposal: proposal, Events: evts}, nil
}

// Activate opens voting on a draft. Only the governor's electorate may call it.
func (m *ManageProposal) Activate(ctx context.Context, caller, proposalKey common.Address) (*ProposalResult, error) {
	var proposal *models.Proposal
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		p, evt, err := activateProposal(tx, caller, proposalKey, now)
		if err != nil {
			return nil, err
		}
		proposal = p
		return []events.Event{evt}, nil
	})
	if err != nil {
		return nil, err
	}
	return &ProposalResult{Proposal: proposal, Events: evts}, nil
}

// activateProposal is shared by the governor electorate path and the
// locker-mediated path where the locker acts as electorate.
func activateProposal(tx Tx, electorate, proposalKey common.Address, now int64) (*models.Proposal, events.Event, error) {
	p, err := tx.GetProposal(proposalKey)
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
	if !p.IsDraft() {
		return nil, nil, domain.ErrProposalNotDraft
	}

	earliest, err := checked.AddSeconds(p.CreatedAt, g.Params.VotingDelay)
	if err != nil {
		return nil, nil, err
	}
	if now < earliest {
		return nil, nil, fmt.Errorf("%w: activation allowed from %d", domain.ErrVotingDelayNotMet, earliest)
	}

	votingEndsAt, err := checked.AddSeconds(now, g.Params.VotingPeriod)
	if err != nil {
		return nil, nil, err
	}

	p.ActivatedAt = now
	p.VotingEndsAt = votingEndsAt
	if err := tx.SaveProposal(p); err != nil {
		return nil, nil, err
	}
	return p, events.ProposalActivateEvent{
		Governor:     g.Key,
		Proposal:     p.Key,
		VotingEndsAt: votingEndsAt,
	}, nil
}

// Cancel withdraws a draft. Only the proposer may call it.
func (m *ManageProposal) Cancel(ctx context.Context, caller, proposalKey common.Address) (*ProposalResult, error) {
	var proposal *models.Proposal
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		p, err := tx.GetProposal(proposalKey)
		if err != nil {
			return nil, err
		}
		if caller != p.Proposer {
			return nil, fmt.Errorf("%w: only the proposer can cancel", domain.ErrUnauthorized)
		}
		if !p.IsDraft() {
			return nil, domain.ErrProposalNotDraft
		}

		p.CanceledAt = now
		if err := tx.SaveProposal(p); err != nil {
			return nil, err
		}
		proposal = p
		return []events.Event{events.ProposalCancelEvent{Governor: p.Governor, Proposal: p.Key}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &ProposalResult{Proposal: proposal, Events: evts}, nil
}

// QueueProposalParams contains parameters for queueing a passed proposal
type QueueProposalParams struct {
	Proposal common.Address
	// SafeTxHash links the queued batch to a Safe transaction for later
	// execution tracking. Optional.
	SafeTxHash string
}

// QueueProposalResult contains the queued proposal and its transaction
type QueueProposalResult struct {
	Proposal    *models.Proposal
	Transaction *models.QueuedTransaction
	Events      []events.Event
}

// Queue hands a succeeded proposal's instructions to the smart wallet.
func (m *ManageProposal) Queue(ctx context.Context, params QueueProposalParams) (*QueueProposalResult, error) {
	safeTxHash := strings.TrimSpace(params.SafeTxHash)
	if safeTxHash != "" && !isHash(safeTxHash) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSafeTxHash, safeTxHash)
	}

	result := &QueueProposalResult{}
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		p, err := tx.GetProposal(params.Proposal)
		if err != nil {
			return nil, err
		}
		if state := p.State(now); state != models.ProposalStateSucceeded {
			return nil, fmt.Errorf("%w: proposal is %s", domain.ErrProposalNotSucceeded, state)
		}
		g, err := tx.GetGovernor(p.Governor)
		if err != nil {
			return nil, err
		}

		queued, err := m.smartWallet.QueueTransaction(tx, QueueTransactionRequest{
			SmartWallet:   g.SmartWallet,
			Proposal:      p.Key,
			Proposer:      p.Proposer,
			Instructions:  p.Instructions,
			TimelockDelay: g.Params.TimelockDelaySeconds,
			Now:           now,
			SafeTxHash:    safeTxHash,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to queue transaction: %w", err)
		}
		if queued.SmartWallet != g.SmartWallet {
			return nil, domain.ErrSmartWalletMismatch
		}

		p.QueuedAt = now
		p.QueuedTransaction = queued.Key
		if err := tx.SaveProposal(p); err != nil {
			return nil, err
		}

		result.Proposal = p
		result.Transaction = queued
		return []events.Event{events.ProposalQueueEvent{
			Governor:    g.Key,
			Proposal:    p.Key,
			Transaction: queued.Key,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	result.Events = evts
	return result, nil
}

// CreateMetaParams contains parameters for attaching proposal metadata
type CreateMetaParams struct {
	Caller          common.Address
	Proposal        common.Address
	Title           string
	DescriptionLink string
}

// ProposalMetaResult contains the created metadata
type ProposalMetaResult struct {
	Meta   *models.ProposalMeta
	Events []events.Event
}

// CreateMeta attaches a title and description link. Only the proposer
// may call it, once per proposal.
func (m *ManageProposal) CreateMeta(ctx context.Context, params CreateMetaParams) (*ProposalMetaResult, error) {
	var meta *models.ProposalMeta
	evts, err := m.uow.commit(ctx, func(tx Tx, now int64) ([]events.Event, error) {
		p, err := tx.GetProposal(params.Proposal)
		if err != nil {
			return nil, err
		}
		if params.Caller != p.Proposer {
			return nil, fmt.Errorf("%w: only the proposer can attach metadata", domain.ErrUnauthorized)
		}

		key := domain.ProposalMetaKey(p.Key)
		_, err = tx.GetProposalMeta(key)
		if err := ensureAbsent(err); err != nil {
			return nil, fmt.Errorf("proposal meta %s: %w", key.Hex(), err)
		}

		meta = &models.ProposalMeta{
			Key:             key,
			Proposal:        p.Key,
			Title:           params.Title,
			DescriptionLink: params.DescriptionLink,
		}
		if err := tx.SaveProposalMeta(meta); err != nil {
			return nil, err
		}
		return []events.Event{events.ProposalMetaCreateEvent{
			Governor:        p.Governor,
			Proposal:        p.Key,
			Title:           params.Title,
			DescriptionLink: params.DescriptionLink,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &ProposalMetaResult{Meta: meta, Events: evts}, nil
}

// isHash accepts a 0x-prefixed 32-byte hex string.
func isHash(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == common.HashLength
}
