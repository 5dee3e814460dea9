package usecase

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// ProposalView is a proposal with its metadata and derived state.
type ProposalView struct {
	Proposal    *models.Proposal          `json:"proposal" yaml:"proposal"`
	State       models.ProposalState      `json:"state" yaml:"state"`
	Meta        *models.ProposalMeta      `json:"meta,omitempty" yaml:"meta,omitempty"`
	Transaction *models.QueuedTransaction `json:"transaction,omitempty" yaml:"transaction,omitempty"`
	Votes       []*models.Vote            `json:"votes,omitempty" yaml:"votes,omitempty"`
}

// Title returns the metadata title, empty when none was attached.
func (v *ProposalView) Title() string {
	if v.Meta == nil {
		return ""
	}
	return v.Meta.Title
}

// GovernorView is a governor with a per-state proposal summary.
type GovernorView struct {
	Governor *models.Governor             `json:"governor" yaml:"governor"`
	ByState  map[models.ProposalState]int `json:"byState" yaml:"byState"`
}

// ListProposalsParams filters proposals
type ListProposalsParams struct {
	Governor common.Address
	Proposer common.Address
	State    models.ProposalState
}

// ShowGovernance answers read-only governance queries
type ShowGovernance struct {
	store Store
	clock Clock
}

// NewShowGovernance creates a new governance query use case
func NewShowGovernance(store Store, clock Clock) *ShowGovernance {
	return &ShowGovernance{store: store, clock: clock}
}

func (s *ShowGovernance) Governor(ctx context.Context, key common.Address) (*GovernorView, error) {
	now := s.clock.Now()
	var view *GovernorView
	err := s.store.View(ctx, func(tx Tx) error {
		g, err := tx.GetGovernor(key)
		if err != nil {
			return err
		}
		proposals, err := tx.ListProposals(ProposalFilter{Governor: key})
		if err != nil {
			return err
		}
		view = &GovernorView{
			Governor: g,
			ByState: lo.CountValuesBy(proposals, func(p *models.Proposal) models.ProposalState {
				return p.State(now)
			}),
		}
		return nil
	})
	return view, err
}

func (s *ShowGovernance) ListGovernors(ctx context.Context) ([]*models.Governor, error) {
	var governors []*models.Governor
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		governors, err = tx.ListGovernors()
		return err
	})
	return governors, err
}

// Proposal returns one proposal with its votes.
func (s *ShowGovernance) Proposal(ctx context.Context, key common.Address) (*ProposalView, error) {
	now := s.clock.Now()
	var view *ProposalView
	err := s.store.View(ctx, func(tx Tx) error {
		p, err := tx.GetProposal(key)
		if err != nil {
			return err
		}
		if view, err = proposalView(tx, p, now); err != nil {
			return err
		}
		view.Votes, err = tx.ListVotes(key)
		return err
	})
	return view, err
}

// ListProposals returns proposals ordered by index, optionally filtered by
// derived state.
func (s *ShowGovernance) ListProposals(ctx context.Context, params ListProposalsParams) ([]*ProposalView, error) {
	now := s.clock.Now()
	var views []*ProposalView
	err := s.store.View(ctx, func(tx Tx) error {
		proposals, err := tx.ListProposals(ProposalFilter{Governor: params.Governor, Proposer: params.Proposer})
		if err != nil {
			return err
		}
		for _, p := range proposals {
			if params.State != "" && p.State(now) != params.State {
				continue
			}
			v, err := proposalView(tx, p, now)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

func (s *ShowGovernance) ListVotes(ctx context.Context, proposal common.Address) ([]*models.Vote, error) {
	var votes []*models.Vote
	err := s.store.View(ctx, func(tx Tx) error {
		if _, err := tx.GetProposal(proposal); err != nil {
			return err
		}
		var err error
		votes, err = tx.ListVotes(proposal)
		return err
	})
	return votes, err
}

func proposalView(tx Tx, p *models.Proposal, now int64) (*ProposalView, error) {
	view := &ProposalView{Proposal: p, State: p.State(now)}

	meta, err := tx.GetProposalMeta(domain.ProposalMetaKey(p.Key))
	switch {
	case err == nil:
		view.Meta = meta
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if p.QueuedTransaction != (common.Address{}) {
		if view.Transaction, err = tx.GetQueuedTransaction(p.QueuedTransaction); err != nil {
			return nil, err
		}
	}
	return view, nil
}
