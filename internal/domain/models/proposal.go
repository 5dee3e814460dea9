package models

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/checked"
)

// ProposalState represents the lifecycle state of a proposal
type ProposalState string

const (
	ProposalStateDraft     ProposalState = "draft"
	ProposalStateActive    ProposalState = "active"
	ProposalStateCanceled  ProposalState = "canceled"
	ProposalStateDefeated  ProposalState = "defeated"
	ProposalStateSucceeded ProposalState = "succeeded"
	ProposalStateQueued    ProposalState = "queued"
)

// AccountMeta is one account referenced by a proposal instruction.
type AccountMeta struct {
	Pubkey     common.Address `json:"pubkey" yaml:"pubkey"`
	IsSigner   bool           `json:"isSigner" yaml:"isSigner"`
	IsWritable bool           `json:"isWritable" yaml:"isWritable"`
}

// ProposalInstruction is an instruction the smart wallet runs if the proposal passes.
type ProposalInstruction struct {
	ProgramID common.Address `json:"programId" yaml:"programId"`
	Keys      []AccountMeta  `json:"keys" yaml:"keys"`
	Data      hexutil.Bytes  `json:"data" yaml:"data"`
}

// Proposal is one governance item. Timestamps are unix seconds with 0
// meaning "not yet".
type Proposal struct {
	Key      common.Address `json:"key" yaml:"key"`
	Governor common.Address `json:"governor" yaml:"governor"`
	Index    uint64         `json:"index" yaml:"index"`
	Proposer common.Address `json:"proposer" yaml:"proposer"`

	// QuorumVotes is copied from the governor at creation.
	QuorumVotes uint64 `json:"quorumVotes" yaml:"quorumVotes"`

	ForVotes     uint64 `json:"forVotes" yaml:"forVotes"`
	AgainstVotes uint64 `json:"againstVotes" yaml:"againstVotes"`
	AbstainVotes uint64 `json:"abstainVotes" yaml:"abstainVotes"`

	CanceledAt   int64 `json:"canceledAt" yaml:"canceledAt"`
	CreatedAt    int64 `json:"createdAt" yaml:"createdAt"`
	ActivatedAt  int64 `json:"activatedAt" yaml:"activatedAt"`
	VotingEndsAt int64 `json:"votingEndsAt" yaml:"votingEndsAt"`
	QueuedAt     int64 `json:"queuedAt" yaml:"queuedAt"`

	QueuedTransaction common.Address `json:"queuedTransaction" yaml:"queuedTransaction"`

	Instructions []ProposalInstruction `json:"instructions" yaml:"instructions"`
}

// IsDraft reports whether the proposal was neither activated nor canceled.
func (p *Proposal) IsDraft() bool {
	return p.ActivatedAt == 0 && p.CanceledAt == 0
}

// State derives the proposal state at the given time.
func (p *Proposal) State(now int64) ProposalState {
	switch {
	case p.CanceledAt > 0:
		return ProposalStateCanceled
	case p.ActivatedAt == 0:
		return ProposalStateDraft
	case p.QueuedAt > 0:
		return ProposalStateQueued
	case now < p.VotingEndsAt:
		return ProposalStateActive
	case p.ForVotes < p.QuorumVotes || p.ForVotes <= p.AgainstVotes:
		return ProposalStateDefeated
	default:
		return ProposalStateSucceeded
	}
}

// TotalVotes is the weight recorded across all non-pending sides.
func (p *Proposal) TotalVotes() (uint64, error) {
	sum, err := checked.Add(p.ForVotes, p.AgainstVotes)
	if err != nil {
		return 0, err
	}
	return checked.Add(sum, p.AbstainVotes)
}

// ApplyVote moves a voter's contribution from (prevSide, prevWeight) to
// (side, weight). The tallies are only written when both steps succeed.
func (p *Proposal) ApplyVote(prevSide VoteSide, prevWeight uint64, side VoteSide, weight uint64) error {
	if prevSide > VoteSideAbstain || side > VoteSideAbstain {
		return domain.ErrInvalidVoteSide
	}

	tally := [...]uint64{
		VoteSideAgainst: p.AgainstVotes,
		VoteSideFor:     p.ForVotes,
		VoteSideAbstain: p.AbstainVotes,
	}

	if prevSide != VoteSidePending {
		v, err := checked.Sub(tally[prevSide], prevWeight)
		if err != nil {
			return err
		}
		tally[prevSide] = v
	}
	if side != VoteSidePending {
		v, err := checked.Add(tally[side], weight)
		if err != nil {
			return err
		}
		tally[side] = v
	}

	p.AgainstVotes = tally[VoteSideAgainst]
	p.ForVotes = tally[VoteSideFor]
	p.AbstainVotes = tally[VoteSideAbstain]
	return nil
}

// ProposalMeta carries human-readable metadata for a proposal.
type ProposalMeta struct {
	Key             common.Address `json:"key" yaml:"key"`
	Proposal        common.Address `json:"proposal" yaml:"proposal"`
	Title           string         `json:"title" yaml:"title"`
	DescriptionLink string         `json:"descriptionLink" yaml:"descriptionLink"`
}
