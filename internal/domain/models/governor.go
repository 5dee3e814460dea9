package models

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
)

// GovernanceParameters are the DAO-wide voting rules of a Governor.
type GovernanceParameters struct {
	// VotingDelay is the number of seconds after creation before a proposal may be activated.
	VotingDelay uint64 `json:"votingDelay" yaml:"votingDelay"`
	// VotingPeriod is the number of seconds an activated proposal stays open.
	VotingPeriod uint64 `json:"votingPeriod" yaml:"votingPeriod"`
	// QuorumVotes is the minimum For weight for a proposal to pass.
	QuorumVotes uint64 `json:"quorumVotes" yaml:"quorumVotes"`
	// TimelockDelaySeconds is the delay applied by the smart wallet before a
	// queued transaction may execute.
	TimelockDelaySeconds int64 `json:"timelockDelaySeconds" yaml:"timelockDelaySeconds"`
}

// Validate checks the parameter invariants.
func (p GovernanceParameters) Validate() error {
	if p.TimelockDelaySeconds < 0 {
		return domain.ErrInvalidTimelockDelay
	}
	return nil
}

// Governor is the governance root of one DAO.
type Governor struct {
	Key  common.Address `json:"key" yaml:"key"`
	Base common.Address `json:"base" yaml:"base"`

	// ProposalCount is the index the next proposal will receive.
	ProposalCount uint64 `json:"proposalCount" yaml:"proposalCount"`

	// Electorate is the only identity allowed to activate proposals and set votes.
	Electorate common.Address `json:"electorate" yaml:"electorate"`
	// SmartWallet executes queued proposals and owns the governor's parameters.
	SmartWallet common.Address `json:"smartWallet" yaml:"smartWallet"`

	Params GovernanceParameters `json:"params" yaml:"params"`
}
