package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
)

// LockerParams are the locking rules of a Locker.
type LockerParams struct {
	// WhitelistEnabled restricts program-initiated locks to whitelisted programs.
	WhitelistEnabled bool `json:"whitelistEnabled" yaml:"whitelistEnabled"`
	// MaxStakeVoteMultiplier is the power multiplier of a lock at MaxStakeDuration.
	MaxStakeVoteMultiplier uint8 `json:"maxStakeVoteMultiplier" yaml:"maxStakeVoteMultiplier"`
	// MinStakeDuration is the shortest lock in seconds.
	MinStakeDuration uint64 `json:"minStakeDuration" yaml:"minStakeDuration"`
	// MaxStakeDuration is the longest lock in seconds.
	MaxStakeDuration uint64 `json:"maxStakeDuration" yaml:"maxStakeDuration"`
	// ProposalActivationMinVotes is the voting power an escrow needs to
	// activate a proposal through the locker.
	ProposalActivationMinVotes uint64 `json:"proposalActivationMinVotes" yaml:"proposalActivationMinVotes"`
}

// Validate checks the parameter invariants.
func (p LockerParams) Validate() error {
	if p.MinStakeDuration > p.MaxStakeDuration {
		return fmt.Errorf("%w: min stake duration %d exceeds max %d",
			domain.ErrInvalidLockerParams, p.MinStakeDuration, p.MaxStakeDuration)
	}
	if p.MaxStakeVoteMultiplier < 1 {
		return fmt.Errorf("%w: max stake vote multiplier must be at least 1", domain.ErrInvalidLockerParams)
	}
	return nil
}

// CheckDuration validates a lock duration against the stake bounds.
func (p LockerParams) CheckDuration(duration uint64) error {
	if duration < p.MinStakeDuration {
		return domain.ErrLockupDurationTooShort
	}
	if duration > p.MaxStakeDuration {
		return domain.ErrLockupDurationTooLong
	}
	return nil
}

// Locker is the locking root of one DAO.
type Locker struct {
	Key       common.Address `json:"key" yaml:"key"`
	Base      common.Address `json:"base" yaml:"base"`
	TokenMint common.Address `json:"tokenMint" yaml:"tokenMint"`
	Governor  common.Address `json:"governor" yaml:"governor"`

	// LockedSupply is the sum of all escrow amounts.
	LockedSupply uint64 `json:"lockedSupply" yaml:"lockedSupply"`

	Params LockerParams `json:"params" yaml:"params"`
}

// LockerWhitelistEntry allows a program to lock on behalf of escrow owners.
// A zero Owner allows the program to lock for any owner.
type LockerWhitelistEntry struct {
	Key       common.Address `json:"key" yaml:"key"`
	Locker    common.Address `json:"locker" yaml:"locker"`
	ProgramID common.Address `json:"programId" yaml:"programId"`
	Owner     common.Address `json:"owner" yaml:"owner"`
}
