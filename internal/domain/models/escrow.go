package models

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/lockgov/internal/domain"
)

// Escrow is one owner's locked balance under a Locker.
type Escrow struct {
	Key    common.Address `json:"key" yaml:"key"`
	Locker common.Address `json:"locker" yaml:"locker"`
	Owner  common.Address `json:"owner" yaml:"owner"`

	// Tokens is the token account holding the locked balance.
	Tokens common.Address `json:"tokens" yaml:"tokens"`

	Amount          uint64 `json:"amount" yaml:"amount"`
	EscrowStartedAt int64  `json:"escrowStartedAt" yaml:"escrowStartedAt"`
	EscrowEndsAt    int64  `json:"escrowEndsAt" yaml:"escrowEndsAt"`

	VoteDelegate common.Address `json:"voteDelegate" yaml:"voteDelegate"`
}

// Ended reports whether the lock window is over at now.
func (e *Escrow) Ended(now int64) bool {
	return now >= e.EscrowEndsAt
}

// Reset clears the balance and lock window.
func (e *Escrow) Reset() {
	e.Amount = 0
	e.EscrowStartedAt = 0
	e.EscrowEndsAt = 0
}

// RemainingLock returns the seconds left in the lock at now, clamped to
// [0, maxDuration].
func (e *Escrow) RemainingLock(maxDuration uint64, now int64) uint64 {
	if e.EscrowEndsAt <= now {
		return 0
	}
	// EscrowEndsAt > now so the difference is positive; it may still
	// exceed int64 range when now is negative, which uint64 holds.
	remaining := uint64(e.EscrowEndsAt) - uint64(now)
	if remaining > maxDuration {
		return maxDuration
	}
	return remaining
}

// VotingPower returns the escrow's voting power at now:
//
//	amount * (1 + (multiplier-1) * remaining / maxDuration)
//
// computed as amount + floor(amount*(multiplier-1)*remaining/maxDuration)
// with a 256-bit intermediate. It never mutates the escrow.
func (e *Escrow) VotingPower(params LockerParams, now int64) (uint64, error) {
	if e.Amount == 0 {
		return 0, nil
	}
	if params.MaxStakeVoteMultiplier < 1 {
		return 0, domain.ErrInvalidLockerParams
	}

	remaining := e.RemainingLock(params.MaxStakeDuration, now)
	if remaining == 0 || params.MaxStakeVoteMultiplier == 1 {
		return e.Amount, nil
	}

	boost := uint256.NewInt(e.Amount)
	boost.Mul(boost, uint256.NewInt(uint64(params.MaxStakeVoteMultiplier-1)))
	boost.Mul(boost, uint256.NewInt(remaining))
	boost.Div(boost, uint256.NewInt(params.MaxStakeDuration))

	power, overflow := boost.AddOverflow(boost, uint256.NewInt(e.Amount))
	if overflow || !power.IsUint64() {
		return 0, domain.ErrArithmeticOverflow
	}
	return power.Uint64(), nil
}
