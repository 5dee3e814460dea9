package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
)

// VoteSide is the side a Vote counts towards.
type VoteSide uint8

const (
	VoteSidePending VoteSide = iota
	VoteSideAgainst
	VoteSideFor
	VoteSideAbstain
)

// ParseVoteSide converts a raw side into a VoteSide.
func ParseVoteSide(raw uint8) (VoteSide, error) {
	side := VoteSide(raw)
	if side > VoteSideAbstain {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidVoteSide, raw)
	}
	return side, nil
}

// ParseVoteSideName accepts the lower-case side name or its number.
func ParseVoteSideName(name string) (VoteSide, error) {
	switch name {
	case "pending", "0":
		return VoteSidePending, nil
	case "against", "1":
		return VoteSideAgainst, nil
	case "for", "2":
		return VoteSideFor, nil
	case "abstain", "3":
		return VoteSideAbstain, nil
	}
	return 0, fmt.Errorf("%w: %q", domain.ErrInvalidVoteSide, name)
}

func (s VoteSide) String() string {
	switch s {
	case VoteSidePending:
		return "pending"
	case VoteSideAgainst:
		return "against"
	case VoteSideFor:
		return "for"
	case VoteSideAbstain:
		return "abstain"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Vote is one voter's current side and weight on one proposal.
type Vote struct {
	Key      common.Address `json:"key" yaml:"key"`
	Proposal common.Address `json:"proposal" yaml:"proposal"`
	Voter    common.Address `json:"voter" yaml:"voter"`
	Side     VoteSide       `json:"side" yaml:"side"`
	Weight   uint64         `json:"weight" yaml:"weight"`
}
