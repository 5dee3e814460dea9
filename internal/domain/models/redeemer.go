package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain"
)

// RedeemerStatus toggles whether a redeemer accepts withdrawals.
type RedeemerStatus uint8

const (
	RedeemerStatusPaused RedeemerStatus = 0
	RedeemerStatusActive RedeemerStatus = 1
)

// ParseRedeemerStatus converts a raw status into a RedeemerStatus.
func ParseRedeemerStatus(raw uint8) (RedeemerStatus, error) {
	switch RedeemerStatus(raw) {
	case RedeemerStatusPaused, RedeemerStatusActive:
		return RedeemerStatus(raw), nil
	}
	return 0, fmt.Errorf("%w: %d", domain.ErrInvalidRedeemerStatus, raw)
}

func (s RedeemerStatus) String() string {
	switch s {
	case RedeemerStatusPaused:
		return "paused"
	case RedeemerStatusActive:
		return "active"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// LockerRedeemer is an early-exit pool paying receipt tokens for escrowed
// voting power at a fixed rate.
type LockerRedeemer struct {
	Key          common.Address `json:"key" yaml:"key"`
	Locker       common.Address `json:"locker" yaml:"locker"`
	Admin        common.Address `json:"admin" yaml:"admin"`
	PendingAdmin common.Address `json:"pendingAdmin" yaml:"pendingAdmin"`
	ReceiptMint  common.Address `json:"receiptMint" yaml:"receiptMint"`

	// ReceiptAccount holds the funded receipt balance.
	ReceiptAccount common.Address `json:"receiptAccount" yaml:"receiptAccount"`

	Status RedeemerStatus `json:"status" yaml:"status"`

	// RedemptionRate divides voting power into receipt tokens.
	RedemptionRate uint64 `json:"redemptionRate" yaml:"redemptionRate"`

	// Treasury receives the principal of redeemed escrows.
	Treasury common.Address `json:"treasury" yaml:"treasury"`

	// CutoffDate only admits escrows started strictly before it.
	CutoffDate int64 `json:"cutoffDate" yaml:"cutoffDate"`

	// Amount is the funded receipt balance.
	Amount uint64 `json:"amount" yaml:"amount"`
}

// Blacklist marks an escrow as already redeemed (or banned).
type Blacklist struct {
	Key       common.Address `json:"key" yaml:"key"`
	Locker    common.Address `json:"locker" yaml:"locker"`
	Escrow    common.Address `json:"escrow" yaml:"escrow"`
	Owner     common.Address `json:"owner" yaml:"owner"`
	Timestamp int64          `json:"timestamp" yaml:"timestamp"`
}
