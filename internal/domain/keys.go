package domain

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Seeds used to derive record keys. Every record is addressed by a key
// derived from its seed and the identities it hangs off, so the same
// inputs always resolve to the same record.
const (
	SeedGovernor          = "Governor"
	SeedProposal          = "Proposal"
	SeedProposalMeta      = "ProposalMeta"
	SeedVote              = "Vote"
	SeedLocker            = "Locker"
	SeedEscrow            = "Escrow"
	SeedWhitelistEntry    = "LockerWhitelistEntry"
	SeedRedeemer          = "Redeemer"
	SeedBlacklist         = "Blacklist"
	SeedTokenAccount      = "TokenAccount"
	SeedQueuedTransaction = "Transaction"
)

// DeriveKey hashes the seed and parts into a record address.
func DeriveKey(seed string, parts ...[]byte) common.Address {
	data := make([][]byte, 0, len(parts)+1)
	data = append(data, []byte(seed))
	data = append(data, parts...)
	return common.BytesToAddress(crypto.Keccak256(data...))
}

func GovernorKey(base common.Address) common.Address {
	return DeriveKey(SeedGovernor, base.Bytes())
}

func ProposalKey(governor common.Address, index uint64) common.Address {
	return DeriveKey(SeedProposal, governor.Bytes(), u64Bytes(index))
}

func ProposalMetaKey(proposal common.Address) common.Address {
	return DeriveKey(SeedProposalMeta, proposal.Bytes())
}

func VoteKey(proposal, voter common.Address) common.Address {
	return DeriveKey(SeedVote, proposal.Bytes(), voter.Bytes())
}

func LockerKey(base common.Address) common.Address {
	return DeriveKey(SeedLocker, base.Bytes())
}

func EscrowKey(locker, owner common.Address) common.Address {
	return DeriveKey(SeedEscrow, locker.Bytes(), owner.Bytes())
}

func WhitelistEntryKey(locker, program, owner common.Address) common.Address {
	return DeriveKey(SeedWhitelistEntry, locker.Bytes(), program.Bytes(), owner.Bytes())
}

func RedeemerKey(locker, receiptMint common.Address) common.Address {
	return DeriveKey(SeedRedeemer, locker.Bytes(), receiptMint.Bytes())
}

func BlacklistKey(locker, escrow common.Address) common.Address {
	return DeriveKey(SeedBlacklist, locker.Bytes(), escrow.Bytes())
}

// TokenAccountKey is the canonical holding account of owner for mint.
func TokenAccountKey(mint, owner common.Address) common.Address {
	return DeriveKey(SeedTokenAccount, mint.Bytes(), owner.Bytes())
}

func QueuedTransactionKey(smartWallet common.Address, proposal common.Address) common.Address {
	return DeriveKey(SeedQueuedTransaction, smartWallet.Bytes(), proposal.Bytes())
}

// ParseAddress parses a hex identity, rejecting malformed input.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

func u64Bytes(v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return b[:]
}
