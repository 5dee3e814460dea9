// Package events defines the audit records produced by every mutating
// operation. Events are plain values; delivering them is the job of a sink.
package events

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// Event is an immutable audit record.
type Event interface {
	EventName() string
}

// Governance events

type GovernorCreateEvent struct {
	Governor    common.Address              `json:"governor"`
	Electorate  common.Address              `json:"electorate"`
	SmartWallet common.Address              `json:"smartWallet"`
	Parameters  models.GovernanceParameters `json:"parameters"`
}

func (GovernorCreateEvent) EventName() string { return "GovernorCreate" }

type ProposalCreateEvent struct {
	Governor     common.Address               `json:"governor"`
	Proposal     common.Address               `json:"proposal"`
	Index        uint64                       `json:"index"`
	Instructions []models.ProposalInstruction `json:"instructions"`
}

func (ProposalCreateEvent) EventName() string { return "ProposalCreate" }

type ProposalActivateEvent struct {
	Governor     common.Address `json:"governor"`
	Proposal     common.Address `json:"proposal"`
	VotingEndsAt int64          `json:"votingEndsAt"`
}

func (ProposalActivateEvent) EventName() string { return "ProposalActivate" }

type ProposalCancelEvent struct {
	Governor common.Address `json:"governor"`
	Proposal common.Address `json:"proposal"`
}

func (ProposalCancelEvent) EventName() string { return "ProposalCancel" }

type ProposalQueueEvent struct {
	Governor    common.Address `json:"governor"`
	Proposal    common.Address `json:"proposal"`
	Transaction common.Address `json:"transaction"`
}

func (ProposalQueueEvent) EventName() string { return "ProposalQueue" }

type ProposalExecutedEvent struct {
	Proposal        common.Address `json:"proposal"`
	Transaction     common.Address `json:"transaction"`
	SafeTxHash      string         `json:"safeTxHash"`
	ExecutionTxHash string         `json:"executionTxHash"`
}

func (ProposalExecutedEvent) EventName() string { return "ProposalExecuted" }

type ProposalMetaCreateEvent struct {
	Governor        common.Address `json:"governor"`
	Proposal        common.Address `json:"proposal"`
	Title           string         `json:"title"`
	DescriptionLink string         `json:"descriptionLink"`
}

func (ProposalMetaCreateEvent) EventName() string { return "ProposalMetaCreate" }

type NewVoteEvent struct {
	Proposal common.Address `json:"proposal"`
	Voter    common.Address `json:"voter"`
	Vote     common.Address `json:"vote"`
}

func (NewVoteEvent) EventName() string { return "NewVote" }

type VoteSetEvent struct {
	Governor   common.Address  `json:"governor"`
	Proposal   common.Address  `json:"proposal"`
	Voter      common.Address  `json:"voter"`
	Vote       common.Address  `json:"vote"`
	PrevSide   models.VoteSide `json:"prevSide"`
	PrevWeight uint64          `json:"prevWeight"`
	Side       models.VoteSide `json:"side"`
	Weight     uint64          `json:"weight"`
}

func (VoteSetEvent) EventName() string { return "VoteSet" }

type GovernorSetParamsEvent struct {
	Governor   common.Address              `json:"governor"`
	PrevParams models.GovernanceParameters `json:"prevParams"`
	Params     models.GovernanceParameters `json:"params"`
}

func (GovernorSetParamsEvent) EventName() string { return "GovernorSetParams" }

type GovernorSetElectorateEvent struct {
	Governor       common.Address `json:"governor"`
	PrevElectorate common.Address `json:"prevElectorate"`
	NewElectorate  common.Address `json:"newElectorate"`
}

func (GovernorSetElectorateEvent) EventName() string { return "GovernorSetElectorate" }

// Locker events

type NewLockerEvent struct {
	Governor  common.Address      `json:"governor"`
	Locker    common.Address      `json:"locker"`
	TokenMint common.Address      `json:"tokenMint"`
	Params    models.LockerParams `json:"params"`
}

func (NewLockerEvent) EventName() string { return "NewLocker" }

type NewEscrowEvent struct {
	Escrow      common.Address `json:"escrow"`
	EscrowOwner common.Address `json:"escrowOwner"`
	Locker      common.Address `json:"locker"`
	Timestamp   int64          `json:"timestamp"`
}

func (NewEscrowEvent) EventName() string { return "NewEscrow" }

type LockEvent struct {
	Locker           common.Address `json:"locker"`
	EscrowOwner      common.Address `json:"escrowOwner"`
	TokenMint        common.Address `json:"tokenMint"`
	Amount           uint64         `json:"amount"`
	LockerSupply     uint64         `json:"lockerSupply"`
	Duration         uint64         `json:"duration"`
	PrevEscrowEndsAt int64          `json:"prevEscrowEndsAt"`
	NextEscrowEndsAt int64          `json:"nextEscrowEndsAt"`
}

func (LockEvent) EventName() string { return "Lock" }

type ExitEscrowEvent struct {
	EscrowOwner    common.Address `json:"escrowOwner"`
	Locker         common.Address `json:"locker"`
	Timestamp      int64          `json:"timestamp"`
	LockerSupply   uint64         `json:"lockerSupply"`
	ReleasedAmount uint64         `json:"releasedAmount"`
}

func (ExitEscrowEvent) EventName() string { return "ExitEscrow" }

type SetVoteDelegateEvent struct {
	EscrowOwner common.Address `json:"escrowOwner"`
	OldDelegate common.Address `json:"oldDelegate"`
	NewDelegate common.Address `json:"newDelegate"`
}

func (SetVoteDelegateEvent) EventName() string { return "SetVoteDelegate" }

type LockerSetParamsEvent struct {
	Locker     common.Address      `json:"locker"`
	PrevParams models.LockerParams `json:"prevParams"`
	Params     models.LockerParams `json:"params"`
}

func (LockerSetParamsEvent) EventName() string { return "LockerSetParams" }

type ApproveLockPrivilegeEvent struct {
	Locker    common.Address `json:"locker"`
	ProgramID common.Address `json:"programId"`
	Owner     common.Address `json:"owner"`
}

func (ApproveLockPrivilegeEvent) EventName() string { return "ApproveLockPrivilege" }

type RevokeLockPrivilegeEvent struct {
	Locker    common.Address `json:"locker"`
	ProgramID common.Address `json:"programId"`
	Owner     common.Address `json:"owner"`
}

func (RevokeLockPrivilegeEvent) EventName() string { return "RevokeLockPrivilege" }

// Redeemer events

type CreateRedeemerEvent struct {
	Redeemer       common.Address `json:"redeemer"`
	Locker         common.Address `json:"locker"`
	Admin          common.Address `json:"admin"`
	ReceiptMint    common.Address `json:"receiptMint"`
	Treasury       common.Address `json:"treasury"`
	RedemptionRate uint64         `json:"redemptionRate"`
	CutoffDate     int64          `json:"cutoffDate"`
}

func (CreateRedeemerEvent) EventName() string { return "CreateRedeemer" }

type UpdateRedeemerAdminEvent struct {
	Redeemer     common.Address `json:"redeemer"`
	Admin        common.Address `json:"admin"`
	PrevPending  common.Address `json:"prevPending"`
	PendingAdmin common.Address `json:"pendingAdmin"`
}

func (UpdateRedeemerAdminEvent) EventName() string { return "UpdateRedeemerAdmin" }

type AcceptRedeemerAdminEvent struct {
	Redeemer  common.Address `json:"redeemer"`
	PrevAdmin common.Address `json:"prevAdmin"`
	NewAdmin  common.Address `json:"newAdmin"`
}

func (AcceptRedeemerAdminEvent) EventName() string { return "AcceptRedeemerAdmin" }

type UpdateTreasuryEvent struct {
	Redeemer     common.Address `json:"redeemer"`
	PrevTreasury common.Address `json:"prevTreasury"`
	NewTreasury  common.Address `json:"newTreasury"`
}

func (UpdateTreasuryEvent) EventName() string { return "UpdateTreasury" }

type AddBlacklistEntryEvent struct {
	Locker    common.Address `json:"locker"`
	Escrow    common.Address `json:"escrow"`
	Owner     common.Address `json:"owner"`
	Admin     common.Address `json:"admin"`
	Timestamp int64          `json:"timestamp"`
}

func (AddBlacklistEntryEvent) EventName() string { return "AddBlacklistEntry" }

type RemoveBlacklistEntryEvent struct {
	Locker    common.Address `json:"locker"`
	Escrow    common.Address `json:"escrow"`
	Owner     common.Address `json:"owner"`
	Admin     common.Address `json:"admin"`
	Timestamp int64          `json:"timestamp"`
}

func (RemoveBlacklistEntryEvent) EventName() string { return "RemoveBlacklistEntry" }

type AddFundsEvent struct {
	Redeemer   common.Address `json:"redeemer"`
	Admin      common.Address `json:"admin"`
	Amount     uint64         `json:"amount"`
	PrevAmount uint64         `json:"prevAmount"`
	NewAmount  uint64         `json:"newAmount"`
}

func (AddFundsEvent) EventName() string { return "AddFunds" }

type RemoveAllFundsEvent struct {
	Redeemer    common.Address `json:"redeemer"`
	Admin       common.Address `json:"admin"`
	Destination common.Address `json:"destination"`
	Amount      uint64         `json:"amount"`
}

func (RemoveAllFundsEvent) EventName() string { return "RemoveAllFunds" }

type ToggleRedeemerEvent struct {
	Redeemer   common.Address        `json:"redeemer"`
	PrevStatus models.RedeemerStatus `json:"prevStatus"`
	NewStatus  models.RedeemerStatus `json:"newStatus"`
}

func (ToggleRedeemerEvent) EventName() string { return "ToggleRedeemer" }

type UpdateRedemptionRateEvent struct {
	Redeemer     common.Address `json:"redeemer"`
	PreviousRate uint64         `json:"previousRate"`
	NewRate      uint64         `json:"newRate"`
}

func (UpdateRedemptionRateEvent) EventName() string { return "UpdateRedemptionRate" }

type InstantWithdrawEvent struct {
	Locker        common.Address `json:"locker"`
	Escrow        common.Address `json:"escrow"`
	Owner         common.Address `json:"owner"`
	Amount        uint64         `json:"amount"`
	VotingPower   uint64         `json:"votingPower"`
	ReceiptAmount uint64         `json:"receiptAmount"`
	Timestamp     int64          `json:"timestamp"`
}

func (InstantWithdrawEvent) EventName() string { return "InstantWithdraw" }

// Ledger events

type MintToEvent struct {
	Mint    common.Address `json:"mint"`
	Account common.Address `json:"account"`
	Amount  uint64         `json:"amount"`
}

func (MintToEvent) EventName() string { return "MintTo" }
