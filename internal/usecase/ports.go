package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
)

// Store runs units of work against the record set. Update applies every
// write made by fn or none of them; writers are serialized.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// Tx is the record view of one unit of work. Getters return copies and
// fail with a domain.NotFoundErr when the record is missing.
type Tx interface {
	GovernorRepository
	ProposalRepository
	VoteRepository
	LockerRepository
	EscrowRepository
	RedeemerRepository
	TokenAccountRepository
	QueuedTransactionRepository
}

// GovernorRepository handles persistence of governors
type GovernorRepository interface {
	GetGovernor(key common.Address) (*models.Governor, error)
	SaveGovernor(governor *models.Governor) error
	ListGovernors() ([]*models.Governor, error)
}

// ProposalRepository handles persistence of proposals and their metadata
type ProposalRepository interface {
	GetProposal(key common.Address) (*models.Proposal, error)
	SaveProposal(proposal *models.Proposal) error
	ListProposals(filter ProposalFilter) ([]*models.Proposal, error)
	GetProposalMeta(key common.Address) (*models.ProposalMeta, error)
	SaveProposalMeta(meta *models.ProposalMeta) error
}

type VoteRepository interface {
	GetVote(key common.Address) (*models.Vote, error)
	SaveVote(vote *models.Vote) error
	ListVotes(proposal common.Address) ([]*models.Vote, error)
}

// LockerRepository handles persistence of lockers and their program whitelist
type LockerRepository interface {
	GetLocker(key common.Address) (*models.Locker, error)
	SaveLocker(locker *models.Locker) error
	ListLockers() ([]*models.Locker, error)
	GetWhitelistEntry(key common.Address) (*models.LockerWhitelistEntry, error)
	SaveWhitelistEntry(entry *models.LockerWhitelistEntry) error
	DeleteWhitelistEntry(key common.Address) error
	ListWhitelistEntries(locker common.Address) ([]*models.LockerWhitelistEntry, error)
}

type EscrowRepository interface {
	GetEscrow(key common.Address) (*models.Escrow, error)
	SaveEscrow(escrow *models.Escrow) error
	ListEscrows(filter EscrowFilter) ([]*models.Escrow, error)
}

// RedeemerRepository handles persistence of redeemers and the blacklist
type RedeemerRepository interface {
	GetRedeemer(key common.Address) (*models.LockerRedeemer, error)
	SaveRedeemer(redeemer *models.LockerRedeemer) error
	ListRedeemers(locker common.Address) ([]*models.LockerRedeemer, error)
	GetBlacklist(key common.Address) (*models.Blacklist, error)
	SaveBlacklist(entry *models.Blacklist) error
	DeleteBlacklist(key common.Address) error
}

type TokenAccountRepository interface {
	GetTokenAccount(key common.Address) (*models.TokenAccount, error)
	SaveTokenAccount(account *models.TokenAccount) error
	ListTokenAccounts(owner common.Address) ([]*models.TokenAccount, error)
}

type QueuedTransactionRepository interface {
	GetQueuedTransaction(key common.Address) (*models.QueuedTransaction, error)
	SaveQueuedTransaction(transaction *models.QueuedTransaction) error
}

// ProposalFilter narrows ListProposals. Zero values match everything.
type ProposalFilter struct {
	Governor common.Address
	Proposer common.Address
}

// EscrowFilter narrows ListEscrows. Zero values match everything.
type EscrowFilter struct {
	Locker common.Address
	Owner  common.Address
}

// TokenLedger moves token balances inside the caller's unit of work so
// transfers commit or roll back together with the rest of the operation.
type TokenLedger interface {
	// OpenAccount returns the canonical account of owner for mint, creating
	// it with a zero balance when missing.
	OpenAccount(tx Tx, mint, owner common.Address) (*models.TokenAccount, error)
	// Transfer debits from and credits to. authority must own from.
	Transfer(tx Tx, from, to, authority common.Address, amount uint64) error
	MintTo(tx Tx, account common.Address, amount uint64) error
}

// QueueTransactionRequest hands a passed proposal to the smart wallet.
type QueueTransactionRequest struct {
	SmartWallet   common.Address
	Proposal      common.Address
	Proposer      common.Address
	Instructions  []models.ProposalInstruction
	TimelockDelay int64
	Now           int64
	SafeTxHash    string
}

// SmartWallet is the timelocked execution service of a governor.
type SmartWallet interface {
	QueueTransaction(tx Tx, req QueueTransactionRequest) (*models.QueuedTransaction, error)
}

// SafeClient reads execution state from the Safe Transaction Service
type SafeClient interface {
	GetTransactionExecutionInfo(ctx context.Context, safeTxHash string) (*models.SafeExecutionInfo, error)
}

// EventSink delivers audit events after their unit of work committed.
type EventSink interface {
	Publish(ctx context.Context, evts []events.Event) error
}

// NopEventSink drops every event
type NopEventSink struct{}

func (NopEventSink) Publish(context.Context, []events.Event) error { return nil }

// Clock supplies the current time in unix seconds.
type Clock interface {
	Now() int64
}

// Confirmer asks the operator to approve an irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// ProposalSelector lets the operator pick a proposal when none was named.
type ProposalSelector interface {
	SelectProposal(ctx context.Context, proposals []*ProposalView, prompt string) (*ProposalView, error)
}
