package models

import (
	"github.com/ethereum/go-ethereum/common"
)

// TransactionStatus represents the execution status of a queued transaction
type TransactionStatus string

const (
	TransactionStatusQueued   TransactionStatus = "QUEUED"
	TransactionStatusExecuted TransactionStatus = "EXECUTED"
)

// NoETA marks a queued transaction that can execute immediately.
const NoETA int64 = -1

// QueuedTransaction is a proposal's instruction batch handed to the smart
// wallet for execution.
type QueuedTransaction struct {
	// Identification
	Key         common.Address    `json:"key" yaml:"key"`
	SmartWallet common.Address    `json:"smartWallet" yaml:"smartWallet"`
	Proposal    common.Address    `json:"proposal" yaml:"proposal"`
	Status      TransactionStatus `json:"status" yaml:"status"`

	// Batch of instructions
	Instructions []ProposalInstruction `json:"instructions" yaml:"instructions"`

	// Queueing details
	Proposer common.Address `json:"proposer" yaml:"proposer"`
	QueuedAt int64          `json:"queuedAt" yaml:"queuedAt"`
	ETA      int64          `json:"eta" yaml:"eta"`

	// SafeTxHash links the batch to a Safe multisig transaction when the
	// smart wallet is a Safe.
	SafeTxHash string `json:"safeTxHash,omitempty" yaml:"safeTxHash,omitempty"`

	// Execution details
	ExecutedAt      int64  `json:"executedAt,omitempty" yaml:"executedAt,omitempty"`
	ExecutionTxHash string `json:"executionTxHash,omitempty" yaml:"executionTxHash,omitempty"`
}

// SafeExecutionInfo contains execution information for a Safe transaction
type SafeExecutionInfo struct {
	IsExecuted            bool
	TxHash                string
	Confirmations         int
	ConfirmationsRequired int
	ConfirmationDetails   []Confirmation
}

// Confirmation represents a confirmation on a Safe transaction
type Confirmation struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}
