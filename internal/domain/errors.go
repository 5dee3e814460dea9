package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide what to do with it.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindPrecondition  Kind = "precondition"
	KindAuthorization Kind = "authorization"
	KindArithmetic    Kind = "arithmetic"
	KindReplay        Kind = "replay"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindUnknown       Kind = "unknown"
)

// Error is a classified domain failure. Sentinel values are compared by
// identity with errors.Is.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

// KindOf returns the kind of the first domain error found in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// CodeOf returns the stable code of the first domain error in err's chain.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = newError(KindNotFound, "NotFound", "not found")

	// ErrAlreadyExists is returned when trying to create a record that already exists
	ErrAlreadyExists = newError(KindConflict, "AlreadyExists", "already exists")

	// ErrUnauthorized is returned when the caller is not the expected authority
	ErrUnauthorized = newError(KindAuthorization, "Unauthorized", "unauthorized action")

	// ErrArithmeticOverflow is returned by checked arithmetic on overflow,
	// underflow or division by zero
	ErrArithmeticOverflow = newError(KindArithmetic, "ArithmeticOverflow", "arithmetic overflow")

	// ErrInvalidAddress is returned when an identity cannot be parsed
	ErrInvalidAddress = newError(KindValidation, "InvalidAddress", "invalid address")

	// ErrInvalidAmount is returned for zero amounts where a positive one is required
	ErrInvalidAmount = newError(KindValidation, "InvalidAmount", "amount must be greater than 0")
)

// Governance errors
var (
	ErrInvalidVoteSide       = newError(KindValidation, "InvalidVoteSide", "invalid vote side")
	ErrInvalidTimelockDelay  = newError(KindValidation, "InvalidTimelockDelay", "timelock delay must be at least 0 seconds")
	ErrVotingDelayNotMet     = newError(KindPrecondition, "VotingDelayNotMet", "the proposal cannot be activated since it has not yet passed the voting delay")
	ErrProposalNotDraft      = newError(KindPrecondition, "ProposalNotDraft", "only drafts can be canceled or activated")
	ErrProposalNotActive     = newError(KindPrecondition, "ProposalNotActive", "the proposal must be active")
	ErrProposalNotSucceeded  = newError(KindPrecondition, "ProposalNotSucceeded", "the proposal must have succeeded to be queued")
	ErrProposalNotQueued     = newError(KindPrecondition, "ProposalNotQueued", "the proposal has not been queued")
	ErrSmartWalletMismatch   = newError(KindAuthorization, "SmartWalletMismatch", "the execution service does not match the governor")
	ErrMissingSafeTxHash     = newError(KindPrecondition, "MissingSafeTxHash", "queued transaction has no Safe transaction hash")
	ErrInvalidSafeTxHash     = newError(KindValidation, "InvalidSafeTxHash", "safe transaction hash must be a 0x-prefixed 32-byte hex string")
	ErrInsufficientVotePower = newError(KindPrecondition, "InsufficientVotingPower", "escrow voting power is below the proposal activation minimum")
)

// Locker errors
var (
	ErrInvalidLockerParams        = newError(KindValidation, "InvalidLockerParams", "invalid locker params")
	ErrLockupDurationTooShort     = newError(KindValidation, "LockupDurationTooShort", "lockup duration must at least be the min stake duration")
	ErrLockupDurationTooLong      = newError(KindValidation, "LockupDurationTooLong", "lockup duration must at most be the max stake duration")
	ErrRefreshCannotShorten       = newError(KindPrecondition, "RefreshCannotShorten", "a voting escrow refresh cannot shorten the escrow time remaining")
	ErrEscrowNotEnded             = newError(KindPrecondition, "EscrowNotEnded", "escrow has not ended")
	ErrProgramNotWhitelisted      = newError(KindAuthorization, "ProgramNotWhitelisted", "caller program not whitelisted to invoke lock")
	ErrEscrowOwnerNotWhitelisted  = newError(KindAuthorization, "EscrowOwnerNotWhitelisted", "caller program not whitelisted for escrow owner to invoke lock")
	ErrMustProvideWhitelist       = newError(KindAuthorization, "MustProvideWhitelist", "program whitelist enabled; lock must go through the owner or a whitelisted program")
	ErrMustCallLockPermissionless = newError(KindAuthorization, "MustCallLockPermissionless", "locker has no program whitelist; lock permissionlessly")
	ErrInvalidLockAuthority       = newError(KindValidation, "InvalidLockAuthority", "unknown lock authority")
	ErrLockerGovernorMismatch     = newError(KindValidation, "LockerGovernorMismatch", "proposal does not belong to the locker's governor")
	ErrElectorateNotLocker        = newError(KindAuthorization, "ElectorateNotLocker", "governor electorate is not this locker")
	ErrEscrowLockerMismatch       = newError(KindValidation, "EscrowLockerMismatch", "escrow does not belong to this locker")
)

// Redeemer errors
var (
	ErrInvalidTokenAccount   = newError(KindValidation, "InvalidTokenAccount", "invalid token account")
	ErrInsufficientFunds     = newError(KindArithmetic, "InsufficientFunds", "insufficient funds")
	ErrRedeemerNotActive     = newError(KindPrecondition, "RedeemerNotActive", "redeemer is not active")
	ErrEscrowEmpty           = newError(KindPrecondition, "EscrowEmpty", "escrow is empty")
	ErrEscrowBlacklisted     = newError(KindReplay, "EscrowBlacklisted", "escrow account blacklisted")
	ErrEscrowTooRecent       = newError(KindPrecondition, "EscrowTooRecent", "this escrow is too recent to be redeemed")
	ErrInvalidRedemptionRate = newError(KindValidation, "InvalidRedemptionRate", "redemption rate must be greater than 0")
	ErrRedemptionRateSame    = newError(KindValidation, "RedemptionRateSameAsPrevious", "redemption rate must be different from the previous rate")
	ErrInvalidCutoffDate     = newError(KindValidation, "InvalidCutoffDate", "cutoff date must be in the past")
	ErrInvalidRedeemerStatus = newError(KindValidation, "InvalidRedeemerStatus", "redeemer status must be 0 (paused) or 1 (active)")
	ErrNoPendingAdmin        = newError(KindPrecondition, "NoPendingAdmin", "no pending admin to accept")
	ErrDeployerNotConfigured = newError(KindAuthorization, "DeployerNotConfigured", "no redeemer deployer configured")
)

// NotFoundErr reports which record was missing. It unwraps to ErrNotFound.
type NotFoundErr struct {
	Kind string
	Key  string
}

func (e NotFoundErr) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
}

func (e NotFoundErr) Unwrap() error {
	return ErrNotFound
}
