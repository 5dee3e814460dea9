package app

import (
	"log/slog"

	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Confirmer usecase.Confirmer
	Selector  usecase.ProposalSelector

	// Governance
	ManageGovernor *usecase.ManageGovernor
	ManageProposal *usecase.ManageProposal
	ManageVote     *usecase.ManageVote
	ShowGovernance *usecase.ShowGovernance
	SyncExecution  *usecase.SyncExecution

	// Locker
	ManageLocker *usecase.ManageLocker
	ManageEscrow *usecase.ManageEscrow
	LockerVoting *usecase.LockerVoting
	ShowLocker   *usecase.ShowLocker

	// Redeemer
	ManageRedeemer  *usecase.ManageRedeemer
	ManageBlacklist *usecase.ManageBlacklist
	InstantWithdraw *usecase.InstantWithdraw

	ManageTokens *usecase.ManageTokens
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	confirmer usecase.Confirmer,
	selector usecase.ProposalSelector,
	manageGovernor *usecase.ManageGovernor,
	manageProposal *usecase.ManageProposal,
	manageVote *usecase.ManageVote,
	showGovernance *usecase.ShowGovernance,
	syncExecution *usecase.SyncExecution,
	manageLocker *usecase.ManageLocker,
	manageEscrow *usecase.ManageEscrow,
	lockerVoting *usecase.LockerVoting,
	showLocker *usecase.ShowLocker,
	manageRedeemer *usecase.ManageRedeemer,
	manageBlacklist *usecase.ManageBlacklist,
	instantWithdraw *usecase.InstantWithdraw,
	manageTokens *usecase.ManageTokens,
) (*App, error) {
	return &App{
		Config:          cfg,
		Log:             log,
		Confirmer:       confirmer,
		Selector:        selector,
		ManageGovernor:  manageGovernor,
		ManageProposal:  manageProposal,
		ManageVote:      manageVote,
		ShowGovernance:  showGovernance,
		SyncExecution:   syncExecution,
		ManageLocker:    manageLocker,
		ManageEscrow:    manageEscrow,
		LockerVoting:    lockerVoting,
		ShowLocker:      showLocker,
		ManageRedeemer:  manageRedeemer,
		ManageBlacklist: manageBlacklist,
		InstantWithdraw: instantWithdraw,
		ManageTokens:    manageTokens,
	}, nil
}
