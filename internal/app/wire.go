//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/lockgov/internal/adapters"
	"github.com/trebuchet-org/lockgov/internal/config"
	"github.com/trebuchet-org/lockgov/internal/logging"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewManageGovernor,
		usecase.NewManageProposal,
		usecase.NewManageVote,
		usecase.NewShowGovernance,
		usecase.NewSyncExecution,
		usecase.NewManageLocker,
		usecase.NewManageEscrow,
		usecase.NewLockerVoting,
		usecase.NewShowLocker,
		usecase.NewManageRedeemer,
		usecase.NewManageBlacklist,
		usecase.NewInstantWithdraw,
		usecase.NewManageTokens,

		// App
		NewApp,
	)
	return nil, nil, nil
}
