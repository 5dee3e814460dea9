package adapters

import (
	"fmt"

	"github.com/google/wire"
	"github.com/trebuchet-org/lockgov/internal/adapters/audit"
	"github.com/trebuchet-org/lockgov/internal/adapters/clock"
	"github.com/trebuchet-org/lockgov/internal/adapters/interactive"
	"github.com/trebuchet-org/lockgov/internal/adapters/ledger"
	"github.com/trebuchet-org/lockgov/internal/adapters/progress"
	"github.com/trebuchet-org/lockgov/internal/adapters/repository/bolt"
	"github.com/trebuchet-org/lockgov/internal/adapters/repository/memory"
	"github.com/trebuchet-org/lockgov/internal/adapters/safe"
	"github.com/trebuchet-org/lockgov/internal/adapters/smartwallet"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// ProvideStore opens the unit-of-work store selected by cfg.Storage. The
// cleanup closes it.
func ProvideStore(cfg *config.RuntimeConfig) (usecase.Store, func(), error) {
	var (
		store usecase.Store
		err   error
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store = memory.NewStore()
	case config.StorageFile, "":
		store, err = memory.NewFileStore(cfg.DataDir)
	case config.StorageBolt:
		store, err = bolt.Open(cfg.DataDir)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// StoreSet provides the configured record store
var StoreSet = wire.NewSet(
	ProvideStore,
)

// CollaboratorSet provides the token ledger and the smart wallet
var CollaboratorSet = wire.NewSet(
	ledger.NewLedger,
	wire.Bind(new(usecase.TokenLedger), new(*ledger.Ledger)),

	smartwallet.NewWallet,
	wire.Bind(new(usecase.SmartWallet), new(*smartwallet.Wallet)),
)

// SafeSet provides the Safe Transaction Service client
var SafeSet = wire.NewSet(
	safe.NewClientAdapter,
	wire.Bind(new(usecase.SafeClient), new(*safe.ClientAdapter)),
)

// AuditSet provides the event sink and the clock it stamps records with
var AuditSet = wire.NewSet(
	clock.NewClock,
	audit.NewSink,
	wire.Bind(new(usecase.EventSink), new(*audit.Sink)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.Confirmer), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.ProposalSelector), new(*interactive.SelectorAdapter)),
	progress.NewProgressSink,
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	StoreSet,
	CollaboratorSet,
	SafeSet,
	AuditSet,
	InteractiveSet,
)
