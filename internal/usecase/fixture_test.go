package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/lockgov/internal/adapters/clock"
	"github.com/trebuchet-org/lockgov/internal/adapters/ledger"
	"github.com/trebuchet-org/lockgov/internal/adapters/repository/memory"
	"github.com/trebuchet-org/lockgov/internal/adapters/smartwallet"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

const (
	genesis = int64(1_700_000_000)
	day     = int64(24 * 60 * 60)
	year    = uint64(365 * 24 * 60 * 60)
)

var (
	governorBase = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	lockerBase   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	smartWallet  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	electorate   = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	proposer     = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	deployer     = common.HexToAddress("0x00000000000000000000000000000000000000a4")
	alice        = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	bob          = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	carol        = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	tokenMint    = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	receiptMint  = common.HexToAddress("0x00000000000000000000000000000000000000d2")
	program      = common.HexToAddress("0x00000000000000000000000000000000000000e1")
)

// recordingSink keeps every published event.
type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *recordingSink) Publish(_ context.Context, evts []events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evts...)
	return nil
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.EventName()
	}
	return out
}

type testEnv struct {
	ctx   context.Context
	store *memory.Store
	clock *clock.Fixed
	sink  *recordingSink

	governors  *usecase.ManageGovernor
	proposals  *usecase.ManageProposal
	votes      *usecase.ManageVote
	governance *usecase.ShowGovernance
	lockers    *usecase.ManageLocker
	escrows    *usecase.ManageEscrow
	voting     *usecase.LockerVoting
	showLocker *usecase.ShowLocker
	redeemers  *usecase.ManageRedeemer
	blacklist  *usecase.ManageBlacklist
	withdraw   *usecase.InstantWithdraw
	tokens     *usecase.ManageTokens
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := discardLogger()
	store := memory.NewStore()
	t.Cleanup(func() { _ = store.Close() })

	clk := clock.NewFixed(genesis)
	sink := &recordingSink{}
	led := ledger.NewLedger(log)
	wallet := smartwallet.NewWallet(log)
	cfg := &config.RuntimeConfig{Deployer: deployer}

	return &testEnv{
		ctx:        context.Background(),
		store:      store,
		clock:      clk,
		sink:       sink,
		governors:  usecase.NewManageGovernor(store, sink, clk, log),
		proposals:  usecase.NewManageProposal(store, wallet, sink, clk, log),
		votes:      usecase.NewManageVote(store, sink, clk, log),
		governance: usecase.NewShowGovernance(store, clk),
		lockers:    usecase.NewManageLocker(store, sink, clk, log),
		escrows:    usecase.NewManageEscrow(store, led, sink, clk, log),
		voting:     usecase.NewLockerVoting(store, sink, clk, log),
		showLocker: usecase.NewShowLocker(store, clk),
		redeemers:  usecase.NewManageRedeemer(cfg, store, led, sink, clk, log),
		blacklist:  usecase.NewManageBlacklist(store, sink, clk, log),
		withdraw:   usecase.NewInstantWithdraw(store, led, sink, clk, log),
		tokens:     usecase.NewManageTokens(store, led, sink, clk, log),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (e *testEnv) advance(seconds int64) {
	e.clock.Set(e.clock.Now() + seconds)
}

func defaultGovernanceParams() models.GovernanceParameters {
	return models.GovernanceParameters{
		VotingDelay:          0,
		VotingPeriod:         uint64(3 * day),
		QuorumVotes:          10,
		TimelockDelaySeconds: day,
	}
}

func (e *testEnv) createGovernor(t *testing.T, elect common.Address, params models.GovernanceParameters) *models.Governor {
	t.Helper()
	res, err := e.governors.Create(e.ctx, usecase.CreateGovernorParams{
		Base:        governorBase,
		Electorate:  elect,
		SmartWallet: smartWallet,
		Params:      params,
	})
	require.NoError(t, err)
	return res.Governor
}

func (e *testEnv) createProposal(t *testing.T, governor common.Address) *models.Proposal {
	t.Helper()
	res, err := e.proposals.Create(e.ctx, usecase.CreateProposalParams{
		Governor: governor,
		Proposer: proposer,
	})
	require.NoError(t, err)
	return res.Proposal
}

func defaultLockerParams() models.LockerParams {
	return models.LockerParams{
		MaxStakeVoteMultiplier:     4,
		MinStakeDuration:           uint64(day),
		MaxStakeDuration:           year,
		ProposalActivationMinVotes: 1000,
	}
}

// setupLocker creates a governor whose electorate is the locker, and the locker.
func (e *testEnv) setupLocker(t *testing.T, params models.LockerParams) (*models.Governor, *models.Locker) {
	t.Helper()
	g := e.createGovernor(t, domain.LockerKey(lockerBase), defaultGovernanceParams())
	res, err := e.lockers.Create(e.ctx, usecase.CreateLockerParams{
		Base:      lockerBase,
		TokenMint: tokenMint,
		Governor:  g.Key,
		Params:    params,
	})
	require.NoError(t, err)
	return g, res.Locker
}

// fundedEscrow mints amount of the locker token to owner and opens an escrow.
func (e *testEnv) fundedEscrow(t *testing.T, locker, owner common.Address, amount uint64) *models.Escrow {
	t.Helper()
	_, err := e.tokens.MintTo(e.ctx, tokenMint, owner, amount)
	require.NoError(t, err)
	res, err := e.escrows.Create(e.ctx, locker, owner)
	require.NoError(t, err)
	return res.Escrow
}

func (e *testEnv) lock(owner, escrow common.Address, amount, duration uint64) (*usecase.EscrowResult, error) {
	return e.escrows.Lock(e.ctx, usecase.LockParams{
		Caller:    owner,
		Escrow:    escrow,
		Authority: usecase.LockAuthority{Kind: usecase.LockAuthorityOwner},
		Amount:    amount,
		Duration:  duration,
	})
}

func (e *testEnv) balance(t *testing.T, mint, owner common.Address) uint64 {
	t.Helper()
	acct, err := e.tokens.Account(e.ctx, domain.TokenAccountKey(mint, owner))
	require.NoError(t, err)
	return acct.Amount
}

func (e *testEnv) escrow(t *testing.T, key common.Address) *usecase.EscrowView {
	t.Helper()
	v, err := e.showLocker.Escrow(e.ctx, key)
	require.NoError(t, err)
	return v
}
