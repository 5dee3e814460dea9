package usecase_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

func TestManageLocker_Create(t *testing.T) {
	env := newTestEnv(t)
	_, l := env.setupLocker(t, defaultLockerParams())

	assert.Equal(t, domain.LockerKey(lockerBase), l.Key)
	assert.Zero(t, l.LockedSupply)

	bad := defaultLockerParams()
	bad.MinStakeDuration = bad.MaxStakeDuration + 1
	_, err := env.lockers.Create(env.ctx, usecase.CreateLockerParams{Base: alice, TokenMint: tokenMint, Governor: l.Governor, Params: bad})
	assert.ErrorIs(t, err, domain.ErrInvalidLockerParams)

	_, err = env.lockers.Create(env.ctx, usecase.CreateLockerParams{Base: lockerBase, TokenMint: tokenMint, Governor: l.Governor, Params: defaultLockerParams()})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = env.lockers.Create(env.ctx, usecase.CreateLockerParams{Base: alice, TokenMint: tokenMint, Governor: bob, Params: defaultLockerParams()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManageLocker_GovernanceOnly(t *testing.T) {
	env := newTestEnv(t)
	_, l := env.setupLocker(t, defaultLockerParams())

	params := defaultLockerParams()
	params.WhitelistEnabled = true

	_, err := env.lockers.SetParams(env.ctx, alice, l.Key, params)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	res, err := env.lockers.SetParams(env.ctx, smartWallet, l.Key, params)
	require.NoError(t, err)
	assert.True(t, res.Locker.Params.WhitelistEnabled)

	priv := usecase.LockPrivilegeParams{Caller: alice, Locker: l.Key, ProgramID: program}
	_, err = env.lockers.ApproveLockPrivilege(env.ctx, priv)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	priv.Caller = smartWallet
	wl, err := env.lockers.ApproveLockPrivilege(env.ctx, priv)
	require.NoError(t, err)
	assert.Equal(t, domain.WhitelistEntryKey(l.Key, program, common.Address{}), wl.Entry.Key)

	_, err = env.lockers.ApproveLockPrivilege(env.ctx, priv)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	_, err = env.lockers.RevokeLockPrivilege(env.ctx, priv)
	require.NoError(t, err)
	_, err = env.lockers.RevokeLockPrivilege(env.ctx, priv)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestManageEscrow_LockVotingPower(t *testing.T) {
	env := newTestEnv(t)
	_, l := env.setupLocker(t, defaultLockerParams())
	e := env.fundedEscrow(t, l.Key, alice, 1000)

	assert.Equal(t, alice, e.VoteDelegate)
	assert.Equal(t, domain.TokenAccountKey(tokenMint, e.Key), e.Tokens)

	res, err := env.lock(alice, e.Key, 1000, year)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), res.Escrow.Amount)
	assert.Equal(t, uint64(1000), res.Locker.LockedSupply)
	assert.Equal(t, genesis, res.Escrow.EscrowStartedAt)
	assert.Equal(t, genesis+int64(year), res.Escrow.EscrowEndsAt)

	assert.Zero(t, env.balance(t, tokenMint, alice))
	assert.Equal(t, uint64(1000), env.balance(t, tokenMint, e.Key))
	assert.Equal(t, uint64(4000), env.escrow(t, e.Key).VotingPower)

	env.advance(int64(year / 2))
	assert.Equal(t, uint64(2500), env.escrow(t, e.Key).VotingPower)

	env.advance(int64(year / 2))
	view := env.escrow(t, e.Key)
	assert.Equal(t, uint64(1000), view.VotingPower)
	assert.True(t, view.Ended)
}

func TestManageEscrow_LockRules(t *testing.T) {
	t.Run("refresh cannot shorten", func(t *testing.T) {
		env := newTestEnv(t)
		_, l := env.setupLocker(t, defaultLockerParams())
		e := env.fundedEscrow(t, l.Key, alice, 1500)

		_, err := env.lock(alice, e.Key, 1000, uint64(100*day))
		require.NoError(t, err)

		_, err = env.lock(alice, e.Key, 500, uint64(10*day))
		assert.ErrorIs(t, err, domain.ErrRefreshCannotShorten)

		_, err = env.escrows.ExtendLockDuration(env.ctx, alice, e.Key, uint64(99*day))
		assert.ErrorIs(t, err, domain.ErrRefreshCannotShorten)

		view := env.escrow(t, e.Key)
		assert.Equal(t, uint64(1000), view.Escrow.Amount)
		assert.Equal(t, genesis+100*day, view.Escrow.EscrowEndsAt)
		assert.Equal(t, uint64(500), env.balance(t, tokenMint, alice))

		env.advance(day)
		res, err := env.escrows.ExtendLockDuration(env.ctx, alice, e.Key, uint64(99*day))
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), res.Escrow.Amount)
		assert.Equal(t, genesis+100*day, res.Escrow.EscrowEndsAt)
	})

	t.Run("duration bounds", func(t *testing.T) {
		env := newTestEnv(t)
		_, l := env.setupLocker(t, defaultLockerParams())
		e := env.fundedEscrow(t, l.Key, alice, 10)

		_, err := env.lock(alice, e.Key, 10, 1)
		assert.ErrorIs(t, err, domain.ErrLockupDurationTooShort)
		_, err = env.lock(alice, e.Key, 10, year+1)
		assert.ErrorIs(t, err, domain.ErrLockupDurationTooLong)
	})

	t.Run("insufficient balance rolls back", func(t *testing.T) {
		env := newTestEnv(t)
		_, l := env.setupLocker(t, defaultLockerParams())
		e := env.fundedEscrow(t, l.Key, alice, 10)

		_, err := env.lock(alice, e.Key, 11, year)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

		view := env.escrow(t, e.Key)
		assert.Zero(t, view.Escrow.Amount)
		assert.Zero(t, view.Escrow.EscrowEndsAt)
	})

	t.Run("only the owner locks", func(t *testing.T) {
		env := newTestEnv(t)
		_, l := env.setupLocker(t, defaultLockerParams())
		e := env.fundedEscrow(t, l.Key, alice, 10)

		_, err := env.lock(bob, e.Key, 10, year)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestManageEscrow_LockAuthority(t *testing.T) {
	tests := []struct {
		name      string
		whitelist bool
		approve   *common.Address // owner of the whitelist entry, nil for none
		authority usecase.LockAuthority
		wantErr   error
	}{
		{
			name:      "owner without whitelist",
			authority: usecase.LockAuthority{Kind: usecase.LockAuthorityOwner},
		},
		{
			name:      "owner with whitelist",
			whitelist: true,
			authority: usecase.LockAuthority{Kind: usecase.LockAuthorityOwner},
		},
		{
			name:      "permissionless without whitelist",
			authority: usecase.LockAuthority{Kind: usecase.LockAuthorityPermissionless},
		},
		{
			name:      "permissionless with whitelist",
			whitelist: true,
			authority: usecase.LockAuthority{Kind: usecase.LockAuthorityPermissionless},
			wantErr:   domain.ErrMustProvideWhitelist,
		},
		{
			name:      "program without whitelist",
			authority: usecase.LockAuthority{Kind: usecase.LockAuthorityProgram, ProgramID: program},
			wantErr:   domain.ErrMustCallLockPermissionless,
		},
		{
			name:      "program not approved",
			whitelist: true,
			authority: usecase.LockAuthority{Kind: usecase.LockAuthorityProgram, ProgramID: program},
			wantErr:   domain.ErrProgramNotWhitelisted,
		},
		{
			name:      "program approved for any owner",
			whitelist: true,
			approve:   &common.Address{},
			authority: usecase.LockAuthority{Kind: usecase.LockAuthorityProgram, ProgramID: program},
		},
		{
			name:      "program approved for this owner",
			whitelist: true,
			approve:   &alice,
			authority: usecase.LockAuthority{Kind: usecase.LockAuthorityProgram, ProgramID: program},
		},
		{
			name:      "program approved for another owner",
			whitelist: true,
			approve:   &bob,
			authority: usecase.LockAuthority{Kind: usecase.LockAuthorityProgram, ProgramID: program},
			wantErr:   domain.ErrEscrowOwnerNotWhitelisted,
		},
		{
			name:      "unknown authority",
			authority: usecase.LockAuthority{Kind: "delegate"},
			wantErr:   domain.ErrInvalidLockAuthority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			params := defaultLockerParams()
			params.WhitelistEnabled = tt.whitelist
			_, l := env.setupLocker(t, params)
			if tt.approve != nil {
				_, err := env.lockers.ApproveLockPrivilege(env.ctx, usecase.LockPrivilegeParams{
					Caller: smartWallet, Locker: l.Key, ProgramID: program, Owner: *tt.approve,
				})
				require.NoError(t, err)
			}
			e := env.fundedEscrow(t, l.Key, alice, 100)

			_, err := env.escrows.Lock(env.ctx, usecase.LockParams{
				Caller:    alice,
				Escrow:    e.Key,
				Authority: tt.authority,
				Amount:    100,
				Duration:  year,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint64(100), env.escrow(t, e.Key).Escrow.Amount)
		})
	}
}

func TestManageEscrow_Exit(t *testing.T) {
	env := newTestEnv(t)
	_, l := env.setupLocker(t, defaultLockerParams())
	e := env.fundedEscrow(t, l.Key, alice, 1000)
	_, err := env.lock(alice, e.Key, 1000, uint64(30*day))
	require.NoError(t, err)

	_, err = env.escrows.Exit(env.ctx, alice, e.Key)
	assert.ErrorIs(t, err, domain.ErrEscrowNotEnded)

	env.advance(30 * day)
	_, err = env.escrows.Exit(env.ctx, bob, e.Key)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	res, err := env.escrows.Exit(env.ctx, alice, e.Key)
	require.NoError(t, err)
	assert.Zero(t, res.Escrow.Amount)
	assert.Zero(t, res.Escrow.EscrowStartedAt)
	assert.Zero(t, res.Escrow.EscrowEndsAt)
	assert.Zero(t, res.Locker.LockedSupply)
	assert.Equal(t, uint64(1000), env.balance(t, tokenMint, alice))

	require.Len(t, res.Events, 1)
	assert.Equal(t, "ExitEscrow", res.Events[0].EventName())
}

func TestLockerVoting(t *testing.T) {
	setup := func(t *testing.T) (*testEnv, *models.Proposal, *models.Escrow) {
		env := newTestEnv(t)
		g, l := env.setupLocker(t, defaultLockerParams())
		e := env.fundedEscrow(t, l.Key, alice, 1000)
		_, err := env.lock(alice, e.Key, 1000, year)
		require.NoError(t, err)
		return env, env.createProposal(t, g.Key), e
	}

	t.Run("activate and cast", func(t *testing.T) {
		env, p, e := setup(t)
		params := usecase.EscrowProposalParams{Caller: alice, Escrow: e.Key, Proposal: p.Key}

		act, err := env.voting.ActivateProposal(env.ctx, params)
		require.NoError(t, err)
		assert.Equal(t, uint64(4000), act.VotingPower)
		assert.Equal(t, models.ProposalStateActive, act.Proposal.State(env.clock.Now()))

		res, err := env.voting.CastVote(env.ctx, usecase.CastVoteParams{EscrowProposalParams: params, Side: models.VoteSideFor})
		require.NoError(t, err)
		assert.Equal(t, uint64(4000), res.Proposal.ForVotes)
		assert.Equal(t, alice, res.Vote.Voter)
		require.Len(t, res.Events, 2)
		assert.Equal(t, "NewVote", res.Events[0].EventName())
		assert.Equal(t, "VoteSet", res.Events[1].EventName())

		env.advance(day)
		res, err = env.voting.CastVote(env.ctx, usecase.CastVoteParams{EscrowProposalParams: params, Side: models.VoteSideAgainst})
		require.NoError(t, err)
		assert.Zero(t, res.Proposal.ForVotes)
		assert.Equal(t, res.VotingPower, res.Proposal.AgainstVotes)
		assert.Less(t, res.VotingPower, uint64(4000))
		assert.Len(t, res.Events, 1)
	})

	t.Run("only the vote delegate", func(t *testing.T) {
		env, p, e := setup(t)
		params := usecase.EscrowProposalParams{Caller: bob, Escrow: e.Key, Proposal: p.Key}

		_, err := env.voting.ActivateProposal(env.ctx, params)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		_, err = env.escrows.SetVoteDelegate(env.ctx, bob, e.Key, bob)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		res, err := env.escrows.SetVoteDelegate(env.ctx, alice, e.Key, bob)
		require.NoError(t, err)
		assert.Equal(t, bob, res.Escrow.VoteDelegate)

		_, err = env.voting.ActivateProposal(env.ctx, params)
		require.NoError(t, err)

		params.Caller = alice
		_, err = env.voting.CastVote(env.ctx, usecase.CastVoteParams{EscrowProposalParams: params, Side: models.VoteSideFor})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("insufficient voting power", func(t *testing.T) {
		env := newTestEnv(t)
		g, l := env.setupLocker(t, defaultLockerParams())
		e := env.fundedEscrow(t, l.Key, alice, 100)
		_, err := env.lock(alice, e.Key, 100, uint64(day))
		require.NoError(t, err)
		p := env.createProposal(t, g.Key)

		_, err = env.voting.ActivateProposal(env.ctx, usecase.EscrowProposalParams{Caller: alice, Escrow: e.Key, Proposal: p.Key})
		assert.ErrorIs(t, err, domain.ErrInsufficientVotePower)
	})

	t.Run("governor electorate is not the locker", func(t *testing.T) {
		env, p, e := setup(t)
		_, err := env.governors.SetElectorate(env.ctx, smartWallet, p.Governor, electorate)
		require.NoError(t, err)

		_, err = env.voting.CastVote(env.ctx, usecase.CastVoteParams{
			EscrowProposalParams: usecase.EscrowProposalParams{Caller: alice, Escrow: e.Key, Proposal: p.Key},
			Side:                 models.VoteSideFor,
		})
		assert.ErrorIs(t, err, domain.ErrElectorateNotLocker)
	})

	t.Run("invalid side", func(t *testing.T) {
		env, p, e := setup(t)
		_, err := env.voting.CastVote(env.ctx, usecase.CastVoteParams{
			EscrowProposalParams: usecase.EscrowProposalParams{Caller: alice, Escrow: e.Key, Proposal: p.Key},
			Side:                 9,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidVoteSide)
	})
}
