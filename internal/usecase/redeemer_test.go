package usecase_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

var treasury = domain.TokenAccountKey(tokenMint, smartWallet)

// setupRedeemer creates a locker and a redeemer with cutoff genesis-1,
// funded with funds receipt tokens by the deployer.
func setupRedeemer(t *testing.T, env *testEnv, rate, funds uint64) (*models.Locker, *models.LockerRedeemer) {
	t.Helper()
	_, l := env.setupLocker(t, defaultLockerParams())
	_, err := env.tokens.CreateAccount(env.ctx, tokenMint, smartWallet)
	require.NoError(t, err)

	res, err := env.redeemers.Create(env.ctx, usecase.CreateRedeemerParams{
		Caller:         deployer,
		Locker:         l.Key,
		ReceiptMint:    receiptMint,
		Treasury:       treasury,
		RedemptionRate: rate,
		CutoffDate:     genesis - 1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RedeemerStatusActive, res.Redeemer.Status)
	assert.Equal(t, deployer, res.Redeemer.Admin)
	assert.Zero(t, res.Redeemer.Amount)

	if funds > 0 {
		_, err = env.tokens.MintTo(env.ctx, receiptMint, deployer, funds)
		require.NoError(t, err)
		_, err = env.redeemers.AddFunds(env.ctx, deployer, res.Redeemer.Key, common.Address{}, funds)
		require.NoError(t, err)
	}
	return l, res.Redeemer
}

func TestInstantWithdraw_Scenario(t *testing.T) {
	env := newTestEnv(t)
	l, r := setupRedeemer(t, env, 2, 5000)

	// open the escrow one day before the cutoff
	cutoff := genesis - 1
	env.clock.Set(cutoff - day)
	e := env.fundedEscrow(t, l.Key, alice, 1000)
	_, err := env.lock(alice, e.Key, 1000, year)
	require.NoError(t, err)

	res, err := env.withdraw.Execute(env.ctx, usecase.InstantWithdrawParams{Caller: alice, Redeemer: r.Key, Escrow: e.Key})
	require.NoError(t, err)

	assert.Equal(t, uint64(4000), res.VotingPower)
	assert.Equal(t, uint64(2000), res.ReceiptAmount)
	assert.Equal(t, uint64(1000), res.Amount)
	assert.Zero(t, res.Escrow.Amount)
	assert.Zero(t, res.Escrow.EscrowEndsAt)
	assert.Equal(t, uint64(3000), res.Redeemer.Amount)

	assert.Equal(t, uint64(2000), env.balance(t, receiptMint, alice))
	assert.Equal(t, uint64(1000), env.balance(t, tokenMint, smartWallet))
	assert.Zero(t, env.balance(t, tokenMint, e.Key))

	entry, err := env.blacklist.Check(env.ctx, l.Key, e.Key)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, cutoff-day, entry.Timestamp)
	assert.Equal(t, alice, entry.Owner)

	locker, err := env.showLocker.Locker(env.ctx, l.Key)
	require.NoError(t, err)
	assert.Zero(t, locker.Locker.LockedSupply)

	t.Run("empty escrow", func(t *testing.T) {
		_, err := env.withdraw.Execute(env.ctx, usecase.InstantWithdrawParams{Caller: alice, Redeemer: r.Key, Escrow: e.Key})
		assert.ErrorIs(t, err, domain.ErrEscrowEmpty)
	})

	t.Run("second redemption is blacklisted", func(t *testing.T) {
		_, err := env.tokens.MintTo(env.ctx, tokenMint, alice, 10)
		require.NoError(t, err)
		_, err = env.lock(alice, e.Key, 10, year)
		require.NoError(t, err)

		_, err = env.withdraw.Execute(env.ctx, usecase.InstantWithdrawParams{Caller: alice, Redeemer: r.Key, Escrow: e.Key})
		assert.ErrorIs(t, err, domain.ErrEscrowBlacklisted)
		assert.Equal(t, domain.KindReplay, domain.KindOf(err))
	})
}

func TestInstantWithdraw_Validation(t *testing.T) {
	// lockedEscrow locks 1000 tokens at the given time.
	lockedEscrow := func(t *testing.T, env *testEnv, l *models.Locker, at int64) *models.Escrow {
		env.clock.Set(at)
		e := env.fundedEscrow(t, l.Key, alice, 1000)
		_, err := env.lock(alice, e.Key, 1000, year)
		require.NoError(t, err)
		return e
	}

	t.Run("only the escrow owner", func(t *testing.T) {
		env := newTestEnv(t)
		l, r := setupRedeemer(t, env, 2, 5000)
		e := lockedEscrow(t, env, l, genesis-day)

		_, err := env.withdraw.Execute(env.ctx, usecase.InstantWithdrawParams{Caller: bob, Redeemer: r.Key, Escrow: e.Key})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("paused redeemer", func(t *testing.T) {
		env := newTestEnv(t)
		l, r := setupRedeemer(t, env, 2, 5000)
		_, err := env.redeemers.Toggle(env.ctx, deployer, r.Key, uint8(models.RedeemerStatusPaused))
		require.NoError(t, err)
		e := lockedEscrow(t, env, l, genesis-day)

		_, err = env.withdraw.Execute(env.ctx, usecase.InstantWithdrawParams{Caller: alice, Redeemer: r.Key, Escrow: e.Key})
		assert.ErrorIs(t, err, domain.ErrRedeemerNotActive)
	})

	t.Run("escrow started at the cutoff", func(t *testing.T) {
		env := newTestEnv(t)
		l, r := setupRedeemer(t, env, 2, 5000)
		e := lockedEscrow(t, env, l, genesis-1)

		_, err := env.withdraw.Execute(env.ctx, usecase.InstantWithdrawParams{Caller: alice, Redeemer: r.Key, Escrow: e.Key})
		assert.ErrorIs(t, err, domain.ErrEscrowTooRecent)
	})

	t.Run("unfunded redeemer rolls back", func(t *testing.T) {
		env := newTestEnv(t)
		l, r := setupRedeemer(t, env, 2, 100)
		e := lockedEscrow(t, env, l, genesis-day)

		_, err := env.withdraw.Execute(env.ctx, usecase.InstantWithdrawParams{Caller: alice, Redeemer: r.Key, Escrow: e.Key})
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

		assert.Equal(t, uint64(1000), env.escrow(t, e.Key).Escrow.Amount)
		assert.Zero(t, env.balance(t, tokenMint, smartWallet))
		entry, err := env.blacklist.Check(env.ctx, l.Key, e.Key)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("manual blacklist", func(t *testing.T) {
		env := newTestEnv(t)
		l, r := setupRedeemer(t, env, 2, 5000)
		e := lockedEscrow(t, env, l, genesis-day)
		params := usecase.BlacklistParams{Caller: deployer, Redeemer: r.Key, Escrow: e.Key}

		_, err := env.blacklist.Add(env.ctx, usecase.BlacklistParams{Caller: alice, Redeemer: r.Key, Escrow: e.Key})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)

		added, err := env.blacklist.Add(env.ctx, params)
		require.NoError(t, err)
		assert.Equal(t, alice, added.Entry.Owner)
		require.Len(t, added.Events, 1)
		assert.Equal(t, events.AddBlacklistEntryEvent{
			Locker:    l.Key,
			Escrow:    e.Key,
			Owner:     alice,
			Admin:     deployer,
			Timestamp: env.clock.Now(),
		}, added.Events[0])

		_, err = env.blacklist.Add(env.ctx, params)
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)

		_, err = env.withdraw.Execute(env.ctx, usecase.InstantWithdrawParams{Caller: alice, Redeemer: r.Key, Escrow: e.Key})
		assert.ErrorIs(t, err, domain.ErrEscrowBlacklisted)

		env.advance(60)
		removed, err := env.blacklist.Remove(env.ctx, params)
		require.NoError(t, err)
		require.Len(t, removed.Events, 1)
		assert.Equal(t, events.RemoveBlacklistEntryEvent{
			Locker:    l.Key,
			Escrow:    e.Key,
			Owner:     alice,
			Admin:     deployer,
			Timestamp: env.clock.Now(),
		}, removed.Events[0])

		res, err := env.withdraw.Execute(env.ctx, usecase.InstantWithdrawParams{Caller: alice, Redeemer: r.Key, Escrow: e.Key})
		require.NoError(t, err)
		assert.Positive(t, res.ReceiptAmount)
	})
}

func TestManageRedeemer_Create(t *testing.T) {
	env := newTestEnv(t)
	_, l := env.setupLocker(t, defaultLockerParams())
	_, err := env.tokens.CreateAccount(env.ctx, tokenMint, smartWallet)
	require.NoError(t, err)
	_, err = env.tokens.CreateAccount(env.ctx, receiptMint, smartWallet)
	require.NoError(t, err)

	base := usecase.CreateRedeemerParams{
		Caller:         deployer,
		Locker:         l.Key,
		ReceiptMint:    receiptMint,
		Treasury:       treasury,
		RedemptionRate: 2,
		CutoffDate:     genesis - 1,
	}

	tests := []struct {
		name    string
		mutate  func(p *usecase.CreateRedeemerParams)
		wantErr error
	}{
		{"not the deployer", func(p *usecase.CreateRedeemerParams) { p.Caller = alice }, domain.ErrUnauthorized},
		{"zero rate", func(p *usecase.CreateRedeemerParams) { p.RedemptionRate = 0 }, domain.ErrInvalidRedemptionRate},
		{"cutoff not in the past", func(p *usecase.CreateRedeemerParams) { p.CutoffDate = genesis }, domain.ErrInvalidCutoffDate},
		{"treasury of another mint", func(p *usecase.CreateRedeemerParams) {
			p.Treasury = domain.TokenAccountKey(receiptMint, smartWallet)
		}, domain.ErrInvalidTokenAccount},
		{"missing treasury", func(p *usecase.CreateRedeemerParams) { p.Treasury = carol }, domain.ErrInvalidTokenAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := base
			tt.mutate(&params)
			_, err := env.redeemers.Create(env.ctx, params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	res, err := env.redeemers.Create(env.ctx, base)
	require.NoError(t, err)
	assert.Equal(t, domain.RedeemerKey(l.Key, receiptMint), res.Redeemer.Key)
	assert.Equal(t, domain.TokenAccountKey(receiptMint, res.Redeemer.Key), res.Redeemer.ReceiptAccount)

	_, err = env.redeemers.Create(env.ctx, base)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestManageRedeemer_DeployerNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.redeemers = usecase.NewManageRedeemer(&config.RuntimeConfig{}, env.store, nil, env.sink, env.clock, discardLogger())

	_, err := env.redeemers.Create(env.ctx, usecase.CreateRedeemerParams{Caller: deployer, RedemptionRate: 1})
	assert.ErrorIs(t, err, domain.ErrDeployerNotConfigured)
}

func TestManageRedeemer_Funds(t *testing.T) {
	env := newTestEnv(t)
	_, r := setupRedeemer(t, env, 2, 0)
	_, err := env.tokens.MintTo(env.ctx, receiptMint, deployer, 700)
	require.NoError(t, err)

	_, err = env.redeemers.AddFunds(env.ctx, deployer, r.Key, common.Address{}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = env.redeemers.AddFunds(env.ctx, alice, r.Key, common.Address{}, 700)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = env.redeemers.AddFunds(env.ctx, deployer, r.Key, common.Address{}, 701)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	added, err := env.redeemers.AddFunds(env.ctx, deployer, r.Key, common.Address{}, 700)
	require.NoError(t, err)
	assert.Equal(t, uint64(700), added.Redeemer.Amount)
	assert.Zero(t, env.balance(t, receiptMint, deployer))

	removed, err := env.redeemers.RemoveAllFunds(env.ctx, deployer, r.Key, common.Address{})
	require.NoError(t, err)
	assert.Equal(t, uint64(700), removed.Amount)
	assert.Zero(t, removed.Redeemer.Amount)
	assert.Equal(t, uint64(700), env.balance(t, receiptMint, deployer))

	_, err = env.redeemers.RemoveAllFunds(env.ctx, deployer, r.Key, common.Address{})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestManageRedeemer_AdminHandover(t *testing.T) {
	env := newTestEnv(t)
	_, r := setupRedeemer(t, env, 2, 0)

	_, err := env.redeemers.AcceptAdmin(env.ctx, bob, r.Key)
	assert.ErrorIs(t, err, domain.ErrNoPendingAdmin)

	_, err = env.redeemers.UpdateAdmin(env.ctx, bob, r.Key, bob)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	res, err := env.redeemers.UpdateAdmin(env.ctx, deployer, r.Key, bob)
	require.NoError(t, err)
	assert.Equal(t, deployer, res.Redeemer.Admin)
	assert.Equal(t, bob, res.Redeemer.PendingAdmin)

	_, err = env.redeemers.AcceptAdmin(env.ctx, carol, r.Key)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	res, err = env.redeemers.AcceptAdmin(env.ctx, bob, r.Key)
	require.NoError(t, err)
	assert.Equal(t, bob, res.Redeemer.Admin)
	assert.Equal(t, common.Address{}, res.Redeemer.PendingAdmin)

	_, err = env.redeemers.Toggle(env.ctx, deployer, r.Key, 0)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestManageRedeemer_Settings(t *testing.T) {
	env := newTestEnv(t)
	_, r := setupRedeemer(t, env, 2, 0)

	_, err := env.redeemers.UpdateRate(env.ctx, deployer, r.Key, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidRedemptionRate)

	_, err = env.redeemers.UpdateRate(env.ctx, deployer, r.Key, 2)
	assert.ErrorIs(t, err, domain.ErrRedemptionRateSame)

	res, err := env.redeemers.UpdateRate(env.ctx, deployer, r.Key, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.Redeemer.RedemptionRate)

	_, err = env.redeemers.Toggle(env.ctx, deployer, r.Key, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidRedeemerStatus)

	res, err = env.redeemers.Toggle(env.ctx, deployer, r.Key, 0)
	require.NoError(t, err)
	assert.Equal(t, models.RedeemerStatusPaused, res.Redeemer.Status)

	_, err = env.tokens.CreateAccount(env.ctx, tokenMint, carol)
	require.NoError(t, err)
	res, err = env.redeemers.UpdateTreasury(env.ctx, deployer, r.Key, domain.TokenAccountKey(tokenMint, carol))
	require.NoError(t, err)
	assert.Equal(t, domain.TokenAccountKey(tokenMint, carol), res.Redeemer.Treasury)

	_, err = env.redeemers.UpdateTreasury(env.ctx, deployer, r.Key, domain.TokenAccountKey(receiptMint, deployer))
	assert.ErrorIs(t, err, domain.ErrInvalidTokenAccount)
}
