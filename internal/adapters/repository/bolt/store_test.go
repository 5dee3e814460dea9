package bolt

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/lockgov/internal/domain"
	"github.com/trebuchet-org/lockgov/internal/domain/models"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

func TestStore_RollbackAndReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	owner := common.HexToAddress("0xa1")
	mint := common.HexToAddress("0xb1")
	acct := &models.TokenAccount{
		Key:    domain.TokenAccountKey(mint, owner),
		Mint:   mint,
		Owner:  owner,
		Amount: 100,
	}

	s, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, func(tx usecase.Tx) error {
		return tx.SaveTokenAccount(acct)
	}))

	boom := errors.New("boom")
	err = s.Update(ctx, func(tx usecase.Tx) error {
		a, err := tx.GetTokenAccount(acct.Key)
		if err != nil {
			return err
		}
		a.Amount = 0
		if err := tx.SaveTokenAccount(a); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.View(ctx, func(tx usecase.Tx) error {
		a, err := tx.GetTokenAccount(acct.Key)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), a.Amount)

		accounts, err := tx.ListTokenAccounts(owner)
		require.NoError(t, err)
		assert.Len(t, accounts, 1)

		_, err = tx.GetEscrow(common.HexToAddress("0x99"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		return nil
	}))
}

func TestStore_ListProposalsOrderedByIndex(t *testing.T) {
	ctx := context.Background()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	gov := common.HexToAddress("0x01")
	require.NoError(t, s.Update(ctx, func(tx usecase.Tx) error {
		for i := uint64(0); i < 5; i++ {
			p := &models.Proposal{Key: domain.ProposalKey(gov, i), Governor: gov, Index: i}
			if err := tx.SaveProposal(p); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.View(ctx, func(tx usecase.Tx) error {
		proposals, err := tx.ListProposals(usecase.ProposalFilter{Governor: gov})
		require.NoError(t, err)
		require.Len(t, proposals, 5)
		for i, p := range proposals {
			assert.Equal(t, uint64(i), p.Index)
		}
		return nil
	}))
}
