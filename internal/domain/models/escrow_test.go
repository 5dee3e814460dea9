package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/lockgov/internal/domain"
)

const year = 365 * 24 * 60 * 60

func yearLocker() LockerParams {
	return LockerParams{
		MaxStakeVoteMultiplier: 4,
		MaxStakeDuration:       year,
	}
}

func TestEscrow_VotingPower(t *testing.T) {
	const start = int64(1_700_000_000)
	escrow := &Escrow{Amount: 1000, EscrowStartedAt: start, EscrowEndsAt: start + year}

	tests := []struct {
		name string
		now  int64
		want uint64
	}{
		{name: "full lock", now: start, want: 4000},
		{name: "half way", now: start + year/2, want: 2500},
		{name: "at end", now: start + year, want: 1000},
		{name: "after end", now: start + 2*year, want: 1000},
		{name: "before start clamps to max", now: start - year, want: 4000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := escrow.VotingPower(yearLocker(), tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("does not mutate the escrow", func(t *testing.T) {
		before := *escrow
		_, err := escrow.VotingPower(yearLocker(), start+100)
		require.NoError(t, err)
		assert.Equal(t, before, *escrow)
	})
}

func TestEscrow_VotingPowerMonotonic(t *testing.T) {
	const start = int64(0)
	params := yearLocker()

	t.Run("non-increasing over time", func(t *testing.T) {
		escrow := &Escrow{Amount: 123_456_789, EscrowEndsAt: start + year}
		prev := uint64(math.MaxUint64)
		for now := start; now <= start+year; now += year / 97 {
			p, err := escrow.VotingPower(params, now)
			require.NoError(t, err)
			assert.LessOrEqual(t, p, prev)
			prev = p
		}
	})

	t.Run("non-decreasing in amount", func(t *testing.T) {
		var prev uint64
		for amount := uint64(0); amount < 5000; amount += 37 {
			escrow := &Escrow{Amount: amount, EscrowEndsAt: start + year/3}
			p, err := escrow.VotingPower(params, start)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, p, prev)
			prev = p
		}
	})
}

func TestEscrow_VotingPowerEdgeCases(t *testing.T) {
	t.Run("empty escrow", func(t *testing.T) {
		p, err := (&Escrow{EscrowEndsAt: year}).VotingPower(yearLocker(), 0)
		require.NoError(t, err)
		assert.Zero(t, p)
	})

	t.Run("multiplier of one", func(t *testing.T) {
		params := yearLocker()
		params.MaxStakeVoteMultiplier = 1
		p, err := (&Escrow{Amount: 77, EscrowEndsAt: year}).VotingPower(params, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(77), p)
	})

	t.Run("overflow is reported", func(t *testing.T) {
		_, err := (&Escrow{Amount: math.MaxUint64, EscrowEndsAt: year}).VotingPower(yearLocker(), 0)
		assert.ErrorIs(t, err, domain.ErrArithmeticOverflow)
	})

	t.Run("invalid multiplier", func(t *testing.T) {
		params := yearLocker()
		params.MaxStakeVoteMultiplier = 0
		_, err := (&Escrow{Amount: 1, EscrowEndsAt: year}).VotingPower(params, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidLockerParams)
	})
}

func TestLockerParams_Validate(t *testing.T) {
	assert.NoError(t, yearLocker().Validate())

	bad := yearLocker()
	bad.MinStakeDuration = year + 1
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidLockerParams)

	bad = yearLocker()
	bad.MaxStakeVoteMultiplier = 0
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidLockerParams)

	params := yearLocker()
	params.MinStakeDuration = 10
	assert.ErrorIs(t, params.CheckDuration(9), domain.ErrLockupDurationTooShort)
	assert.ErrorIs(t, params.CheckDuration(year+1), domain.ErrLockupDurationTooLong)
	assert.NoError(t, params.CheckDuration(year))
}
