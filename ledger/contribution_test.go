package ledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/abesuite/gaopool/errcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Deposit(t *testing.T) {
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		l, _ := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, big.NewInt(1_000_000_000)))

		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), view.EpochIndex)
		assert.Equal(t, "10000000", view.PerWindowAllocation.String())
		assert.Equal(t, "1000000000", view.UncommittedBalance.String())
		assert.Equal(t, "0", view.CommittedAttempt.String())
		assert.Equal(t, "0", view.Redeemable.String())

		record, err := l.GetEpochRecord(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, "1000000000", record.TotalStake.String())
	})

	t.Run("test_2", func(t *testing.T) {
		l, _ := newTestLedger(t)
		err := l.Deposit(ctx, alice, alice, big.NewInt(999_999_999))
		assert.ErrorIs(t, err, errcode.ErrBelowMinimum)
		assert.True(t, errcode.IsValidationError(err))

		// the minimum only applies to the first contribution of an epoch
		require.NoError(t, l.Deposit(ctx, alice, alice, testMinContribution))
		require.NoError(t, l.Deposit(ctx, alice, alice, big.NewInt(100)))
		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "1000000100", view.Stake.String())
		assert.Equal(t, "10000001", view.PerWindowAllocation.String())
	})

	t.Run("test_3", func(t *testing.T) {
		l, _ := newTestLedger(t)
		require.NoError(t, l.SetMaxContribution(ctx, owner, units(2)))
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		err := l.Deposit(ctx, alice, alice, big.NewInt(1))
		assert.ErrorIs(t, err, errcode.ErrCapExceeded)

		// the cap is per account
		require.NoError(t, l.Deposit(ctx, bob, bob, units(2)))
		err = l.Deposit(ctx, bob, bob, units(3))
		assert.ErrorIs(t, err, errcode.ErrCapExceeded)
	})

	t.Run("test_4", func(t *testing.T) {
		l, _ := newTestLedger(t)
		require.NoError(t, l.SetPaused(ctx, owner, true))
		err := l.Deposit(ctx, alice, alice, units(1))
		assert.ErrorIs(t, err, errcode.ErrPoolPaused)

		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "0", view.Stake.String())

		require.NoError(t, l.SetPaused(ctx, owner, false))
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
	})

	t.Run("test_5", func(t *testing.T) {
		l, _ := newTestLedger(t)
		assert.ErrorIs(t, l.Deposit(ctx, alice, alice, nil), errcode.ErrInvalidAmount)
		assert.ErrorIs(t, l.Deposit(ctx, alice, alice, big.NewInt(-1)), errcode.ErrInvalidAmount)
		// a zero contribution redeems
		assert.ErrorIs(t, l.Deposit(ctx, alice, alice, big.NewInt(0)), errcode.ErrNothingToRedeem)
	})

	t.Run("test_6", func(t *testing.T) {
		l, _ := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, bob, alice, units(1)))

		view, err := l.FindContribution(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, "0", view.Stake.String())
		view, err = l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, units(1).String(), view.Stake.String())

		history, total, err := l.GetContributions(ctx, alice, 1, 10, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, history, 1)
		assert.Equal(t, bob, history[0].Sender)
		assert.Equal(t, alice, history[0].CreditTo)
	})
}

func TestLedger_DepositTopUp(t *testing.T) {
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		atWindow(s, 0)
		_, err := l.Mine(ctx)
		require.NoError(t, err)

		atWindow(s, 1)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		// (1_990_000_000 uncommitted + 10_000_000 committed) / 100
		assert.Equal(t, "20000000", view.PerWindowAllocation.String())
		assert.Equal(t, "10000000", view.CommittedAttempt.String())
		assert.Equal(t, "1990000000", view.UncommittedBalance.String())

		mined, err := l.Mine(ctx)
		require.NoError(t, err)
		assert.Equal(t, "20000000", mined.Total.String())
	})
}

func TestLedger_DepositNewEpoch(t *testing.T) {
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		res := mineAndClaim(t, l, s, 0)
		require.True(t, res.Won)

		atWindow(s, testEpochLength+3)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(2)))

		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), view.EpochIndex)
		assert.Equal(t, "0", view.CommittedAttempt.String())
		assert.Equal(t, units(2).String(), view.UncommittedBalance.String())
		assert.Equal(t, "20000000", view.PerWindowAllocation.String())
		// epoch 0 was settled into the pending amounts
		assert.Equal(t, testBlockReward.String(), view.Redeemable.String())

		account, err := l.accountInfoDao.GetByAddress(ctx, l.db, alice.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(0), account.RedeemedThroughEpoch)
		assert.Equal(t, testBlockReward.String(), account.PendingNet)
	})

	t.Run("test_2", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		atWindow(s, testEpochLength-1)
		_, err := l.Mine(ctx)
		require.NoError(t, err)

		// window 99 is still unresolved when alice enters epoch 1
		atWindow(s, testEpochLength+3)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(2)))

		account, err := l.accountInfoDao.GetByAddress(ctx, l.db, alice.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(-1), account.RedeemedThroughEpoch)
		assert.Equal(t, "0", account.PendingNet)
		assert.Equal(t, "0", account.PendingFee)
		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), view.EpochIndex)
		assert.Equal(t, units(2).String(), view.UncommittedBalance.String())

		res, err := l.Claim(ctx, testEpochLength-1, alice)
		require.NoError(t, err)
		require.True(t, res.Won)

		redemption, err := l.Redeem(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, testBlockReward.String(), redemption.Net.String())
		assert.Equal(t, int64(0), redemption.ThroughEpoch)

		account, err = l.accountInfoDao.GetByAddress(ctx, l.db, alice.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(0), account.RedeemedThroughEpoch)
		assert.Equal(t, "0", account.PendingNet)
	})
}
