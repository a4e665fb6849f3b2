package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/rewardsource"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_SingleStakerFullEpoch(t *testing.T) {
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, testMinContribution))
		runEpoch(t, l, s, 0)

		expected := new(big.Int).Mul(big.NewInt(100), testBlockReward)
		record, err := l.GetEpochRecord(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), record.MinedWindows)
		assert.Equal(t, uint64(100), record.ClaimedWindows)
		assert.Equal(t, testMinContribution.String(), record.TotalAttempt.String())
		assert.Equal(t, "10000000", record.Unit.String())
		assert.Equal(t, expected.String(), record.TotalClaimed.String())

		balance, err := l.BalanceOf(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, expected.String(), balance.String())

		res, err := l.Redeem(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, expected.String(), res.Net.String())
		assert.Equal(t, expected.String(), balanceOf(t, s, alice).String())
		assert.Equal(t, "0", balanceOf(t, s, poolAdr).String())
	})
}

func TestLedger_EqualStakers(t *testing.T) {
	ctx := context.Background()

	stakers := func(n int) []common.Address {
		res := make([]common.Address, n)
		for i := range res {
			res[i] = common.BigToAddress(big.NewInt(int64(0x100 + i)))
		}
		return res
	}

	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t)
		five := stakers(5)
		for _, addr := range five {
			require.NoError(t, l.Deposit(ctx, addr, addr, testMinContribution))
		}
		require.True(t, mineAndClaim(t, l, s, 0).Won)
		atWindow(s, testEpochLength)

		for _, addr := range five {
			res, err := l.Redeem(ctx, addr)
			require.NoError(t, err)
			assert.Equal(t, "2000000000", res.Gross.String())
		}
		assert.Equal(t, "0", balanceOf(t, s, poolAdr).String())
	})

	t.Run("test_2", func(t *testing.T) {
		l, s := newTestLedger(t)
		six := stakers(6)
		for _, addr := range six {
			require.NoError(t, l.Deposit(ctx, addr, addr, testMinContribution))
		}
		require.True(t, mineAndClaim(t, l, s, 0).Won)
		atWindow(s, testEpochLength)

		sum := new(big.Int)
		for _, addr := range six {
			res, err := l.Redeem(ctx, addr)
			require.NoError(t, err)
			assert.Equal(t, "1666666666", res.Gross.String())
			sum.Add(sum, res.Gross)
		}
		assert.Equal(t, -1, sum.Cmp(testBlockReward))
		// the floor residual stays with the pool
		assert.Equal(t, "4", balanceOf(t, s, poolAdr).String())
	})

	t.Run("test_3", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.NoError(t, l.Deposit(ctx, bob, bob, units(3)))
		require.True(t, mineAndClaim(t, l, s, 0).Won)

		a, err := l.BalanceOf(ctx, alice)
		require.NoError(t, err)
		b, err := l.BalanceOf(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, "2500000000", a.String())
		assert.Equal(t, "7500000000", b.String())
	})
}

func TestLedger_RoundingLoss(t *testing.T) {
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t)
		carol := common.HexToAddress("0xc3")
		require.NoError(t, l.Deposit(ctx, alice, alice, big.NewInt(1_000_000_000)))
		require.NoError(t, l.Deposit(ctx, bob, bob, big.NewInt(1_300_000_007)))
		require.NoError(t, l.Deposit(ctx, carol, carol, big.NewInt(2_100_000_013)))
		runEpoch(t, l, s, 0)

		paid := new(big.Int)
		for _, addr := range []common.Address{alice, bob, carol} {
			balance, err := l.BalanceOf(ctx, addr)
			require.NoError(t, err)
			paid.Add(paid, balance)
		}
		total := new(big.Int).Mul(big.NewInt(100), testBlockReward)
		loss := new(big.Int).Sub(total, paid)
		assert.True(t, loss.Sign() >= 0)
		// 0.0003 block reward units
		bound := new(big.Int).Div(new(big.Int).Mul(testBlockReward, big.NewInt(3)), big.NewInt(10000))
		assert.True(t, loss.Cmp(bound) < 0, "loss %v", loss)
	})
}

func TestLedger_Redeem(t *testing.T) {
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t, withFee(5))
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.True(t, mineAndClaim(t, l, s, 0).Won)

		// rewards of the open epoch are locked
		balance, err := l.BalanceOf(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, testBlockReward.String(), balance.String())
		_, err = l.Redeem(ctx, alice)
		assert.ErrorIs(t, err, errcode.ErrNothingToRedeem)

		atWindow(s, testEpochLength)
		res, err := l.Redeem(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "10000000000", res.Gross.String())
		assert.Equal(t, "9500000000", res.Net.String())
		assert.Equal(t, "500000000", res.Fee.String())
		assert.Equal(t, int64(0), res.ThroughEpoch)
		assert.Equal(t, "9500000000", balanceOf(t, s, alice).String())
		assert.Equal(t, "500000000", balanceOf(t, s, owner).String())

		_, err = l.Redeem(ctx, alice)
		assert.ErrorIs(t, err, errcode.ErrNothingToRedeem)
		assert.True(t, errcode.IsStateError(err))

		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "0", view.Redeemable.String())
		assert.Equal(t, "9500000000", view.RedeemedTotal.String())

		history, total, err := l.GetRedemptions(ctx, alice, 1, 10, false)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "9500000000", history[0].Net.String())
	})

	t.Run("test_2", func(t *testing.T) {
		l, _ := newTestLedger(t, withQuietEmptyRedeem())
		res, err := l.Redeem(ctx, alice)
		require.NoError(t, err)
		assert.Nil(t, res)
		require.NoError(t, l.Deposit(ctx, alice, alice, big.NewInt(0)))
	})

	t.Run("test_3", func(t *testing.T) {
		l, s := newTestLedger(t, withQuietEmptyRedeem())
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.True(t, mineAndClaim(t, l, s, 0).Won)
		atWindow(s, testEpochLength)

		res, err := l.Redeem(ctx, alice)
		require.NoError(t, err)
		require.NotNil(t, res)
		res, err = l.Redeem(ctx, alice)
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("test_4", func(t *testing.T) {
		l, s := newTestLedger(t, withFee(10))
		require.NoError(t, l.SetFeeBank(ctx, owner, bank, 40))
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.True(t, mineAndClaim(t, l, s, 0).Won)
		atWindow(s, testEpochLength)

		res, err := l.Redeem(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "400000000", res.FeeBankAmount.String())
		assert.Equal(t, "9000000000", balanceOf(t, s, alice).String())
		assert.Equal(t, "400000000", balanceOf(t, s, bank).String())
		assert.Equal(t, "600000000", balanceOf(t, s, owner).String())
	})

	t.Run("test_5", func(t *testing.T) {
		l, s := newTestLedger(t, withFee(5))
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.True(t, mineAndClaim(t, l, s, 0).Won)
		atWindow(s, testEpochLength)

		s.Fail(rewardsource.OpTransfer, errors.New("reverted"))
		_, err := l.Redeem(ctx, alice)
		assert.ErrorIs(t, err, errcode.ErrExternalCallFailed)

		account, err := l.accountInfoDao.GetByAddress(ctx, l.db, alice.Hex())
		require.NoError(t, err)
		assert.Equal(t, int64(-1), account.RedeemedThroughEpoch)
		assert.Equal(t, "0", account.PendingNet)
		assert.Equal(t, testBlockReward.String(), balanceOf(t, s, poolAdr).String())
		_, total, err := l.GetRedemptions(ctx, alice, 1, 10, true)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)

		s.Fail(rewardsource.OpTransfer, nil)
		res, err := l.Redeem(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "9500000000", res.Net.String())
	})

	t.Run("test_6", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		atWindow(s, testEpochLength-1)
		_, err := l.Mine(ctx)
		require.NoError(t, err)

		// window 99 is mined but not resolved, epoch 0 is not final yet
		atWindow(s, testEpochLength)
		_, err = l.Redeem(ctx, alice)
		assert.ErrorIs(t, err, errcode.ErrNothingToRedeem)

		_, err = l.Claim(ctx, testEpochLength-1, alice)
		require.NoError(t, err)
		res, err := l.Redeem(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, testBlockReward.String(), res.Net.String())
	})

	t.Run("test_7", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.True(t, mineAndClaim(t, l, s, 0).Won)

		// skip an epoch, then settle two epochs in one redemption
		atWindow(s, 2*testEpochLength)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.True(t, mineAndClaim(t, l, s, 2*testEpochLength).Won)
		atWindow(s, 3*testEpochLength)

		res, err := l.Redeem(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "20000000000", res.Net.String())
		assert.Equal(t, int64(2), res.ThroughEpoch)
	})
}
