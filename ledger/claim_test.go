package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/rewardsource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		_, err := l.Mine(ctx)
		require.NoError(t, err)

		_, err = l.Claim(ctx, 0, alice)
		assert.ErrorIs(t, err, errcode.ErrNotMature)
		assert.True(t, errcode.IsStateError(err))

		atWindow(s, 2)
		_, err = l.Claim(ctx, 1, alice)
		assert.ErrorIs(t, err, errcode.ErrNotAttempted)
		assert.True(t, errcode.IsStateError(err))

		res, err := l.Claim(ctx, 0, bob)
		require.NoError(t, err)
		assert.True(t, res.Won)

		_, err = l.Claim(ctx, 0, alice)
		assert.ErrorIs(t, err, errcode.ErrAlreadyClaimed)
		assert.True(t, errcode.IsStateError(err))

		record, err := l.GetEpochRecord(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), record.ClaimedWindows)
		assert.Equal(t, uint64(1), record.ResolvedWindows)
		assert.Equal(t, testBlockReward.String(), record.TotalClaimed.String())
		// the reward lands on the pool whoever claims
		assert.Equal(t, testBlockReward.String(), balanceOf(t, s, poolAdr).String())
		assert.Equal(t, "0", balanceOf(t, s, bob).String())
	})

	t.Run("test_2", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		s.SetOutcome(0, false)
		res := mineAndClaim(t, l, s, 0)
		assert.False(t, res.Won)

		record, err := l.GetEpochRecord(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), record.MinedWindows)
		assert.Equal(t, uint64(0), record.ClaimedWindows)
		assert.Equal(t, uint64(1), record.ResolvedWindows)
		assert.Equal(t, "0", record.TotalClaimed.String())
		assert.Equal(t, 0, s.Calls(rewardsource.OpClaim))

		state, err := l.WindowState(ctx, 0)
		require.NoError(t, err)
		assert.True(t, state.Claimed)
		assert.False(t, state.Won)

		// a missed window is resolved too
		_, err = l.Claim(ctx, 0, alice)
		assert.ErrorIs(t, err, errcode.ErrAlreadyClaimed)
	})

	t.Run("test_3", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		_, err := l.Mine(ctx)
		require.NoError(t, err)
		atWindow(s, 1)

		s.Fail(rewardsource.OpClaim, errors.New("reverted"))
		_, err = l.Claim(ctx, 0, alice)
		assert.ErrorIs(t, err, errcode.ErrExternalCallFailed)

		state, err := l.WindowState(ctx, 0)
		require.NoError(t, err)
		assert.False(t, state.Claimed)
		record, err := l.GetEpochRecord(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), record.ResolvedWindows)
		assert.Equal(t, "0", record.TotalClaimed.String())

		s.Fail(rewardsource.OpClaim, nil)
		s.Fail(rewardsource.OpCheckWinning, errors.New("unreachable"))
		_, err = l.Claim(ctx, 0, alice)
		assert.True(t, errcode.IsExternalCallError(err))

		s.Fail(rewardsource.OpCheckWinning, nil)
		res, err := l.Claim(ctx, 0, alice)
		require.NoError(t, err)
		assert.True(t, res.Won)
	})

	t.Run("test_4", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		for w := uint64(0); w < 3; w++ {
			atWindow(s, w)
			_, err := l.Mine(ctx)
			require.NoError(t, err)
		}
		windows, err := l.PendingWindows(ctx, 2, 10)
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 1}, windows)

		_, err = l.Claim(ctx, 0, alice)
		require.NoError(t, err)
		windows, err = l.PendingWindows(ctx, 3, 10)
		require.NoError(t, err)
		assert.Equal(t, []uint64{1, 2}, windows)

		won, err := l.CheckWinning(ctx, 1)
		require.NoError(t, err)
		assert.True(t, won)
	})
}
