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

// tickingSource crosses into the next window right before the first
// attempt lands.
type tickingSource struct {
	*rewardsource.Simulated
	ticked bool
}

func (s *tickingSource) SubmitAttempt(ctx context.Context, from common.Address, window uint64, value *big.Int) error {
	if !s.ticked {
		s.ticked = true
		s.AdvanceWindows(1)
	}
	return s.Simulated.SubmitAttempt(ctx, from, window, value)
}

func TestLedger_Mine(t *testing.T) {
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.NoError(t, l.Deposit(ctx, bob, bob, units(3)))
		atWindow(s, 7)

		res, err := l.Mine(ctx)
		require.NoError(t, err)
		assert.True(t, res.Attempted)
		assert.Equal(t, uint64(7), res.Window)
		assert.Equal(t, "40000000", res.Total.String())
		assert.Equal(t, 2, res.Participants)
		assert.Equal(t, "40000000", s.AttemptValue(7, poolAdr).String())

		record, err := l.GetEpochRecord(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), record.MinedWindows)
		assert.Equal(t, "40000000", record.TotalAttempt.String())
		assert.Equal(t, "40000000", record.Unit.String())

		view, err := l.FindContribution(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, "30000000", view.CommittedAttempt.String())
		assert.Equal(t, "2970000000", view.UncommittedBalance.String())

		ok, err := l.CheckMiningAttempt(ctx, 7)
		require.NoError(t, err)
		assert.True(t, ok)
		state, err := l.WindowState(ctx, 7)
		require.NoError(t, err)
		assert.True(t, state.Attempted)
	})

	t.Run("test_2", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		_, err := l.Mine(ctx)
		require.NoError(t, err)

		// same window, a few blocks later
		s.Advance(testWindowSize - 1)
		_, err = l.Mine(ctx)
		assert.ErrorIs(t, err, errcode.ErrAlreadyAttempted)
		assert.True(t, errcode.IsStateError(err))
		assert.Equal(t, 1, s.Calls(rewardsource.OpSubmitAttempt))
	})

	t.Run("test_3", func(t *testing.T) {
		l, s := newTestLedger(t)
		res, err := l.Mine(ctx)
		require.NoError(t, err)
		assert.False(t, res.Attempted)
		assert.Equal(t, 0, s.Calls(rewardsource.OpSubmitAttempt))

		state, err := l.WindowState(ctx, 0)
		require.NoError(t, err)
		assert.False(t, state.Attempted)
		record, err := l.GetEpochRecord(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), record.MinedWindows)

		// the window can still be mined once someone contributes
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		res, err = l.Mine(ctx)
		require.NoError(t, err)
		assert.True(t, res.Attempted)
	})

	t.Run("test_4", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		require.NoError(t, l.SetPaused(ctx, owner, true))
		_, err := l.Mine(ctx)
		assert.ErrorIs(t, err, errcode.ErrPoolPaused)
		assert.Equal(t, 0, s.Calls(rewardsource.OpSubmitAttempt))
	})

	t.Run("test_5", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		s.Fail(rewardsource.OpSubmitAttempt, errors.New("reverted"))

		_, err := l.Mine(ctx)
		assert.ErrorIs(t, err, errcode.ErrExternalCallFailed)
		assert.True(t, errcode.IsExternalCallError(err))

		state, err := l.WindowState(ctx, 0)
		require.NoError(t, err)
		assert.False(t, state.Attempted)
		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "0", view.CommittedAttempt.String())
		record, err := l.GetEpochRecord(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), record.MinedWindows)
		assert.Equal(t, "0", record.TotalAttempt.String())

		s.Fail(rewardsource.OpSubmitAttempt, nil)
		res, err := l.Mine(ctx)
		require.NoError(t, err)
		assert.True(t, res.Attempted)
	})

	t.Run("test_6", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		for w := uint64(0); w < testEpochLength; w++ {
			atWindow(s, w)
			_, err := l.Mine(ctx)
			require.NoError(t, err)
		}
		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, units(1).String(), view.CommittedAttempt.String())
		assert.Equal(t, "0", view.UncommittedBalance.String())

		remaining, err := l.RemainingEpochWindows(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), remaining)

		// stakes do not carry over into the next epoch
		atWindow(s, testEpochLength)
		res, err := l.Mine(ctx)
		require.NoError(t, err)
		assert.False(t, res.Attempted)
	})

	t.Run("test_7", func(t *testing.T) {
		s := newTestSource()
		l := openTestLedger(t, &tickingSource{Simulated: s}, s)
		require.NoError(t, l.Deposit(ctx, alice, alice, units(1)))
		atWindow(s, 5)

		_, err := l.Mine(ctx)
		assert.ErrorIs(t, err, errcode.ErrExternalCallFailed)
		assert.ErrorIs(t, err, rewardsource.ErrWindowMismatch)
		assert.Nil(t, s.AttemptValue(5, poolAdr))
		assert.Nil(t, s.AttemptValue(6, poolAdr))

		state, err := l.WindowState(ctx, 5)
		require.NoError(t, err)
		assert.False(t, state.Attempted)
		view, err := l.FindContribution(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "0", view.CommittedAttempt.String())

		// the source is now in window 6, which mines normally
		res, err := l.Mine(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), res.Window)
		assert.Equal(t, res.Total.String(), s.AttemptValue(6, poolAdr).String())
	})
}
