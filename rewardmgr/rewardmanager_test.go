package rewardmgr

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/abesuite/gaopool/dal"
	"github.com/abesuite/gaopool/ledger"
	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/rewardsource"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = common.HexToAddress("0xe0")
	pool  = common.HexToAddress("0xf0")
	alice = common.HexToAddress("0xa1")
)

func newTestLedger(t *testing.T) (*ledger.Ledger, *rewardsource.Simulated) {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := dal.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, dal.CreateTables(db))

	source := rewardsource.NewSimulated(rewardsource.SimulatedConfig{
		WindowSize:  5,
		BlockReward: big.NewInt(1000),
		WinPercent:  100,
	})
	l, err := ledger.New(context.Background(), db, ledger.Config{
		WindowSize:      5,
		EpochLength:     10,
		MinContribution: big.NewInt(100),
		BlockReward:     big.NewInt(1000),
		Defaults: &model.PoolConfig{
			Owner:           owner,
			PoolAddress:     pool,
			MaxContribution: new(big.Int),
		},
	}, source, source)
	require.NoError(t, err)
	return l, source
}

func TestRewardManager_poll(t *testing.T) {
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, big.NewInt(100)))
		s.SetOutcome(1, false)
		m := NewRewardManager(&Config{Ledger: l, AutoMine: true, Clock: clockwork.NewFakeClock()})

		for w := uint64(0); w < 3; w++ {
			s.SetHeight(w * 5)
			m.poll(ctx)
			// same window, nothing happens
			s.Advance(2)
			m.poll(ctx)
		}
		assert.Equal(t, 3, s.Calls(rewardsource.OpSubmitAttempt))

		record, err := l.GetEpochRecord(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), record.MinedWindows)
		assert.Equal(t, uint64(2), record.ResolvedWindows)
		assert.Equal(t, uint64(1), record.ClaimedWindows)
		assert.Equal(t, "1000", record.TotalClaimed.String())
	})

	t.Run("test_2", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, big.NewInt(100)))
		_, err := l.Mine(ctx)
		require.NoError(t, err)

		m := NewRewardManager(&Config{Ledger: l, AutoMine: false, Clock: clockwork.NewFakeClock()})
		s.SetHeight(5)
		m.poll(ctx)
		// claims without mining
		assert.Equal(t, 1, s.Calls(rewardsource.OpSubmitAttempt))
		state, err := l.WindowState(ctx, 0)
		require.NoError(t, err)
		assert.True(t, state.Claimed)
		assert.True(t, state.Won)
	})

	t.Run("test_3", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(ctx, alice, alice, big.NewInt(100)))
		var opened int
		m := NewRewardManager(&Config{Ledger: l, AutoMine: true, Clock: clockwork.NewFakeClock()})
		m.Subscribe(func(n *Notification) {
			if n.Type == NTWindowOpened {
				opened++
			}
		})

		s.SetHeight(5)
		s.Fail(rewardsource.OpSubmitAttempt, errors.New("reverted"))
		m.poll(ctx)
		state, err := l.WindowState(ctx, 1)
		require.NoError(t, err)
		assert.False(t, state.Attempted)

		// the same window is mined again on the next round
		s.Fail(rewardsource.OpSubmitAttempt, nil)
		m.poll(ctx)
		state, err = l.WindowState(ctx, 1)
		require.NoError(t, err)
		assert.True(t, state.Attempted)
		assert.Equal(t, 2, s.Calls(rewardsource.OpSubmitAttempt))

		m.poll(ctx)
		assert.Equal(t, 2, s.Calls(rewardsource.OpSubmitAttempt))
		assert.Equal(t, 1, opened)
	})
}

func TestRewardManager_StartStop(t *testing.T) {
	t.Run("test_1", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(context.Background(), alice, alice, big.NewInt(100)))
		clock := clockwork.NewFakeClock()
		m := NewRewardManager(&Config{Ledger: l, AutoMine: true, Clock: clock, PollInterval: time.Second})
		m.Start()

		require.Eventually(t, func() bool {
			return s.Calls(rewardsource.OpSubmitAttempt) == 1
		}, 5*time.Second, 10*time.Millisecond)

		s.SetHeight(5)
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(time.Second)
		require.Eventually(t, func() bool {
			return s.Calls(rewardsource.OpSubmitAttempt) == 2
		}, 5*time.Second, 10*time.Millisecond)

		m.Stop()
		m.Stop()
	})

	t.Run("test_2", func(t *testing.T) {
		l, s := newTestLedger(t)
		require.NoError(t, l.Deposit(context.Background(), alice, alice, big.NewInt(100)))
		s.Fail(rewardsource.OpSubmitAttempt, errors.New("reverted"))
		clock := clockwork.NewFakeClock()
		m := NewRewardManager(&Config{Ledger: l, AutoMine: true, Clock: clock, PollInterval: time.Second})
		m.Start()
		defer m.Stop()

		require.Eventually(t, func() bool {
			return s.Calls(rewardsource.OpSubmitAttempt) == 1
		}, 5*time.Second, 10*time.Millisecond)

		s.Fail(rewardsource.OpSubmitAttempt, nil)
		require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
		clock.Advance(time.Second)
		require.Eventually(t, func() bool {
			ok, err := l.CheckMiningAttempt(context.Background(), 0)
			return err == nil && ok
		}, 5*time.Second, 10*time.Millisecond)
	})
}

func TestRewardManager_Subscribe(t *testing.T) {
	ctx := context.Background()
	l, s := newTestLedger(t)
	require.NoError(t, l.Deposit(ctx, alice, alice, big.NewInt(100)))
	s.SetOutcome(0, true)

	var notifications []*Notification
	m := NewRewardManager(&Config{Ledger: l, AutoMine: true, Clock: clockwork.NewFakeClock()})
	m.Subscribe(func(n *Notification) {
		notifications = append(notifications, n)
	})

	m.poll(ctx)
	s.SetHeight(5 * 10)
	m.poll(ctx)

	require.Len(t, notifications, 3)
	assert.Equal(t, NTWindowOpened, notifications[0].Type)
	assert.Equal(t, &WindowOpened{Window: 0, Epoch: 0, Attempted: true}, notifications[0].Data)

	// window 10 opens epoch 1, alice has no stake there
	assert.Equal(t, NTWindowOpened, notifications[1].Type)
	assert.Equal(t, &WindowOpened{Window: 10, Epoch: 1, Attempted: false}, notifications[1].Data)

	assert.Equal(t, NTWindowResolved, notifications[2].Type)
	res, ok := notifications[2].Data.(*ledger.ClaimResult)
	require.True(t, ok)
	assert.Equal(t, uint64(0), res.Window)
	assert.True(t, res.Won)
	assert.Equal(t, "NTWindowResolved", NTWindowResolved.String())
}
