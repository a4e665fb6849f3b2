package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/abesuite/gaopool/dal"
	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/rewardsource"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	testWindowSize  = 50
	testEpochLength = 100
)

var (
	testMinContribution = big.NewInt(1_000_000_000)
	testBlockReward     = big.NewInt(10_000_000_000)

	owner   = common.HexToAddress("0x00000000000000000000000000000000000000e0")
	poolAdr = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	bank    = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	alice   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob     = common.HexToAddress("0x00000000000000000000000000000000000000a2")
)

type testOption func(cfg *Config)

func withFee(percentage uint64) testOption {
	return func(cfg *Config) {
		cfg.Defaults.FeePercentage = percentage
	}
}

func withQuietEmptyRedeem() testOption {
	return func(cfg *Config) {
		cfg.QuietEmptyRedeem = true
	}
}

func withFactory(factory rewardsource.Factory) testOption {
	return func(cfg *Config) {
		cfg.SourceFactory = factory
	}
}

func newTestSource() *rewardsource.Simulated {
	return rewardsource.NewSimulated(rewardsource.SimulatedConfig{
		WindowSize:  testWindowSize,
		BlockReward: testBlockReward,
		WinPercent:  100,
		Seed:        []byte("ledger"),
	})
}

func newTestLedger(t *testing.T, opts ...testOption) (*Ledger, *rewardsource.Simulated) {
	t.Helper()
	source := newTestSource()
	return openTestLedger(t, source, source, opts...), source
}

func openTestLedger(t *testing.T, source rewardsource.RewardSource, token rewardsource.RewardToken, opts ...testOption) *Ledger {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := dal.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, dal.CreateTables(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	cfg := Config{
		WindowSize:      testWindowSize,
		EpochLength:     testEpochLength,
		MinContribution: testMinContribution,
		BlockReward:     testBlockReward,
		Defaults: &model.PoolConfig{
			Owner:           owner,
			PoolAddress:     poolAdr,
			MaxContribution: new(big.Int),
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	l, err := New(context.Background(), db, cfg, source, token)
	require.NoError(t, err)
	return l
}

func units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), testMinContribution)
}

// atWindow moves the source height to the first block of window.
func atWindow(s *rewardsource.Simulated, window uint64) {
	s.SetHeight(window * testWindowSize)
}

// mineAndClaim mines window and then claims it from the next window.
func mineAndClaim(t *testing.T, l *Ledger, s *rewardsource.Simulated, window uint64) *ClaimResult {
	t.Helper()
	ctx := context.Background()
	atWindow(s, window)
	mined, err := l.Mine(ctx)
	require.NoError(t, err)
	require.True(t, mined.Attempted)
	atWindow(s, window+1)
	res, err := l.Claim(ctx, window, alice)
	require.NoError(t, err)
	return res
}

// runEpoch mines every window of epoch, claiming each one as soon as it is
// mature, and leaves the height at the start of the next epoch.
func runEpoch(t *testing.T, l *Ledger, s *rewardsource.Simulated, epoch uint64) {
	t.Helper()
	ctx := context.Background()
	start := epoch * testEpochLength
	for w := start; w < start+testEpochLength; w++ {
		atWindow(s, w)
		_, err := l.Mine(ctx)
		require.NoError(t, err)
		if w > start {
			_, err = l.Claim(ctx, w-1, alice)
			require.NoError(t, err)
		}
	}
	atWindow(s, start+testEpochLength)
	_, err := l.Claim(ctx, start+testEpochLength-1, alice)
	require.NoError(t, err)
}

func balanceOf(t *testing.T, s *rewardsource.Simulated, addr common.Address) *big.Int {
	t.Helper()
	res, err := s.BalanceOf(context.Background(), addr)
	require.NoError(t, err)
	return res
}
