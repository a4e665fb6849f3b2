package service

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/abesuite/gaopool/dal"
	"github.com/abesuite/gaopool/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dal.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, dal.CreateTables(db))
	return db
}

func TestPoolConfigServiceImpl(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := GetPoolConfigService()
	owner := common.HexToAddress("0xa1")

	t.Run("test_1", func(t *testing.T) {
		_, err := p.Get(ctx, db)
		assert.Error(t, err)
		assert.Error(t, p.Update(ctx, db, &model.PoolConfig{}))
	})

	t.Run("test_2", func(t *testing.T) {
		cfg, err := p.GetOrCreate(ctx, db, &model.PoolConfig{
			Owner:           owner,
			FeePercentage:   5,
			MaxContribution: big.NewInt(0),
		})
		require.NoError(t, err)
		assert.Equal(t, owner, cfg.Owner)

		// stored values win over new defaults
		cfg, err = p.GetOrCreate(ctx, db, &model.PoolConfig{FeePercentage: 9})
		require.NoError(t, err)
		assert.Equal(t, uint64(5), cfg.FeePercentage)
		assert.Equal(t, owner, cfg.Owner)
	})

	t.Run("test_3", func(t *testing.T) {
		cfg, err := p.Get(ctx, db)
		require.NoError(t, err)
		cfg.Paused = true
		cfg.MaxContribution = big.NewInt(3000000000)
		require.NoError(t, p.Update(ctx, db, cfg))

		cfg, err = p.Get(ctx, db)
		require.NoError(t, err)
		assert.True(t, cfg.Paused)
		assert.Equal(t, "3000000000", cfg.MaxContribution.String())
	})
}

func TestHistoryServiceImpl(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	h := GetHistoryService()
	alice := common.HexToAddress("0xa1")

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, h.AddContribution(ctx, db, &model.Contribution{
			Sender:   alice,
			CreditTo: alice,
			Amount:   big.NewInt(i * 1e9),
			Epoch:    uint64(i),
		}))
	}
	require.NoError(t, h.AddRedemption(ctx, db, &model.Redemption{
		Address: alice,
		Gross:   big.NewInt(100),
		Fee:     big.NewInt(5),
		Net:     big.NewInt(95),
	}))

	t.Run("test_1", func(t *testing.T) {
		res, err := h.GetContributions(ctx, db, alice, 1, 10, false)
		require.NoError(t, err)
		require.Len(t, res, 3)
		assert.Equal(t, "3000000000", res[0].Amount.String())
		assert.Equal(t, alice, res[0].CreditTo)

		num, err := h.GetContributionNum(ctx, db, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(3), num)
	})

	t.Run("test_2", func(t *testing.T) {
		res, err := h.GetRedemptions(ctx, db, alice, 1, 10, true)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "95", res[0].Net.String())
		assert.Equal(t, "0", res[0].FeeBankAmount.String())
	})

	t.Run("test_3", func(t *testing.T) {
		_, err := h.GetContributions(ctx, db, alice, 1, 1000, true)
		assert.Error(t, err)
		_, err = h.GetRedemptions(ctx, db, alice, 0, 10, true)
		assert.Error(t, err)
	})
}
