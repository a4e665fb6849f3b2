package dao

import (
	"context"
	"testing"

	"github.com/abesuite/gaopool/dal/do"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfigInfoDAOImpl(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := GetPoolConfigInfoDAOImpl()

	t.Run("test_1", func(t *testing.T) {
		res, err := p.Get(ctx, db)
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("test_2", func(t *testing.T) {
		_, err := p.Create(ctx, db, &do.PoolConfigInfo{
			Owner:           "0x00000000000000000000000000000000000000a1",
			FeePercentage:   5,
			MaxContribution: "0",
		})
		require.NoError(t, err)

		res, err := p.Get(ctx, db)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, uint64(1), res.ID)
		assert.Equal(t, 5, res.FeePercentage)

		res.Paused = 1
		res.FeePercentage = 0
		_, err = p.Update(ctx, db, res)
		require.NoError(t, err)

		res, err = p.Get(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Paused)
		assert.Equal(t, 0, res.FeePercentage)
	})
}
