package dao

import (
	"context"
	"testing"

	"github.com/abesuite/gaopool/dal/do"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochRecordInfoDAOImpl(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	e := GetEpochRecordInfoDAOImpl()

	t.Run("test_1", func(t *testing.T) {
		latest, err := e.GetLatestEpoch(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, int64(-1), latest)

		res, err := e.GetByEpoch(ctx, db, 0)
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("test_2", func(t *testing.T) {
		for _, epoch := range []int64{0, 4} {
			_, err := e.Create(ctx, db, &do.EpochRecordInfo{
				Epoch:        epoch,
				TotalAttempt: "0",
				TotalClaimed: "0",
				TotalStake:   "0",
				Unit:         "0",
			})
			require.NoError(t, err)
		}
		latest, err := e.GetLatestEpoch(ctx, db)
		require.NoError(t, err)
		assert.Equal(t, int64(4), latest)
	})

	t.Run("test_3", func(t *testing.T) {
		res, err := e.GetByEpoch(ctx, db, 4)
		require.NoError(t, err)
		res.MinedWindows++
		res.TotalAttempt = "10000000"
		res.Unit = "10000000"
		_, err = e.Update(ctx, db, res)
		require.NoError(t, err)

		res, err = e.GetByEpoch(ctx, db, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.MinedWindows)
		assert.Equal(t, "10000000", res.Unit)
	})
}
