package dao

import (
	"context"
	"strconv"
	"testing"

	"github.com/abesuite/gaopool/dal/do"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributionInfoDAOImpl(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	c := GetContributionInfoDAOImpl()

	alice := "0x00000000000000000000000000000000000000a1"
	for i := 1; i <= 5; i++ {
		_, err := c.Create(ctx, db, &do.ContributionInfo{
			Sender:   alice,
			CreditTo: alice,
			Amount:   strconv.Itoa(i * 1000),
			Epoch:    int64(i),
		})
		require.NoError(t, err)
	}

	t.Run("test_1", func(t *testing.T) {
		res, err := c.GetByCreditTo(ctx, db, alice, 1, 2, false)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, "5000", res[0].Amount)
		assert.Equal(t, "4000", res[1].Amount)

		res, err = c.GetByCreditTo(ctx, db, alice, 3, 2, true)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "5000", res[0].Amount)
	})

	t.Run("test_2", func(t *testing.T) {
		num, err := c.GetNumByCreditTo(ctx, db, alice)
		require.NoError(t, err)
		assert.Equal(t, int64(5), num)

		_, err = c.GetByCreditTo(ctx, db, alice, 0, 2, true)
		assert.Error(t, err)
	})
}

func TestRedemptionInfoDAOImpl(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	r := GetRedemptionInfoDAOImpl()

	bob := "0x00000000000000000000000000000000000000b2"
	_, err := r.Create(ctx, db, &do.RedemptionInfo{
		Address:       bob,
		Gross:         "100",
		Fee:           "5",
		FeeBankAmount: "0",
		Net:           "95",
		ThroughEpoch:  1,
	})
	require.NoError(t, err)

	t.Run("test_1", func(t *testing.T) {
		res, err := r.GetByAddress(ctx, db, bob, 1, 10, false)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "95", res[0].Net)

		num, err := r.GetNumByAddress(ctx, db, "0x00000000000000000000000000000000000000c3")
		require.NoError(t, err)
		assert.Equal(t, int64(0), num)
	})
}
