package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Account struct {
	Address    common.Address
	EpochIndex uint64
	// RedeemedThroughEpoch is -1 until the first epoch is settled.
	RedeemedThroughEpoch int64
	PendingNet           *big.Int
	PendingFee           *big.Int
	RedeemedTotal        *big.Int
	CreatedAt            time.Time
}

type Stake struct {
	Address             common.Address
	Epoch               uint64
	Stake               *big.Int
	PerWindowAllocation *big.Int
	CommittedAttempt    *big.Int
	UncommittedBalance  *big.Int
}

// ContributionView is what findContribution reports for an address.
type ContributionView struct {
	Address             common.Address `json:"address"`
	EpochIndex          uint64         `json:"epochindex"`
	PerWindowAllocation *big.Int       `json:"perwindowallocation"`
	Stake               *big.Int       `json:"stake"`
	CommittedAttempt    *big.Int       `json:"committedattempt"`
	UncommittedBalance  *big.Int       `json:"uncommittedbalance"`
	// Redeemable is the settled amount plus the live share of every
	// unsettled epoch, fees not deducted.
	Redeemable    *big.Int `json:"redeemable"`
	RedeemedTotal *big.Int `json:"redeemedtotal"`
}
