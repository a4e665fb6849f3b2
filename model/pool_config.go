package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type PoolConfig struct {
	Owner               common.Address
	PoolAddress         common.Address
	RewardSourceAddress common.Address
	FeePercentage       uint64
	FeeBankAddress      common.Address
	FeeBankPercentage   uint64
	// MaxContribution of zero means unlimited.
	MaxContribution *big.Int
	Paused          bool
}

// HasFeeBank reports whether part of the fee goes to a fee bank.
func (p *PoolConfig) HasFeeBank() bool {
	return p.FeeBankAddress != (common.Address{}) && p.FeeBankPercentage > 0
}
