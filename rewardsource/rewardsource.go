package rewardsource

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// RewardSource adjudicates mining attempts and pays block rewards to
// winning windows.
type RewardSource interface {
	CurrentHeight(ctx context.Context) (uint64, error)
	// SubmitAttempt submits value as the attempt of from for window.  It
	// fails when window does not contain the current height.
	SubmitAttempt(ctx context.Context, from common.Address, window uint64, value *big.Int) error
	CheckAttemptExists(ctx context.Context, window uint64, miner common.Address) (bool, error)
	CheckWinning(ctx context.Context, window uint64) (bool, error)
	// Claim transfers one block reward of a won window to creditTo.
	Claim(ctx context.Context, window uint64, creditTo common.Address) error
}

type Payout struct {
	To     common.Address
	Amount *big.Int
}

// RewardToken holds the won rewards.  Transfer either applies every payout
// or none of them.
type RewardToken interface {
	BalanceOf(ctx context.Context, addr common.Address) (*big.Int, error)
	Transfer(ctx context.Context, from common.Address, payouts ...Payout) error
}

// Factory opens the source and token at a reward source address.
type Factory func(addr common.Address) (RewardSource, RewardToken, error)
