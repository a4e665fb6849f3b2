package model

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type Contribution struct {
	Sender   common.Address `json:"sender"`
	CreditTo common.Address `json:"creditto"`
	Amount   *big.Int       `json:"amount"`
	Epoch    uint64         `json:"epoch"`
	Height   uint64         `json:"height"`
	Time     time.Time      `json:"time"`
}

type Redemption struct {
	Address       common.Address `json:"address"`
	Gross         *big.Int       `json:"gross"`
	Fee           *big.Int       `json:"fee"`
	FeeBankAmount *big.Int       `json:"feebankamount"`
	Net           *big.Int       `json:"net"`
	ThroughEpoch  int64          `json:"throughepoch"`
	Height        uint64         `json:"height"`
	Time          time.Time      `json:"time"`
}
