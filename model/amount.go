package model

import (
	"fmt"
	"math/big"
)

// ParseAmount parses a base-10 amount column.  An empty column is zero.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	res, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if res.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return res, nil
}

// FormatAmount formats an amount for storage, nil is stored as zero.
func FormatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

// CopyAmount returns a copy of amount, nil becomes zero.
func CopyAmount(amount *big.Int) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(amount)
}
