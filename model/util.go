package model

import "math/big"

func parseAmounts(amounts ...string) ([]*big.Int, error) {
	res := make([]*big.Int, 0, len(amounts))
	for _, amount := range amounts {
		parsed, err := ParseAmount(amount)
		if err != nil {
			return nil, err
		}
		res = append(res, parsed)
	}
	return res, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
