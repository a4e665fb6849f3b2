package poolserver

import (
	"context"

	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/pooljson"
)

// handleDeposit implements the deposit command.  A zero amount redeems the
// sender.
func handleDeposit(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.DepositCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	sender, err := parseAddressParam("sender", cmd.Sender)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountParam(cmd.Amount)
	if err != nil {
		return nil, err
	}
	creditTo, err := parseOptionalAddressParam("credit to", cmd.CreditTo)
	if err != nil {
		return nil, err
	}

	err = s.ledger.Deposit(context.Background(), sender, creditTo, amount)
	if err != nil {
		log.Debugf("Deposit of %v from %v rejected: %v", amount, sender.Hex(), err)
		return nil, err
	}
	return &pooljson.CommonResult{
		Success: true,
	}, nil
}

// handleRedeem implements the redeem command.
func handleRedeem(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.RedeemCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	address, err := parseAddressParam("address", cmd.Address)
	if err != nil {
		return nil, err
	}
	redemption, err := s.ledger.Redeem(context.Background(), address)
	if err != nil {
		return nil, err
	}
	if redemption == nil {
		return &pooljson.RedeemResult{
			Address:       address.Hex(),
			Gross:         "0",
			Fee:           "0",
			FeeBankAmount: "0",
			Net:           "0",
			ThroughEpoch:  -1,
		}, nil
	}
	return &pooljson.RedeemResult{
		Redeemed:      true,
		Address:       redemption.Address.Hex(),
		Gross:         model.FormatAmount(redemption.Gross),
		Fee:           model.FormatAmount(redemption.Fee),
		FeeBankAmount: model.FormatAmount(redemption.FeeBankAmount),
		Net:           model.FormatAmount(redemption.Net),
		ThroughEpoch:  redemption.ThroughEpoch,
	}, nil
}

// handleMine implements the mine command.
func handleMine(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	_, ok := icmd.(*pooljson.MineCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	res, err := s.ledger.Mine(context.Background())
	if err != nil {
		return nil, err
	}
	return &pooljson.MineResult{
		Window:       res.Window,
		Epoch:        res.Epoch,
		Attempted:    res.Attempted,
		Total:        model.FormatAmount(res.Total),
		Participants: res.Participants,
	}, nil
}

// handleClaim implements the claim command.
func handleClaim(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.ClaimCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	creditTo, err := parseOptionalAddressParam("credit to", cmd.CreditTo)
	if err != nil {
		return nil, err
	}
	res, err := s.ledger.Claim(context.Background(), cmd.Window, creditTo)
	if err != nil {
		return nil, err
	}
	return &pooljson.ClaimResult{
		Window: res.Window,
		Epoch:  res.Epoch,
		Won:    res.Won,
	}, nil
}
