package poolserver

import (
	"context"

	"github.com/abesuite/gaopool/pooljson"
)

var successResult = &pooljson.CommonResult{Success: true}

// handleSetFeePercentage implements the setfeepercentage command.
func handleSetFeePercentage(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.SetFeePercentageCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	caller, err := parseAddressParam("caller", cmd.Caller)
	if err != nil {
		return nil, err
	}
	err = s.ledger.SetFeePercentage(context.Background(), caller, cmd.Percentage)
	if err != nil {
		return nil, err
	}
	log.Infof("Fee percentage set to %v by %v", cmd.Percentage, caller.Hex())
	return successResult, nil
}

// handleSetPaused implements the setpaused command.
func handleSetPaused(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.SetPausedCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	caller, err := parseAddressParam("caller", cmd.Caller)
	if err != nil {
		return nil, err
	}
	err = s.ledger.SetPaused(context.Background(), caller, cmd.Paused)
	if err != nil {
		return nil, err
	}
	return successResult, nil
}

// handleSetMaxContribution implements the setmaxcontribution command.
func handleSetMaxContribution(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.SetMaxContributionCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	caller, err := parseAddressParam("caller", cmd.Caller)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmountParam(cmd.Amount)
	if err != nil {
		return nil, err
	}
	err = s.ledger.SetMaxContribution(context.Background(), caller, amount)
	if err != nil {
		return nil, err
	}
	return successResult, nil
}

// handleSetFeeBank implements the setfeebank command.
func handleSetFeeBank(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.SetFeeBankCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	caller, err := parseAddressParam("caller", cmd.Caller)
	if err != nil {
		return nil, err
	}
	bank, err := parseOptionalAddressParam("bank", &cmd.Bank)
	if err != nil {
		return nil, err
	}
	err = s.ledger.SetFeeBank(context.Background(), caller, bank, cmd.Percentage)
	if err != nil {
		return nil, err
	}
	return successResult, nil
}

// handleSetRewardSource implements the setrewardsource command.
func handleSetRewardSource(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.SetRewardSourceCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	caller, err := parseAddressParam("caller", cmd.Caller)
	if err != nil {
		return nil, err
	}
	address, err := parseAddressParam("address", cmd.Address)
	if err != nil {
		return nil, err
	}
	err = s.ledger.SetRewardSourceAddress(context.Background(), caller, address)
	if err != nil {
		return nil, err
	}
	return successResult, nil
}

// handleSetOwner implements the setowner command.
func handleSetOwner(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.SetOwnerCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	caller, err := parseAddressParam("caller", cmd.Caller)
	if err != nil {
		return nil, err
	}
	newOwner, err := parseAddressParam("new owner", cmd.NewOwner)
	if err != nil {
		return nil, err
	}
	err = s.ledger.TransferOwnership(context.Background(), caller, newOwner)
	if err != nil {
		return nil, err
	}
	log.Infof("Pool ownership transferred from %v to %v", caller.Hex(), newOwner.Hex())
	return successResult, nil
}
