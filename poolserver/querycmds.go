package poolserver

import (
	"context"
	"fmt"

	"github.com/abesuite/gaopool/constdef"
	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/pooljson"
)

// handleFindContribution implements the findcontribution command.
func handleFindContribution(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.FindContributionCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	address, err := parseAddressParam("address", cmd.Address)
	if err != nil {
		return nil, err
	}
	view, err := s.ledger.FindContribution(context.Background(), address)
	if err != nil {
		return nil, err
	}
	return &pooljson.FindContributionResult{
		Address:             view.Address.Hex(),
		EpochIndex:          view.EpochIndex,
		PerWindowAllocation: model.FormatAmount(view.PerWindowAllocation),
		Stake:               model.FormatAmount(view.Stake),
		CommittedAttempt:    model.FormatAmount(view.CommittedAttempt),
		UncommittedBalance:  model.FormatAmount(view.UncommittedBalance),
		Redeemable:          model.FormatAmount(view.Redeemable),
		RedeemedTotal:       model.FormatAmount(view.RedeemedTotal),
	}, nil
}

// handleBalanceOf implements the balanceof command.
func handleBalanceOf(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.BalanceOfCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	address, err := parseAddressParam("address", cmd.Address)
	if err != nil {
		return nil, err
	}
	balance, err := s.ledger.BalanceOf(context.Background(), address)
	if err != nil {
		return nil, err
	}
	return &pooljson.BalanceOfResult{
		Address: address.Hex(),
		Balance: model.FormatAmount(balance),
	}, nil
}

// handleGetEpochRecord implements the getepochrecord command.
func handleGetEpochRecord(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.GetEpochRecordCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	ctx := context.Background()
	var epoch uint64
	if cmd.Epoch != nil {
		epoch = *cmd.Epoch
	} else {
		window, err := s.ledger.CurrentWindow(ctx)
		if err != nil {
			return nil, err
		}
		epoch = s.ledger.Clock().EpochOf(window)
	}

	record, err := s.ledger.GetEpochRecord(ctx, epoch)
	if err != nil {
		return nil, err
	}
	return &pooljson.GetEpochRecordResult{
		Epoch:           record.Epoch,
		MinedWindows:    record.MinedWindows,
		ClaimedWindows:  record.ClaimedWindows,
		ResolvedWindows: record.ResolvedWindows,
		TotalAttempt:    model.FormatAmount(record.TotalAttempt),
		TotalClaimed:    model.FormatAmount(record.TotalClaimed),
		TotalStake:      model.FormatAmount(record.TotalStake),
		Unit:            model.FormatAmount(record.Unit),
		Finalized:       record.Finalized(),
	}, nil
}

// handleCheckMiningAttempt implements the checkminingattempt command.
func handleCheckMiningAttempt(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.CheckMiningAttemptCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	attempted, err := s.ledger.CheckMiningAttempt(context.Background(), cmd.Window)
	if err != nil {
		return nil, err
	}
	return &pooljson.CheckMiningAttemptResult{
		Window:    cmd.Window,
		Attempted: attempted,
	}, nil
}

// handleCheckWinning implements the checkwinning command.
func handleCheckWinning(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.CheckWinningCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	won, err := s.ledger.CheckWinning(context.Background(), cmd.Window)
	if err != nil {
		return nil, err
	}
	return &pooljson.CheckWinningResult{
		Window: cmd.Window,
		Won:    won,
	}, nil
}

// handleGetWindowState implements the getwindowstate command.
func handleGetWindowState(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.GetWindowStateCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	state, err := s.ledger.WindowState(context.Background(), cmd.Window)
	if err != nil {
		return nil, err
	}
	return &pooljson.GetWindowStateResult{
		Window:       state.Window,
		Epoch:        state.Epoch,
		Attempted:    state.Attempted,
		Claimed:      state.Claimed,
		Won:          state.Won,
		AttemptValue: model.FormatAmount(state.AttemptValue),
	}, nil
}

// pageParams applies the paging defaults to nil parameters and checks the
// resulting range.
func pageParams(page *int, num *int, positiveOrder *bool) (int, int, bool, error) {
	p, n, order := 1, constdef.DefaultPageSize, false
	if page != nil {
		p = *page
	}
	if num != nil {
		n = *num
	}
	if positiveOrder != nil {
		order = *positiveOrder
	}
	if p <= 0 || n <= 0 || n > constdef.MaxPageSize {
		return 0, 0, false, pooljson.NewRPCError(pooljson.ErrInvalidRequestParams.Code,
			fmt.Sprintf("page must be positive and num in [1, %v]", constdef.MaxPageSize))
	}
	return p, n, order, nil
}

// handleGetContributions implements the getcontributions command.
func handleGetContributions(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.GetContributionsCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	address, err := parseAddressParam("address", cmd.Address)
	if err != nil {
		return nil, err
	}
	page, num, order, err := pageParams(cmd.Page, cmd.Num, cmd.PositiveOrder)
	if err != nil {
		return nil, err
	}
	contributions, total, err := s.ledger.GetContributions(context.Background(), address, page, num, order)
	if err != nil {
		return nil, err
	}

	res := make([]*pooljson.ContributionResult, 0, len(contributions))
	for _, c := range contributions {
		res = append(res, &pooljson.ContributionResult{
			Sender:   c.Sender.Hex(),
			CreditTo: c.CreditTo.Hex(),
			Amount:   model.FormatAmount(c.Amount),
			Epoch:    c.Epoch,
			Height:   c.Height,
			Time:     c.Time.Unix(),
		})
	}
	return &pooljson.GetContributionsResult{
		Total:         total,
		Contributions: res,
	}, nil
}

// handleGetRedemptions implements the getredemptions command.
func handleGetRedemptions(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*pooljson.GetRedemptionsCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	address, err := parseAddressParam("address", cmd.Address)
	if err != nil {
		return nil, err
	}
	page, num, order, err := pageParams(cmd.Page, cmd.Num, cmd.PositiveOrder)
	if err != nil {
		return nil, err
	}
	redemptions, total, err := s.ledger.GetRedemptions(context.Background(), address, page, num, order)
	if err != nil {
		return nil, err
	}

	res := make([]*pooljson.RedemptionResult, 0, len(redemptions))
	for _, r := range redemptions {
		res = append(res, &pooljson.RedemptionResult{
			Address:       r.Address.Hex(),
			Gross:         model.FormatAmount(r.Gross),
			Fee:           model.FormatAmount(r.Fee),
			FeeBankAmount: model.FormatAmount(r.FeeBankAmount),
			Net:           model.FormatAmount(r.Net),
			ThroughEpoch:  r.ThroughEpoch,
			Height:        r.Height,
			Time:          r.Time.Unix(),
		})
	}
	return &pooljson.GetRedemptionsResult{
		Total:       total,
		Redemptions: res,
	}, nil
}
