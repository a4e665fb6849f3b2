package poolserver

import (
	"context"
	"fmt"
	"math/big"

	"github.com/abesuite/gaopool/chaincfg"
	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/pooljson"
	"github.com/abesuite/gaopool/utils"

	"github.com/ethereum/go-ethereum/common"
)

// handleVersion implements the version command.
func handleVersion(s *PoolServer, cmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	result := map[string]pooljson.VersionResult{
		"gaopoold": {
			VersionString: chaincfg.PoolBackendVersion,
		},
	}
	return result, nil
}

// handleGetPoolInfo implements the getpoolinfo command.
func handleGetPoolInfo(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	_, ok := icmd.(*pooljson.GetPoolInfoCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	cfg, err := s.ledger.PoolConfig(context.Background())
	if err != nil {
		return nil, err
	}
	result := &pooljson.GetPoolInfoResult{
		Name:                chaincfg.PoolName,
		Version:             chaincfg.PoolBackendVersion,
		Network:             s.cfg.Network,
		Owner:               cfg.Owner.Hex(),
		PoolAddress:         cfg.PoolAddress.Hex(),
		RewardSourceAddress: cfg.RewardSourceAddress.Hex(),
		FeePercentage:       cfg.FeePercentage,
		FeeBankPercentage:   cfg.FeeBankPercentage,
		MaxContribution:     model.FormatAmount(cfg.MaxContribution),
		Paused:              cfg.Paused,
		WindowSize:          s.ledger.WindowSize(),
		EpochLength:         s.ledger.EpochLength(),
		MinContribution:     model.FormatAmount(s.ledger.MinContribution()),
		BlockReward:         model.FormatAmount(s.ledger.BlockReward()),
	}
	if cfg.HasFeeBank() {
		result.FeeBankAddress = cfg.FeeBankAddress.Hex()
	}
	return result, nil
}

// handleGetWindowInfo implements the getwindowinfo command.
func handleGetWindowInfo(s *PoolServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	_, ok := icmd.(*pooljson.GetWindowInfoCmd)
	if !ok {
		return nil, pooljson.ErrRPCInternal
	}

	height, err := s.ledger.RewardSource().CurrentHeight(context.Background())
	if err != nil {
		return nil, errcode.ExternalCall("query current height", err)
	}
	clock := s.ledger.Clock()
	window := clock.WindowOf(height)
	return &pooljson.GetWindowInfoResult{
		Height:                height,
		Window:                window,
		Epoch:                 clock.EpochOf(window),
		RemainingEpochWindows: clock.RemainingEpochWindows(window),
	}, nil
}

// parseAddressParam parses a required address parameter.
func parseAddressParam(name string, addr string) (common.Address, error) {
	res, err := utils.ParseAddress(addr)
	if err != nil {
		return common.Address{}, pooljson.NewRPCError(pooljson.ErrAddressInvalid.Code,
			fmt.Sprintf("invalid %s: %v", name, err))
	}
	return res, nil
}

// parseOptionalAddressParam parses an optional address parameter, nil or
// blank yields the zero address.
func parseOptionalAddressParam(name string, addr *string) (common.Address, error) {
	if addr == nil {
		return common.Address{}, nil
	}
	res, err := utils.ParseOptionalAddress(*addr)
	if err != nil {
		return common.Address{}, pooljson.NewRPCError(pooljson.ErrAddressInvalid.Code,
			fmt.Sprintf("invalid %s: %v", name, err))
	}
	return res, nil
}

func parseAmountParam(amount string) (*big.Int, error) {
	res, err := model.ParseAmount(amount)
	if err != nil || amount == "" {
		return nil, pooljson.NewRPCError(pooljson.ErrAmountInvalid.Code,
			fmt.Sprintf("invalid amount %q", amount))
	}
	return res, nil
}
