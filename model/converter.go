package model

import (
	"fmt"

	"github.com/abesuite/gaopool/dal/do"

	"github.com/ethereum/go-ethereum/common"
)

func ConvertAccountToDO(account *Account) *do.AccountInfo {
	if account == nil {
		return nil
	}
	return &do.AccountInfo{
		Address:              account.Address.Hex(),
		EpochIndex:           int64(account.EpochIndex),
		RedeemedThroughEpoch: account.RedeemedThroughEpoch,
		PendingNet:           FormatAmount(account.PendingNet),
		PendingFee:           FormatAmount(account.PendingFee),
		RedeemedTotal:        FormatAmount(account.RedeemedTotal),
	}
}

func ConvertDOToAccount(info *do.AccountInfo) (*Account, error) {
	if info == nil {
		return nil, nil
	}
	pendingNet, err := ParseAmount(info.PendingNet)
	if err != nil {
		return nil, fmt.Errorf("account %v: %v", info.Address, err)
	}
	pendingFee, err := ParseAmount(info.PendingFee)
	if err != nil {
		return nil, fmt.Errorf("account %v: %v", info.Address, err)
	}
	redeemed, err := ParseAmount(info.RedeemedTotal)
	if err != nil {
		return nil, fmt.Errorf("account %v: %v", info.Address, err)
	}
	return &Account{
		Address:              common.HexToAddress(info.Address),
		EpochIndex:           uint64(info.EpochIndex),
		RedeemedThroughEpoch: info.RedeemedThroughEpoch,
		PendingNet:           pendingNet,
		PendingFee:           pendingFee,
		RedeemedTotal:        redeemed,
		CreatedAt:            info.CreatedAt,
	}, nil
}

// FillAccountDO copies the mutable fields of account into info.
func FillAccountDO(info *do.AccountInfo, account *Account) {
	info.EpochIndex = int64(account.EpochIndex)
	info.RedeemedThroughEpoch = account.RedeemedThroughEpoch
	info.PendingNet = FormatAmount(account.PendingNet)
	info.PendingFee = FormatAmount(account.PendingFee)
	info.RedeemedTotal = FormatAmount(account.RedeemedTotal)
}

func ConvertStakeToDO(stake *Stake) *do.StakeInfo {
	if stake == nil {
		return nil
	}
	return &do.StakeInfo{
		Address:             stake.Address.Hex(),
		Epoch:               int64(stake.Epoch),
		Stake:               FormatAmount(stake.Stake),
		PerWindowAllocation: FormatAmount(stake.PerWindowAllocation),
		CommittedAttempt:    FormatAmount(stake.CommittedAttempt),
		UncommittedBalance:  FormatAmount(stake.UncommittedBalance),
	}
}

func ConvertDOToStake(info *do.StakeInfo) (*Stake, error) {
	if info == nil {
		return nil, nil
	}
	parsed, err := parseAmounts(info.Stake, info.PerWindowAllocation, info.CommittedAttempt, info.UncommittedBalance)
	if err != nil {
		return nil, fmt.Errorf("stake of %v in epoch %v: %v", info.Address, info.Epoch, err)
	}
	return &Stake{
		Address:             common.HexToAddress(info.Address),
		Epoch:               uint64(info.Epoch),
		Stake:               parsed[0],
		PerWindowAllocation: parsed[1],
		CommittedAttempt:    parsed[2],
		UncommittedBalance:  parsed[3],
	}, nil
}

// FillStakeDO copies the amounts of stake into info.
func FillStakeDO(info *do.StakeInfo, stake *Stake) {
	info.Stake = FormatAmount(stake.Stake)
	info.PerWindowAllocation = FormatAmount(stake.PerWindowAllocation)
	info.CommittedAttempt = FormatAmount(stake.CommittedAttempt)
	info.UncommittedBalance = FormatAmount(stake.UncommittedBalance)
}

func ConvertEpochRecordToDO(record *EpochRecord) *do.EpochRecordInfo {
	if record == nil {
		return nil
	}
	info := &do.EpochRecordInfo{Epoch: int64(record.Epoch)}
	FillEpochRecordDO(info, record)
	return info
}

func FillEpochRecordDO(info *do.EpochRecordInfo, record *EpochRecord) {
	info.MinedWindows = int64(record.MinedWindows)
	info.ClaimedWindows = int64(record.ClaimedWindows)
	info.ResolvedWindows = int64(record.ResolvedWindows)
	info.TotalAttempt = FormatAmount(record.TotalAttempt)
	info.TotalClaimed = FormatAmount(record.TotalClaimed)
	info.TotalStake = FormatAmount(record.TotalStake)
	info.Unit = FormatAmount(record.Unit)
}

func ConvertDOToEpochRecord(info *do.EpochRecordInfo) (*EpochRecord, error) {
	if info == nil {
		return nil, nil
	}
	parsed, err := parseAmounts(info.TotalAttempt, info.TotalClaimed, info.TotalStake, info.Unit)
	if err != nil {
		return nil, fmt.Errorf("epoch record %v: %v", info.Epoch, err)
	}
	return &EpochRecord{
		Epoch:           uint64(info.Epoch),
		MinedWindows:    uint64(info.MinedWindows),
		ClaimedWindows:  uint64(info.ClaimedWindows),
		ResolvedWindows: uint64(info.ResolvedWindows),
		TotalAttempt:    parsed[0],
		TotalClaimed:    parsed[1],
		TotalStake:      parsed[2],
		Unit:            parsed[3],
	}, nil
}

func ConvertDOToWindowState(info *do.WindowStateInfo) (*WindowState, error) {
	if info == nil {
		return nil, nil
	}
	value, err := ParseAmount(info.AttemptValue)
	if err != nil {
		return nil, fmt.Errorf("window %v: %v", info.WindowIndex, err)
	}
	return &WindowState{
		Window:       uint64(info.WindowIndex),
		Epoch:        uint64(info.Epoch),
		Attempted:    info.Attempted == 1,
		Claimed:      info.Claimed == 1,
		Won:          info.Won == 1,
		AttemptValue: value,
	}, nil
}

func ConvertWindowStateToDO(state *WindowState) *do.WindowStateInfo {
	if state == nil {
		return nil
	}
	return &do.WindowStateInfo{
		WindowIndex:  int64(state.Window),
		Epoch:        int64(state.Epoch),
		Attempted:    boolToInt(state.Attempted),
		Claimed:      boolToInt(state.Claimed),
		Won:          boolToInt(state.Won),
		AttemptValue: FormatAmount(state.AttemptValue),
	}
}

func ConvertPoolConfigToDO(cfg *PoolConfig) *do.PoolConfigInfo {
	if cfg == nil {
		return nil
	}
	info := &do.PoolConfigInfo{ID: 1}
	FillPoolConfigDO(info, cfg)
	return info
}

func FillPoolConfigDO(info *do.PoolConfigInfo, cfg *PoolConfig) {
	info.Owner = cfg.Owner.Hex()
	info.PoolAddress = cfg.PoolAddress.Hex()
	info.RewardSourceAddress = cfg.RewardSourceAddress.Hex()
	info.FeePercentage = int(cfg.FeePercentage)
	info.FeeBankAddress = cfg.FeeBankAddress.Hex()
	info.FeeBankPercentage = int(cfg.FeeBankPercentage)
	info.MaxContribution = FormatAmount(cfg.MaxContribution)
	info.Paused = boolToInt(cfg.Paused)
}

func ConvertDOToPoolConfig(info *do.PoolConfigInfo) (*PoolConfig, error) {
	if info == nil {
		return nil, nil
	}
	maxContribution, err := ParseAmount(info.MaxContribution)
	if err != nil {
		return nil, fmt.Errorf("pool config: %v", err)
	}
	return &PoolConfig{
		Owner:               common.HexToAddress(info.Owner),
		PoolAddress:         common.HexToAddress(info.PoolAddress),
		RewardSourceAddress: common.HexToAddress(info.RewardSourceAddress),
		FeePercentage:       uint64(info.FeePercentage),
		FeeBankAddress:      common.HexToAddress(info.FeeBankAddress),
		FeeBankPercentage:   uint64(info.FeeBankPercentage),
		MaxContribution:     maxContribution,
		Paused:              info.Paused == 1,
	}, nil
}

func ConvertContributionToDO(c *Contribution) *do.ContributionInfo {
	if c == nil {
		return nil
	}
	return &do.ContributionInfo{
		Sender:   c.Sender.Hex(),
		CreditTo: c.CreditTo.Hex(),
		Amount:   FormatAmount(c.Amount),
		Epoch:    int64(c.Epoch),
		Height:   int64(c.Height),
	}
}

func ConvertDOToContribution(info *do.ContributionInfo) (*Contribution, error) {
	if info == nil {
		return nil, nil
	}
	amount, err := ParseAmount(info.Amount)
	if err != nil {
		return nil, fmt.Errorf("contribution %v: %v", info.ID, err)
	}
	return &Contribution{
		Sender:   common.HexToAddress(info.Sender),
		CreditTo: common.HexToAddress(info.CreditTo),
		Amount:   amount,
		Epoch:    uint64(info.Epoch),
		Height:   uint64(info.Height),
		Time:     info.CreatedAt,
	}, nil
}

func ConvertRedemptionToDO(r *Redemption) *do.RedemptionInfo {
	if r == nil {
		return nil
	}
	return &do.RedemptionInfo{
		Address:       r.Address.Hex(),
		Gross:         FormatAmount(r.Gross),
		Fee:           FormatAmount(r.Fee),
		FeeBankAmount: FormatAmount(r.FeeBankAmount),
		Net:           FormatAmount(r.Net),
		ThroughEpoch:  r.ThroughEpoch,
		Height:        int64(r.Height),
	}
}

func ConvertDOToRedemption(info *do.RedemptionInfo) (*Redemption, error) {
	if info == nil {
		return nil, nil
	}
	parsed, err := parseAmounts(info.Gross, info.Fee, info.FeeBankAmount, info.Net)
	if err != nil {
		return nil, fmt.Errorf("redemption %v: %v", info.ID, err)
	}
	return &Redemption{
		Address:       common.HexToAddress(info.Address),
		Gross:         parsed[0],
		Fee:           parsed[1],
		FeeBankAmount: parsed[2],
		Net:           parsed[3],
		ThroughEpoch:  info.ThroughEpoch,
		Height:        uint64(info.Height),
		Time:          info.CreatedAt,
	}, nil
}
