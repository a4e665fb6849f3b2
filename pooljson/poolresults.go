package pooljson

// Amounts in results are decimal strings in the smallest unit and addresses
// are 0x prefixed hex strings.

// VersionResult models objects included in the version response.  In the actual
// result, these objects are keyed by the program or API name.
type VersionResult struct {
	VersionString string `json:"version,omitempty"`
	Major         uint32 `json:"major,omitempty"`
	Minor         uint32 `json:"minor,omitempty"`
	Patch         uint32 `json:"patch,omitempty"`
	Prerelease    string `json:"prerelease,omitempty"`
	BuildMetadata string `json:"buildmetadata,omitempty"`
}

type CommonResult struct {
	Success bool `json:"success"`
}

// GetPoolInfoResult models the data from the getpoolinfo command.
type GetPoolInfoResult struct {
	Name                string `json:"name"`
	Version             string `json:"version"`
	Network             string `json:"network"`
	Owner               string `json:"owner"`
	PoolAddress         string `json:"pool_address"`
	RewardSourceAddress string `json:"reward_source_address"`
	FeePercentage       uint64 `json:"fee_percentage"`
	FeeBankAddress      string `json:"fee_bank_address,omitempty"`
	FeeBankPercentage   uint64 `json:"fee_bank_percentage"`
	MaxContribution     string `json:"max_contribution"`
	Paused              bool   `json:"paused"`
	WindowSize          uint64 `json:"window_size"`
	EpochLength         uint64 `json:"epoch_length"`
	MinContribution     string `json:"min_contribution"`
	BlockReward         string `json:"block_reward"`
}

// GetWindowInfoResult models the data from the getwindowinfo command.
type GetWindowInfoResult struct {
	Height                uint64 `json:"height"`
	Window                uint64 `json:"window"`
	Epoch                 uint64 `json:"epoch"`
	RemainingEpochWindows uint64 `json:"remaining_epoch_windows"`
}

// RedeemResult models the data from the redeem command.  Redeemed is false
// when there was nothing to pay and the pool treats that as a no-op.
type RedeemResult struct {
	Redeemed      bool   `json:"redeemed"`
	Address       string `json:"address"`
	Gross         string `json:"gross"`
	Fee           string `json:"fee"`
	FeeBankAmount string `json:"fee_bank_amount"`
	Net           string `json:"net"`
	ThroughEpoch  int64  `json:"through_epoch"`
}

// MineResult models the data from the mine command.
type MineResult struct {
	Window       uint64 `json:"window"`
	Epoch        uint64 `json:"epoch"`
	Attempted    bool   `json:"attempted"`
	Total        string `json:"total"`
	Participants int    `json:"participants"`
}

// ClaimResult models the data from the claim command.
type ClaimResult struct {
	Window uint64 `json:"window"`
	Epoch  uint64 `json:"epoch"`
	Won    bool   `json:"won"`
}

// FindContributionResult models the data from the findcontribution command.
type FindContributionResult struct {
	Address             string `json:"address"`
	EpochIndex          uint64 `json:"epoch_index"`
	PerWindowAllocation string `json:"per_window_allocation"`
	Stake               string `json:"stake"`
	CommittedAttempt    string `json:"committed_attempt"`
	UncommittedBalance  string `json:"uncommitted_balance"`
	Redeemable          string `json:"redeemable"`
	RedeemedTotal       string `json:"redeemed_total"`
}

// BalanceOfResult models the data from the balanceof command.
type BalanceOfResult struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

// GetEpochRecordResult models the data from the getepochrecord command.
type GetEpochRecordResult struct {
	Epoch           uint64 `json:"epoch"`
	MinedWindows    uint64 `json:"mined_windows"`
	ClaimedWindows  uint64 `json:"claimed_windows"`
	ResolvedWindows uint64 `json:"resolved_windows"`
	TotalAttempt    string `json:"total_attempt"`
	TotalClaimed    string `json:"total_claimed"`
	TotalStake      string `json:"total_stake"`
	Unit            string `json:"unit"`
	Finalized       bool   `json:"finalized"`
}

type CheckMiningAttemptResult struct {
	Window    uint64 `json:"window"`
	Attempted bool   `json:"attempted"`
}

type CheckWinningResult struct {
	Window uint64 `json:"window"`
	Won    bool   `json:"won"`
}

// GetWindowStateResult models the data from the getwindowstate command.
type GetWindowStateResult struct {
	Window       uint64 `json:"window"`
	Epoch        uint64 `json:"epoch"`
	Attempted    bool   `json:"attempted"`
	Claimed      bool   `json:"claimed"`
	Won          bool   `json:"won"`
	AttemptValue string `json:"attempt_value"`
}

type ContributionResult struct {
	Sender   string `json:"sender"`
	CreditTo string `json:"credit_to"`
	Amount   string `json:"amount"`
	Epoch    uint64 `json:"epoch"`
	Height   uint64 `json:"height"`
	Time     int64  `json:"time"`
}

// GetContributionsResult models the data from the getcontributions command.
type GetContributionsResult struct {
	Total         int64                 `json:"total"`
	Contributions []*ContributionResult `json:"contributions"`
}

type RedemptionResult struct {
	Address       string `json:"address"`
	Gross         string `json:"gross"`
	Fee           string `json:"fee"`
	FeeBankAmount string `json:"fee_bank_amount"`
	Net           string `json:"net"`
	ThroughEpoch  int64  `json:"through_epoch"`
	Height        uint64 `json:"height"`
	Time          int64  `json:"time"`
}

// GetRedemptionsResult models the data from the getredemptions command.
type GetRedemptionsResult struct {
	Total       int64               `json:"total"`
	Redemptions []*RedemptionResult `json:"redemptions"`
}
