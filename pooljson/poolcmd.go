package pooljson

// VersionCmd defines the version JSON-RPC command.
type VersionCmd struct{}

// NewVersionCmd returns a new instance which can be used to issue a JSON-RPC
// version command.
func NewVersionCmd() *VersionCmd { return new(VersionCmd) }

// AuthenticateCmd defines the authenticate JSON-RPC command.
// used in RPC authentication
type AuthenticateCmd struct {
	Username   string
	Passphrase string
}

// NewAuthenticateCmd returns a new instance which can be used to issue an
// authenticate JSON-RPC command.
func NewAuthenticateCmd(username, passphrase string) *AuthenticateCmd {
	return &AuthenticateCmd{
		Username:   username,
		Passphrase: passphrase,
	}
}

// GetPoolInfoCmd defines the getpoolinfo JSON-RPC command.
type GetPoolInfoCmd struct{}

func NewGetPoolInfoCmd() *GetPoolInfoCmd {
	return &GetPoolInfoCmd{}
}

// GetWindowInfoCmd defines the getwindowinfo JSON-RPC command.
type GetWindowInfoCmd struct{}

func NewGetWindowInfoCmd() *GetWindowInfoCmd {
	return &GetWindowInfoCmd{}
}

// DepositCmd defines the deposit JSON-RPC command.  Amount is a decimal
// string in the smallest unit, CreditTo defaults to Sender.
type DepositCmd struct {
	Sender   string `json:"sender"`
	Amount   string `json:"amount"`
	CreditTo *string
}

// NewDepositCmd returns a new instance which can be used to issue a deposit
// JSON-RPC command.
func NewDepositCmd(sender string, amount string, creditTo *string) *DepositCmd {
	return &DepositCmd{
		Sender:   sender,
		Amount:   amount,
		CreditTo: creditTo,
	}
}

// RedeemCmd defines the redeem JSON-RPC command.
type RedeemCmd struct {
	Address string `json:"address"`
}

func NewRedeemCmd(address string) *RedeemCmd {
	return &RedeemCmd{
		Address: address,
	}
}

// MineCmd defines the mine JSON-RPC command.
type MineCmd struct{}

func NewMineCmd() *MineCmd {
	return &MineCmd{}
}

// ClaimCmd defines the claim JSON-RPC command.
type ClaimCmd struct {
	Window   uint64 `json:"window"`
	CreditTo *string
}

// NewClaimCmd returns a new instance which can be used to issue a claim
// JSON-RPC command.
func NewClaimCmd(window uint64, creditTo *string) *ClaimCmd {
	return &ClaimCmd{
		Window:   window,
		CreditTo: creditTo,
	}
}

// SetFeePercentageCmd defines the setfeepercentage JSON-RPC command.
type SetFeePercentageCmd struct {
	Caller     string `json:"caller"`
	Percentage uint64 `json:"percentage"`
}

func NewSetFeePercentageCmd(caller string, percentage uint64) *SetFeePercentageCmd {
	return &SetFeePercentageCmd{
		Caller:     caller,
		Percentage: percentage,
	}
}

// SetPausedCmd defines the setpaused JSON-RPC command.
type SetPausedCmd struct {
	Caller string `json:"caller"`
	Paused bool   `json:"paused"`
}

func NewSetPausedCmd(caller string, paused bool) *SetPausedCmd {
	return &SetPausedCmd{
		Caller: caller,
		Paused: paused,
	}
}

// SetMaxContributionCmd defines the setmaxcontribution JSON-RPC command.
// An amount of "0" removes the cap.
type SetMaxContributionCmd struct {
	Caller string `json:"caller"`
	Amount string `json:"amount"`
}

func NewSetMaxContributionCmd(caller string, amount string) *SetMaxContributionCmd {
	return &SetMaxContributionCmd{
		Caller: caller,
		Amount: amount,
	}
}

// SetFeeBankCmd defines the setfeebank JSON-RPC command.
type SetFeeBankCmd struct {
	Caller     string `json:"caller"`
	Bank       string `json:"bank"`
	Percentage uint64 `json:"percentage"`
}

func NewSetFeeBankCmd(caller string, bank string, percentage uint64) *SetFeeBankCmd {
	return &SetFeeBankCmd{
		Caller:     caller,
		Bank:       bank,
		Percentage: percentage,
	}
}

// SetRewardSourceCmd defines the setrewardsource JSON-RPC command.
type SetRewardSourceCmd struct {
	Caller  string `json:"caller"`
	Address string `json:"address"`
}

func NewSetRewardSourceCmd(caller string, address string) *SetRewardSourceCmd {
	return &SetRewardSourceCmd{
		Caller:  caller,
		Address: address,
	}
}

// SetOwnerCmd defines the setowner JSON-RPC command.
type SetOwnerCmd struct {
	Caller   string `json:"caller"`
	NewOwner string `json:"new_owner"`
}

func NewSetOwnerCmd(caller string, newOwner string) *SetOwnerCmd {
	return &SetOwnerCmd{
		Caller:   caller,
		NewOwner: newOwner,
	}
}

// FindContributionCmd defines the findcontribution JSON-RPC command.
type FindContributionCmd struct {
	Address string `json:"address"`
}

func NewFindContributionCmd(address string) *FindContributionCmd {
	return &FindContributionCmd{
		Address: address,
	}
}

// BalanceOfCmd defines the balanceof JSON-RPC command.
type BalanceOfCmd struct {
	Address string `json:"address"`
}

func NewBalanceOfCmd(address string) *BalanceOfCmd {
	return &BalanceOfCmd{
		Address: address,
	}
}

// GetEpochRecordCmd defines the getepochrecord JSON-RPC command.  A nil
// epoch means the current one.
type GetEpochRecordCmd struct {
	Epoch *uint64
}

func NewGetEpochRecordCmd(epoch *uint64) *GetEpochRecordCmd {
	return &GetEpochRecordCmd{
		Epoch: epoch,
	}
}

// CheckMiningAttemptCmd defines the checkminingattempt JSON-RPC command.
type CheckMiningAttemptCmd struct {
	Window uint64 `json:"window"`
}

func NewCheckMiningAttemptCmd(window uint64) *CheckMiningAttemptCmd {
	return &CheckMiningAttemptCmd{
		Window: window,
	}
}

// CheckWinningCmd defines the checkwinning JSON-RPC command.
type CheckWinningCmd struct {
	Window uint64 `json:"window"`
}

func NewCheckWinningCmd(window uint64) *CheckWinningCmd {
	return &CheckWinningCmd{
		Window: window,
	}
}

// GetWindowStateCmd defines the getwindowstate JSON-RPC command.
type GetWindowStateCmd struct {
	Window uint64 `json:"window"`
}

func NewGetWindowStateCmd(window uint64) *GetWindowStateCmd {
	return &GetWindowStateCmd{
		Window: window,
	}
}

// GetContributionsCmd defines the getcontributions JSON-RPC command.
type GetContributionsCmd struct {
	Address       string `json:"address"`
	Page          *int   `json:"page" jsonrpcdefault:"1"`
	Num           *int   `json:"num" jsonrpcdefault:"20"`
	PositiveOrder *bool  `json:"positive_order" jsonrpcdefault:"false"`
}

func NewGetContributionsCmd(address string, page *int, num *int, positiveOrder *bool) *GetContributionsCmd {
	return &GetContributionsCmd{
		Address:       address,
		Page:          page,
		Num:           num,
		PositiveOrder: positiveOrder,
	}
}

// GetRedemptionsCmd defines the getredemptions JSON-RPC command.
type GetRedemptionsCmd struct {
	Address       string `json:"address"`
	Page          *int   `json:"page" jsonrpcdefault:"1"`
	Num           *int   `json:"num" jsonrpcdefault:"20"`
	PositiveOrder *bool  `json:"positive_order" jsonrpcdefault:"false"`
}

func NewGetRedemptionsCmd(address string, page *int, num *int, positiveOrder *bool) *GetRedemptionsCmd {
	return &GetRedemptionsCmd{
		Address:       address,
		Page:          page,
		Num:           num,
		PositiveOrder: positiveOrder,
	}
}

// NotifyWindowsCmd defines the notifywindows JSON-RPC command.  Websocket
// clients use it to receive window notifications.
type NotifyWindowsCmd struct{}

func NewNotifyWindowsCmd() *NotifyWindowsCmd {
	return &NotifyWindowsCmd{}
}

// StopNotifyWindowsCmd defines the stopnotifywindows JSON-RPC command.
type StopNotifyWindowsCmd struct{}

func NewStopNotifyWindowsCmd() *StopNotifyWindowsCmd {
	return &StopNotifyWindowsCmd{}
}

func init() {
	// No special flags for commands in this file.
	flags := UsageFlag(0)

	// Common command
	MustRegisterCmd("version", (*VersionCmd)(nil), flags)
	MustRegisterCmd("authenticate", (*AuthenticateCmd)(nil), UFWebsocketOnly)
	MustRegisterCmd("getpoolinfo", (*GetPoolInfoCmd)(nil), flags)
	MustRegisterCmd("getwindowinfo", (*GetWindowInfoCmd)(nil), flags)

	// Ledger command
	MustRegisterCmd("deposit", (*DepositCmd)(nil), flags)
	MustRegisterCmd("redeem", (*RedeemCmd)(nil), flags)
	MustRegisterCmd("mine", (*MineCmd)(nil), flags)
	MustRegisterCmd("claim", (*ClaimCmd)(nil), flags)

	// Admin command
	MustRegisterCmd("setfeepercentage", (*SetFeePercentageCmd)(nil), flags)
	MustRegisterCmd("setpaused", (*SetPausedCmd)(nil), flags)
	MustRegisterCmd("setmaxcontribution", (*SetMaxContributionCmd)(nil), flags)
	MustRegisterCmd("setfeebank", (*SetFeeBankCmd)(nil), flags)
	MustRegisterCmd("setrewardsource", (*SetRewardSourceCmd)(nil), flags)
	MustRegisterCmd("setowner", (*SetOwnerCmd)(nil), flags)

	// Query command
	MustRegisterCmd("findcontribution", (*FindContributionCmd)(nil), flags)
	MustRegisterCmd("balanceof", (*BalanceOfCmd)(nil), flags)
	MustRegisterCmd("getepochrecord", (*GetEpochRecordCmd)(nil), flags)
	MustRegisterCmd("checkminingattempt", (*CheckMiningAttemptCmd)(nil), flags)
	MustRegisterCmd("checkwinning", (*CheckWinningCmd)(nil), flags)
	MustRegisterCmd("getwindowstate", (*GetWindowStateCmd)(nil), flags)
	MustRegisterCmd("getcontributions", (*GetContributionsCmd)(nil), flags)
	MustRegisterCmd("getredemptions", (*GetRedemptionsCmd)(nil), flags)

	// Websocket command
	MustRegisterCmd("notifywindows", (*NotifyWindowsCmd)(nil), UFWebsocketOnly)
	MustRegisterCmd("stopnotifywindows", (*StopNotifyWindowsCmd)(nil), UFWebsocketOnly)
}
