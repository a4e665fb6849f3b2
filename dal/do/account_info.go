package do

import "time"

// AccountInfo is one ledger participant.  Amount columns hold base-10
// integer strings.
type AccountInfo struct {
	ID      uint64 `gorm:"primaryKey"`
	Address string `gorm:"uniqueIndex:unique_idx_account_address;type:varchar(42);not null"`
	// EpochIndex is the epoch of the account's latest contribution.
	EpochIndex int64 `gorm:"default:0;not null"`
	// RedeemedThroughEpoch is the last epoch whose share has been settled
	// into the pending amounts, -1 if none.
	RedeemedThroughEpoch int64 `gorm:"not null"`
	// PendingNet and PendingFee are settled but not yet paid out.
	PendingNet string `gorm:"type:varchar(80);not null"`
	PendingFee string `gorm:"type:varchar(80);not null"`
	// RedeemedTotal is the net amount paid to the account so far.
	RedeemedTotal string `gorm:"type:varchar(80);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
