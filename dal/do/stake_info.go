package do

import "time"

// StakeInfo is the contribution of one account within one epoch.  Rows are
// kept after the epoch closes so the committed attempt can be settled later.
type StakeInfo struct {
	ID                  uint64 `gorm:"primaryKey"`
	Address             string `gorm:"uniqueIndex:unique_idx_stake_address_epoch;type:varchar(42);not null"`
	Epoch               int64  `gorm:"uniqueIndex:unique_idx_stake_address_epoch;index:idx_stake_epoch;not null"`
	Stake               string `gorm:"type:varchar(80);not null"`
	PerWindowAllocation string `gorm:"type:varchar(80);not null"`
	CommittedAttempt    string `gorm:"type:varchar(80);not null"`
	UncommittedBalance  string `gorm:"type:varchar(80);not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
