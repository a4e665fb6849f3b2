package do

import "time"

// PoolConfigInfo holds the owner controlled settings, there is exactly one
// row with ID 1.
type PoolConfigInfo struct {
	ID                  uint64 `gorm:"primaryKey"`
	Owner               string `gorm:"type:varchar(42);not null"`
	PoolAddress         string `gorm:"type:varchar(42);not null"`
	RewardSourceAddress string `gorm:"type:varchar(42);not null"`
	FeePercentage       int    `gorm:"default:0;not null"`
	FeeBankAddress      string `gorm:"type:varchar(42);not null"`
	FeeBankPercentage   int    `gorm:"default:0;not null"`
	MaxContribution     string `gorm:"type:varchar(80);not null"`
	Paused              int    `gorm:"default:0;not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
