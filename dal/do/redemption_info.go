package do

import "time"

type RedemptionInfo struct {
	ID            uint64 `gorm:"primaryKey"`
	Address       string `gorm:"index:idx_redemption_address;type:varchar(42);not null"`
	Gross         string `gorm:"type:varchar(80);not null"`
	Fee           string `gorm:"type:varchar(80);not null"`
	FeeBankAmount string `gorm:"type:varchar(80);not null"`
	Net           string `gorm:"type:varchar(80);not null"`
	ThroughEpoch  int64  `gorm:"default:0;not null"`
	Height        int64  `gorm:"default:0;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
