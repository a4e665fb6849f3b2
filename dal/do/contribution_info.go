package do

import "time"

type ContributionInfo struct {
	ID        uint64 `gorm:"primaryKey"`
	Sender    string `gorm:"type:varchar(42);not null"`
	CreditTo  string `gorm:"index:idx_contribution_credit_to;type:varchar(42);not null"`
	Amount    string `gorm:"type:varchar(80);not null"`
	Epoch     int64  `gorm:"default:0;not null"`
	Height    int64  `gorm:"default:0;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
