package do

import "time"

type EpochRecordInfo struct {
	ID              uint64 `gorm:"primaryKey"`
	Epoch           int64  `gorm:"uniqueIndex:unique_idx_epoch;not null"`
	MinedWindows    int64  `gorm:"default:0;not null"`
	ClaimedWindows  int64  `gorm:"default:0;not null"`
	ResolvedWindows int64  `gorm:"default:0;not null"` // claimed, won or missed
	TotalAttempt    string `gorm:"type:varchar(80);not null"`
	TotalClaimed    string `gorm:"type:varchar(80);not null"`
	TotalStake      string `gorm:"type:varchar(80);not null"`
	Unit            string `gorm:"type:varchar(80);not null"` // attempt value of the first mined window
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
