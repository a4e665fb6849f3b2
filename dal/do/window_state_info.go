package do

import "time"

type WindowStateInfo struct {
	ID           uint64 `gorm:"primaryKey"`
	WindowIndex  int64  `gorm:"uniqueIndex:unique_idx_window_index;not null"`
	Epoch        int64  `gorm:"index:idx_window_epoch;not null"`
	Attempted    int    `gorm:"default:0;not null"`
	Claimed      int    `gorm:"default:0;not null"`
	Won          int    `gorm:"default:0;not null"`
	AttemptValue string `gorm:"type:varchar(80);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
