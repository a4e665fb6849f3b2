package model

import "math/big"

// EpochRecord is the attempt and reward totals of one epoch.
type EpochRecord struct {
	Epoch           uint64   `json:"epoch"`
	MinedWindows    uint64   `json:"minedwindows"`
	ClaimedWindows  uint64   `json:"claimedwindows"`
	ResolvedWindows uint64   `json:"resolvedwindows"`
	TotalAttempt    *big.Int `json:"totalattempt"`
	TotalClaimed    *big.Int `json:"totalclaimed"`
	TotalStake      *big.Int `json:"totalstake"`
	Unit            *big.Int `json:"unit"`
}

// NewEpochRecord returns an empty record of epoch.
func NewEpochRecord(epoch uint64) *EpochRecord {
	return &EpochRecord{
		Epoch:        epoch,
		TotalAttempt: new(big.Int),
		TotalClaimed: new(big.Int),
		TotalStake:   new(big.Int),
		Unit:         new(big.Int),
	}
}

// Finalized reports whether every mined window of the epoch is resolved.
func (e *EpochRecord) Finalized() bool {
	return e.ResolvedWindows >= e.MinedWindows
}

type WindowState struct {
	Window       uint64   `json:"window"`
	Epoch        uint64   `json:"epoch"`
	Attempted    bool     `json:"attempted"`
	Claimed      bool     `json:"claimed"`
	Won          bool     `json:"won"`
	AttemptValue *big.Int `json:"attemptvalue"`
}
