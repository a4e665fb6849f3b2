package utils

// WindowClock maps external chain heights onto mining windows and epochs.
// All functions are total over uint64, including math.MaxUint64.
type WindowClock struct {
	WindowSize  uint64
	EpochLength uint64
}

func NewWindowClock(windowSize uint64, epochLength uint64) *WindowClock {
	if windowSize == 0 {
		windowSize = 1
	}
	if epochLength == 0 {
		epochLength = 1
	}
	return &WindowClock{
		WindowSize:  windowSize,
		EpochLength: epochLength,
	}
}

// WindowOf returns floor(height / WindowSize).
func (c *WindowClock) WindowOf(height uint64) uint64 {
	return height / c.WindowSize
}

// EpochOf returns floor(window / EpochLength).
func (c *WindowClock) EpochOf(window uint64) uint64 {
	return window / c.EpochLength
}

func (c *WindowClock) EpochOfHeight(height uint64) uint64 {
	return c.EpochOf(c.WindowOf(height))
}

// EpochStartWindow returns the first window of the given epoch, saturating
// at the largest representable window.
func (c *WindowClock) EpochStartWindow(epoch uint64) uint64 {
	if epoch > ^uint64(0)/c.EpochLength {
		return ^uint64(0)
	}
	return epoch * c.EpochLength
}

// RemainingEpochWindows returns the number of windows, the given one
// included, left in the epoch containing window.
func (c *WindowClock) RemainingEpochWindows(window uint64) uint64 {
	return c.EpochLength - window%c.EpochLength
}

// IsMature reports whether window can be settled at currentWindow, that is
// whether the window has fully elapsed.
func (c *WindowClock) IsMature(window uint64, currentWindow uint64) bool {
	return currentWindow > window
}
