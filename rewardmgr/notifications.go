package rewardmgr

import "fmt"

// NotificationType represents the type of a notification message.
type NotificationType int

// Constants for the type of a notification message.
const (
	// NTWindowOpened indicates a new mining window has started, the data
	// is a *WindowOpened.
	NTWindowOpened NotificationType = iota
	// NTWindowResolved indicates an attempted window was claimed, the data
	// is a *ledger.ClaimResult.
	NTWindowResolved
)

// notificationTypeStrings is a map of notification types back to their constant
// names for pretty printing.
var notificationTypeStrings = map[NotificationType]string{
	NTWindowOpened:   "NTWindowOpened",
	NTWindowResolved: "NTWindowResolved",
}

// String returns the NotificationType in human-readable form.
func (n NotificationType) String() string {
	if s, ok := notificationTypeStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown Notification Type (%d)", int(n))
}

// NotificationCallback is used for a caller to provide a callback for
// notifications about window events.
type NotificationCallback func(*Notification)

// Notification defines notification that is sent to the caller via the callback
// function provided during the call to Subscribe and consists of a notification
// type as well as associated data.
type Notification struct {
	Type NotificationType
	Data interface{}
}

// WindowOpened is the data of a NTWindowOpened notification.
type WindowOpened struct {
	Window    uint64
	Epoch     uint64
	Attempted bool
}
