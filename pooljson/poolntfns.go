package pooljson

const (
	// WindowOpenedNtfnMethod is the method used for notifications from
	// the pool server that a new mining window has opened.
	WindowOpenedNtfnMethod = "windowopened"

	// WindowResolvedNtfnMethod is the method used for notifications from
	// the pool server that an attempted window was claimed.
	WindowResolvedNtfnMethod = "windowresolved"
)

// WindowOpenedNtfn defines the windowopened JSON-RPC notification.
type WindowOpenedNtfn struct {
	Window    uint64
	Epoch     uint64
	Attempted bool
}

// NewWindowOpenedNtfn returns a new instance which can be used to issue a
// windowopened JSON-RPC notification.
func NewWindowOpenedNtfn(window uint64, epoch uint64, attempted bool) *WindowOpenedNtfn {
	return &WindowOpenedNtfn{
		Window:    window,
		Epoch:     epoch,
		Attempted: attempted,
	}
}

// WindowResolvedNtfn defines the windowresolved JSON-RPC notification.
type WindowResolvedNtfn struct {
	Window uint64
	Epoch  uint64
	Won    bool
}

// NewWindowResolvedNtfn returns a new instance which can be used to issue a
// windowresolved JSON-RPC notification.
func NewWindowResolvedNtfn(window uint64, epoch uint64, won bool) *WindowResolvedNtfn {
	return &WindowResolvedNtfn{
		Window: window,
		Epoch:  epoch,
		Won:    won,
	}
}

func init() {
	// The commands in this file are only usable by websockets and are
	// notifications.
	flags := UFWebsocketOnly | UFNotification

	MustRegisterCmd(WindowOpenedNtfnMethod, (*WindowOpenedNtfn)(nil), flags)
	MustRegisterCmd(WindowResolvedNtfnMethod, (*WindowResolvedNtfn)(nil), flags)
}
