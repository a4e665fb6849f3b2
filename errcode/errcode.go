package errcode

import (
	"errors"
	"fmt"
)

// Kind groups ledger failures by the way a caller is expected to react to
// them.
type Kind int

const (
	// KindValidation means the request itself was rejected (bad amount,
	// wrong caller, paused pool).
	KindValidation Kind = iota + 1

	// KindState means the request was well formed but the ledger state
	// does not permit it yet, or any more.
	KindState

	// KindExternalCall means a call to the reward source or reward token
	// failed.
	KindExternalCall
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindExternalCall:
		return "external call"
	}
	return fmt.Sprintf("unknown kind %d", int(k))
}

// Error is the error type returned by the ledger.  Two errors are considered
// equal by errors.Is when their codes match, so a returned error that carries
// extra description or a wrapped cause still matches its sentinel.
type Error struct {
	Kind        Kind
	Code        int
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Description, e.Err)
	}
	return e.Description
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements the interface used by errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDescription returns a copy of e carrying a more specific description.
func (e *Error) WithDescription(format string, args ...interface{}) *Error {
	return &Error{
		Kind:        e.Kind,
		Code:        e.Code,
		Description: fmt.Sprintf(format, args...),
		Err:         e.Err,
	}
}

func newError(kind Kind, code int, desc string) *Error {
	return &Error{Kind: kind, Code: code, Description: desc}
}

var ErrNilGormDB = errors.New("nil gorm db")

// Validation errors.
var (
	ErrPoolPaused        = newError(KindValidation, 600, "pool is paused")
	ErrBelowMinimum      = newError(KindValidation, 601, "contribution below minimum")
	ErrCapExceeded       = newError(KindValidation, 602, "contribution cap exceeded")
	ErrNotOwner          = newError(KindValidation, 603, "caller is not the pool owner")
	ErrInvalidPercentage = newError(KindValidation, 604, "percentage must be between 0 and 100")
	ErrInvalidAmount     = newError(KindValidation, 605, "invalid amount")
	ErrInvalidAddress    = newError(KindValidation, 606, "invalid address")
)

// State errors.
var (
	ErrAlreadyAttempted = newError(KindState, 700, "window already attempted")
	ErrNotMature        = newError(KindState, 701, "window not mature")
	ErrNotAttempted     = newError(KindState, 702, "window not attempted")
	ErrAlreadyClaimed   = newError(KindState, 703, "window already claimed")
	ErrNothingToRedeem  = newError(KindState, 704, "nothing to redeem")
)

// External call errors.
var (
	ErrExternalCallFailed = newError(KindExternalCall, 800, "external call failed")
)

// ExternalCall wraps err, returned by the named collaborator operation, into
// an error matching ErrExternalCallFailed.
func ExternalCall(op string, err error) *Error {
	return &Error{
		Kind:        KindExternalCall,
		Code:        ErrExternalCallFailed.Code,
		Description: op + " failed",
		Err:         err,
	}
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsValidationError(err error) bool {
	return kindOf(err) == KindValidation
}

func IsStateError(err error) bool {
	return kindOf(err) == KindState
}

func IsExternalCallError(err error) bool {
	return kindOf(err) == KindExternalCall
}
