package pooljson

import (
	"errors"

	"github.com/abesuite/gaopool/errcode"
)

// Standard JSON-RPC 2.0 errors.
var (
	ErrRPCInvalidRequest = &RPCError{
		Code:    -32600,
		Message: "Invalid request",
	}
	ErrRPCMethodNotFound = &RPCError{
		Code:    -32601,
		Message: "Method not found",
	}
	ErrRPCInvalidParams = &RPCError{
		Code:    -32602,
		Message: "Invalid parameters",
	}
	ErrRPCInternal = &RPCError{
		Code:    -32603,
		Message: "Internal error",
	}
	ErrRPCParse = &RPCError{
		Code:    -32700,
		Message: "Parse error",
	}
)

var (
	ErrUnauthorized = &RPCError{
		Code:    302,
		Message: "User unauthorized",
	}
	ErrInvalidRequestParams = &RPCError{
		Code:    401,
		Message: "Invalid request params",
	}
	ErrAlreadyAuthorized = &RPCError{
		Code:    402,
		Message: "Already authorized",
	}
	ErrAddressInvalid = &RPCError{
		Code:    407,
		Message: "Address invalid",
	}
	ErrAmountInvalid = &RPCError{
		Code:    408,
		Message: "Amount invalid",
	}
	ErrNotFound = &RPCError{
		Code:    409,
		Message: "Not found",
	}
	ErrInternal = &RPCError{
		Code:    500,
		Message: "Internal error",
	}
)

// General application defined JSON errors.
const (
	ErrRPCMisc             RPCErrorCode = -1
	ErrRPCInvalidParameter RPCErrorCode = -8
	ErrRPCDatabase         RPCErrorCode = -20
)

// Ledger error codes are passed through unchanged: 6xx for rejected
// requests, 7xx for state conflicts and 8xx for failed reward source calls.
const (
	ErrRPCValidationBase   RPCErrorCode = 600
	ErrRPCStateBase        RPCErrorCode = 700
	ErrRPCExternalCallBase RPCErrorCode = 800
)

// LedgerRPCError converts an error returned by the ledger into the RPCError
// sent to the client.  Errors that are not ledger errors yield nil.
func LedgerRPCError(err error) *RPCError {
	var e *errcode.Error
	if !errors.As(err, &e) {
		return nil
	}
	return NewRPCError(RPCErrorCode(e.Code), e.Error())
}
