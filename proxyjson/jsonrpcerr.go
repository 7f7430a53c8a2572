package proxyjson

import "fmt"

// RPCErrorCode represents an error code to be used as a part of an RPCError
// which is in turn used in a JSON-RPC Response object.
type RPCErrorCode int

// RPCError represents an error that is used as a part of a JSON-RPC Response
// object.
type RPCError struct {
	Code    RPCErrorCode `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Guarantee RPCError satisfies the builtin error interface.
var _ error = (*RPCError)(nil)

// Error returns a string describing the RPC error. This satisfies the
// builtin error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// NewRPCError constructs and returns a new JSON-RPC error that is suitable
// for use in a JSON-RPC Response object.
func NewRPCError(code RPCErrorCode, message string) *RPCError {
	return &RPCError{
		Code:    code,
		Message: message,
	}
}

// General application error codes.
const (
	ErrRPCParse          RPCErrorCode = -32700
	ErrRPCInvalidRequest RPCErrorCode = -32600
	ErrRPCMethodNotFound RPCErrorCode = -32601
	ErrRPCInvalidParams  RPCErrorCode = -32602
	ErrRPCInternal       RPCErrorCode = -32603
)

// Domain error codes mirroring the engine's error taxonomy.
const (
	ErrRPCUnauthorized         RPCErrorCode = -1
	ErrRPCNotFound             RPCErrorCode = -2
	ErrRPCAlreadyExists        RPCErrorCode = -3
	ErrRPCInvalidArgument      RPCErrorCode = -4
	ErrRPCNotEligible          RPCErrorCode = -5
	ErrRPCReferentialIntegrity RPCErrorCode = -6
)

// Standard errors returned verbatim by the dispatcher.
var (
	ErrRPCMethodNotFoundStd = &RPCError{
		Code:    ErrRPCMethodNotFound,
		Message: "Method not found",
	}
	ErrRPCInvalidRequestStd = &RPCError{
		Code:    ErrRPCInvalidRequest,
		Message: "Invalid request",
	}
	ErrRPCUnauthorizedStd = &RPCError{
		Code:    ErrRPCUnauthorized,
		Message: "Unauthorized",
	}
)
