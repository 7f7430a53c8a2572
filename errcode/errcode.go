package errcode

import "errors"

// Sentinel errors shared by the data access layer, services and the claim
// engine. Callers classify failures with errors.Is; the RPC server maps them
// to wire error codes.
var (
	ErrNilGormDB = errors.New("nil gorm db")

	ErrUnauthorized         = errors.New("unauthorized")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrNotEligible          = errors.New("not eligible")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)
