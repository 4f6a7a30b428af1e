package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Payment flow
	ErrPlanNotSelected    = errors.New("installment plan not selected")
	ErrPhoneRequired      = errors.New("phone number required")
	ErrWalletRequired     = errors.New("wallet type required for mobile wallet payments")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrVerifyTimeout      = errors.New("payment verification timed out")

	// API edge
	ErrRateLimited  = errors.New("too many requests")
	ErrUnauthorized = errors.New("unauthorized")
)
