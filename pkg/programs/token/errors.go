package token

import "errors"

// Token program errors
var (
	// ErrInvalidInstructionData indicates the instruction payload is malformed.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrInvalidAccountData indicates account bytes do not decode into
	// the expected token schema.
	ErrInvalidAccountData = errors.New("invalid account data")

	// ErrMalformedAccountList indicates the pre-state list does not
	// match the instruction's account contract.
	ErrMalformedAccountList = errors.New("malformed account list")

	// ErrAccountAlreadyInitialized indicates the target account is
	// already in use.
	ErrAccountAlreadyInitialized = errors.New("account already initialized")

	// ErrAccountNotAuthorized indicates the account whose funds move
	// was not covered by a signature or PDA delegation.
	ErrAccountNotAuthorized = errors.New("account not authorized")

	// ErrInsufficientFunds indicates the source holding has less than
	// the transfer amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDefinitionMismatch indicates source and destination holdings
	// belong to different token definitions.
	ErrDefinitionMismatch = errors.New("token definition mismatch")
)
