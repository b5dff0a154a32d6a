package engine

import "errors"

// Engine errors
var (
	// ErrUnknownProgram indicates no program is registered for the
	// target program id.
	ErrUnknownProgram = errors.New("engine: unknown program")

	// ErrProgramAlreadyRegistered indicates a second registration for
	// the same program id.
	ErrProgramAlreadyRegistered = errors.New("engine: program already registered")

	// ErrCallDepthExceeded indicates chained calls recursed past the
	// configured limit.
	ErrCallDepthExceeded = errors.New("engine: call depth exceeded")

	// ErrPostStateCount indicates a program emitted a post-state list
	// whose length differs from its pre-state list.
	ErrPostStateCount = errors.New("engine: post state count mismatch")

	// ErrForgedAuthorization indicates a chained call escalated an
	// account's authorization without a seed deriving that account
	// from the calling program.
	ErrForgedAuthorization = errors.New("engine: forged authorization")

	// ErrOwnershipViolation indicates a post state mutated an account
	// the executing program neither owns nor legitimately claims.
	ErrOwnershipViolation = errors.New("engine: ownership violation")

	// ErrDuplicateAccount indicates the same account id appears twice
	// in a transaction's account list.
	ErrDuplicateAccount = errors.New("engine: duplicate account in transaction")
)
