package treasury

import "errors"

// Treasury program errors. Every failure is returned to the host so
// it can record a failed-but-charged transaction; handlers never
// panic, and an error return carries no post states.
var (
	// ErrInsufficientSignatures indicates fewer authorized member
	// signatures than the multisig threshold requires.
	ErrInsufficientSignatures = errors.New("insufficient signatures")

	// ErrUnauthorized indicates the invoking signer may not move the
	// funds in question.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicateMember indicates the member being added is already
	// part of the multisig.
	ErrDuplicateMember = errors.New("member already present")

	// ErrNotAMember indicates the member being removed is not part of
	// the multisig.
	ErrNotAMember = errors.New("not a member")

	// ErrMemberLimitExceeded indicates the multisig already holds the
	// maximum number of members.
	ErrMemberLimitExceeded = errors.New("member limit exceeded")

	// ErrInvalidThreshold indicates a threshold outside
	// 1..member_count, or a mutation that would leave it there.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrNoAuthorizedAccounts indicates a vault was created without
	// any account allowed to move its funds.
	ErrNoAuthorizedAccounts = errors.New("no authorized accounts")

	// ErrMalformedAccountList indicates the pre-state account list
	// does not match the instruction's account contract.
	ErrMalformedAccountList = errors.New("malformed account list")

	// ErrDeserialization indicates account bytes could not be decoded
	// into the expected state schema.
	ErrDeserialization = errors.New("deserialization failed")

	// ErrSerialization indicates new state could not be encoded into
	// the account buffer.
	ErrSerialization = errors.New("serialization failed")

	// ErrInvalidInstructionData indicates the instruction payload is
	// malformed or carries an unknown discriminator.
	ErrInvalidInstructionData = errors.New("invalid instruction data")
)
