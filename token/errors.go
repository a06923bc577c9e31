package token

import "errors"

var (
	ErrMintExists      = errors.New("mint already exists")
	ErrMintNotFound    = errors.New("mint not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
	ErrMintMismatch    = errors.New("account belongs to another mint")
	ErrSelfTransfer    = errors.New("source and destination are the same account")
	ErrAccountFrozen   = errors.New("account is frozen")
	ErrOverflow        = errors.New("amount overflow")

	ErrInsufficientFunds = errors.New("not enough assets")

	// ErrOwnerMismatch is returned when authority is neither the owner nor
	// the delegate of the account.
	ErrOwnerMismatch = errors.New("authority does not own the account")

	ErrInsufficientDelegation = errors.New("delegated amount is exceeded")

	ErrAuthorityMismatch = errors.New("invalid mint or freeze authority")
)
