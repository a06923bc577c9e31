package treasury

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the Processor wraps exactly one of
// them, so callers may check either the class or the specific error with
// errors.Is.
var (
	ErrAuthorization = errors.New("authorization failed")
	ErrLifecycle     = errors.New("lifecycle violation")
	ErrCompliance    = errors.New("compliance check failed")
	ErrSolvency      = errors.New("solvency check failed")
	ErrAvailability  = errors.New("treasury unavailable")
	ErrArithmetic    = errors.New("arithmetic failure")
	ErrInvalidInput  = errors.New("invalid input")
)

// Authorization errors.
var (
	// ErrMissingSignature appears when the caller's signature is not present
	// in the request.
	ErrMissingSignature = fmt.Errorf("%w: missing required signature", ErrAuthorization)
	// ErrUnauthorizedSigner appears when the caller is witnessed but has no
	// right to invoke the operation.
	ErrUnauthorizedSigner = fmt.Errorf("%w: unauthorized signer", ErrAuthorization)
	// ErrInvalidSignatureThreshold appears when a signer set and its threshold
	// do not satisfy 1 <= threshold <= len(signers) <= MaxSigners.
	ErrInvalidSignatureThreshold = fmt.Errorf("%w: invalid signature threshold", ErrAuthorization)
)

// Lifecycle errors.
var (
	ErrAlreadyInitialized = fmt.Errorf("%w: treasury is already initialized", ErrLifecycle)
	ErrNotInitialized     = fmt.Errorf("%w: treasury is not initialized", ErrLifecycle)
	// ErrNotRentExempt appears when storage allocated for the treasury record
	// can not hold RecordSize bytes.
	ErrNotRentExempt = fmt.Errorf("%w: insufficient storage allocation", ErrLifecycle)
)

// Compliance errors.
var (
	ErrTransactionLimitExceeded = fmt.Errorf("%w: per-transaction limit exceeded", ErrCompliance)
	ErrDailyVolumeExceeded      = fmt.Errorf("%w: daily volume limit exceeded", ErrCompliance)
	ErrInvalidPayoutPercentage  = fmt.Errorf("%w: invalid payout percentage", ErrCompliance)
	ErrPayoutWindowInactive     = fmt.Errorf("%w: payout window is not active", ErrCompliance)
)

// Solvency errors.
var (
	ErrInsufficientReserves     = fmt.Errorf("%w: insufficient reserves", ErrSolvency)
	ErrReserveRatioBelowMinimum = fmt.Errorf("%w: reserve ratio below minimum", ErrSolvency)
)

// Availability errors.
var (
	ErrEmergencyPauseActive = fmt.Errorf("%w: emergency pause is active", ErrAvailability)
	ErrNotPaused            = fmt.Errorf("%w: treasury is not paused", ErrAvailability)
	ErrAlreadyPaused        = fmt.Errorf("%w: treasury is already paused", ErrAvailability)
)

// ErrNumericalOverflow is returned instead of any wrapped-around value.
var ErrNumericalOverflow = fmt.Errorf("%w: numerical overflow", ErrArithmetic)

// Input errors.
var (
	ErrInvalidParameters = fmt.Errorf("%w: invalid treasury parameters", ErrInvalidInput)
	ErrFieldTooLong      = fmt.Errorf("%w: field exceeds maximum length", ErrInvalidInput)
	ErrUnknownOperation  = fmt.Errorf("%w: unknown operation", ErrInvalidInput)
)
