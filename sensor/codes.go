package sensor

// ErrorCode is the driver-side error space carried by ErrorEvent.
// Values at or above ErrorVendorBase are vendor-specific.
type ErrorCode int32

const (
	ErrorHwUnavailable   ErrorCode = 1
	ErrorUnableToProcess ErrorCode = 2
	ErrorTimeout         ErrorCode = 3
	ErrorNoSpace         ErrorCode = 4
	ErrorCanceled        ErrorCode = 5
	ErrorUnableToRemove  ErrorCode = 6
	ErrorLockout         ErrorCode = 7

	ErrorVendorBase ErrorCode = 1000
)

// AcquiredCode is the driver-side acquisition feedback space carried
// by AcquiredEvent. Values at or above AcquiredVendorBase are
// vendor-specific.
type AcquiredCode int32

const (
	AcquiredGood         AcquiredCode = 0
	AcquiredPartial      AcquiredCode = 1
	AcquiredInsufficient AcquiredCode = 2
	AcquiredImagerDirty  AcquiredCode = 3
	AcquiredTooSlow      AcquiredCode = 4
	AcquiredTooFast      AcquiredCode = 5

	AcquiredVendorBase AcquiredCode = 1000
)
