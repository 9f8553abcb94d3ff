package statuscode

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/veridianlabs/fpbridged/hallog"
	"github.com/veridianlabs/fpbridged/sensor"
)

var errnoStatus = map[unix.Errno]RequestStatus{
	unix.ENOENT:    StatusENOENT,
	unix.EINTR:     StatusEINTR,
	unix.EIO:       StatusEIO,
	unix.EAGAIN:    StatusEAGAIN,
	unix.ENOMEM:    StatusENOMEM,
	unix.EACCES:    StatusEACCES,
	unix.EFAULT:    StatusEFAULT,
	unix.EBUSY:     StatusEBUSY,
	unix.EINVAL:    StatusEINVAL,
	unix.ENOSPC:    StatusENOSPC,
	unix.ETIMEDOUT: StatusETIMEDOUT,
}

// Request translates a driver operation result. nil is StatusOK, the
// known errno values map to their protocol counterparts, and anything
// else degrades to StatusUnknown.
func Request(err error) RequestStatus {
	if err == nil {
		return StatusOK
	}
	var errno unix.Errno
	if errors.As(err, &errno) {
		if status, ok := errnoStatus[errno]; ok {
			return status
		}
	}
	hallog.Anomaly("unknown status returned from fingerprint driver: %v", err)
	return StatusUnknown
}

// VendorError translates a driver error code into the protocol error
// class plus the vendor payload carried alongside ErrorVendor.
func VendorError(code sensor.ErrorCode) (Error, int32) {
	switch code {
	case sensor.ErrorHwUnavailable:
		return ErrorHwUnavailable, 0
	case sensor.ErrorUnableToProcess:
		return ErrorUnableToProcess, 0
	case sensor.ErrorTimeout:
		return ErrorTimeout, 0
	case sensor.ErrorNoSpace:
		return ErrorNoSpace, 0
	case sensor.ErrorCanceled:
		return ErrorCanceled, 0
	case sensor.ErrorUnableToRemove:
		return ErrorUnableToRemove, 0
	case sensor.ErrorLockout:
		return ErrorLockout, 0
	}
	if code >= sensor.ErrorVendorBase {
		return ErrorVendor, int32(code - sensor.ErrorVendorBase)
	}
	hallog.Anomaly("unknown error code from fingerprint driver: %d", code)
	return ErrorUnableToProcess, 0
}

// VendorAcquired translates driver acquisition feedback into the
// protocol class plus the vendor payload carried alongside
// AcquiredVendor.
func VendorAcquired(code sensor.AcquiredCode) (AcquiredInfo, int32) {
	switch code {
	case sensor.AcquiredGood:
		return AcquiredGood, 0
	case sensor.AcquiredPartial:
		return AcquiredPartial, 0
	case sensor.AcquiredInsufficient:
		return AcquiredInsufficient, 0
	case sensor.AcquiredImagerDirty:
		return AcquiredImagerDirty, 0
	case sensor.AcquiredTooSlow:
		return AcquiredTooSlow, 0
	case sensor.AcquiredTooFast:
		return AcquiredTooFast, 0
	}
	if code >= sensor.AcquiredVendorBase {
		return AcquiredVendor, int32(code - sensor.AcquiredVendorBase)
	}
	hallog.Anomaly("unknown acquired code from fingerprint driver: %d", code)
	return AcquiredInsufficient, 0
}
