// Package statuscode holds the protocol vocabulary the bridge speaks
// to its client and the translation of raw driver codes into it. The
// translators are total: a code outside every known range maps to a
// designated default and is logged, never rejected.
package statuscode

import "fmt"

// RequestStatus is the synchronous result of a bridge operation.
type RequestStatus int32

const (
	StatusUnknown   RequestStatus = 1
	StatusOK        RequestStatus = 0
	StatusENOENT    RequestStatus = -2
	StatusEINTR     RequestStatus = -4
	StatusEIO       RequestStatus = -5
	StatusEAGAIN    RequestStatus = -11
	StatusENOMEM    RequestStatus = -12
	StatusEACCES    RequestStatus = -13
	StatusEFAULT    RequestStatus = -14
	StatusEBUSY     RequestStatus = -16
	StatusEINVAL    RequestStatus = -22
	StatusENOSPC    RequestStatus = -28
	StatusETIMEDOUT RequestStatus = -110
)

var statusNames = map[RequestStatus]string{
	StatusUnknown:   "SYS_UNKNOWN",
	StatusOK:        "SYS_OK",
	StatusENOENT:    "SYS_ENOENT",
	StatusEINTR:     "SYS_EINTR",
	StatusEIO:       "SYS_EIO",
	StatusEAGAIN:    "SYS_EAGAIN",
	StatusENOMEM:    "SYS_ENOMEM",
	StatusEACCES:    "SYS_EACCES",
	StatusEFAULT:    "SYS_EFAULT",
	StatusEBUSY:     "SYS_EBUSY",
	StatusEINVAL:    "SYS_EINVAL",
	StatusENOSPC:    "SYS_ENOSPC",
	StatusETIMEDOUT: "SYS_ETIMEDOUT",
}

func (s RequestStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RequestStatus(%d)", int32(s))
}

// Error is the asynchronous error class reported to the client.
// ErrorVendor is accompanied by a vendor payload code.
type Error int32

const (
	ErrorNone            Error = 0
	ErrorHwUnavailable   Error = 1
	ErrorUnableToProcess Error = 2
	ErrorTimeout         Error = 3
	ErrorNoSpace         Error = 4
	ErrorCanceled        Error = 5
	ErrorUnableToRemove  Error = 6
	ErrorLockout         Error = 7
	ErrorVendor          Error = 8
)

var errorNames = map[Error]string{
	ErrorNone:            "ERROR_NONE",
	ErrorHwUnavailable:   "ERROR_HW_UNAVAILABLE",
	ErrorUnableToProcess: "ERROR_UNABLE_TO_PROCESS",
	ErrorTimeout:         "ERROR_TIMEOUT",
	ErrorNoSpace:         "ERROR_NO_SPACE",
	ErrorCanceled:        "ERROR_CANCELED",
	ErrorUnableToRemove:  "ERROR_UNABLE_TO_REMOVE",
	ErrorLockout:         "ERROR_LOCKOUT",
	ErrorVendor:          "ERROR_VENDOR",
}

func (e Error) String() string {
	if name, ok := errorNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Error(%d)", int32(e))
}

// AcquiredInfo is the acquisition feedback class reported to the
// client. AcquiredVendor is accompanied by a vendor payload code.
type AcquiredInfo int32

const (
	AcquiredGood         AcquiredInfo = 0
	AcquiredPartial      AcquiredInfo = 1
	AcquiredInsufficient AcquiredInfo = 2
	AcquiredImagerDirty  AcquiredInfo = 3
	AcquiredTooSlow      AcquiredInfo = 4
	AcquiredTooFast      AcquiredInfo = 5
	AcquiredVendor       AcquiredInfo = 6
)

var acquiredNames = map[AcquiredInfo]string{
	AcquiredGood:         "ACQUIRED_GOOD",
	AcquiredPartial:      "ACQUIRED_PARTIAL",
	AcquiredInsufficient: "ACQUIRED_INSUFFICIENT",
	AcquiredImagerDirty:  "ACQUIRED_IMAGER_DIRTY",
	AcquiredTooSlow:      "ACQUIRED_TOO_SLOW",
	AcquiredTooFast:      "ACQUIRED_TOO_FAST",
	AcquiredVendor:       "ACQUIRED_VENDOR",
}

func (a AcquiredInfo) String() string {
	if name, ok := acquiredNames[a]; ok {
		return name
	}
	return fmt.Sprintf("AcquiredInfo(%d)", int32(a))
}
