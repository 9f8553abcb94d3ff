package sensor

// Finger identifies a template within a group.
type Finger struct {
	ID    uint32
	Group uint32
}

// Event is the closed set of notifications a driver emits. Every
// variant carries exactly the payload of its wire message; consumers
// switch on the concrete type.
type Event interface {
	event()
}

// ErrorEvent reports a driver error condition.
type ErrorEvent struct {
	Code ErrorCode
}

// AcquiredEvent reports image acquisition feedback during capture.
type AcquiredEvent struct {
	Code AcquiredCode
}

// EnrollEvent reports enrollment progress. SamplesRemaining of zero
// means the template is complete.
type EnrollEvent struct {
	Finger           Finger
	SamplesRemaining uint32
}

// RemovedEvent reports template removal. Remaining counts templates
// left in the group.
type RemovedEvent struct {
	Finger    Finger
	Remaining uint32
}

// AuthenticatedEvent reports the outcome of an authentication attempt.
// Finger.ID is zero when no template matched. Token carries the
// hardware authenticator token on a match.
type AuthenticatedEvent struct {
	Finger Finger
	Token  []byte
}

// EnumeratedEvent reports one template during enumeration.
type EnumeratedEvent struct {
	Finger    Finger
	Remaining uint32
}

func (ErrorEvent) event()         {}
func (AcquiredEvent) event()      {}
func (EnrollEvent) event()        {}
func (RemovedEvent) event()       {}
func (AuthenticatedEvent) event() {}
func (EnumeratedEvent) event()    {}
