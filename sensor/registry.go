package sensor

import "sync"

// Opener constructs a driver instance for one registered class.
type Opener func() (Device, error)

var (
	regMu   sync.RWMutex
	openers = map[string]Opener{}
)

// Register makes a driver class available to OpenFirst. Registering a
// class twice panics.
func Register(class string, open Opener) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := openers[class]; dup {
		panic("sensor: duplicate driver class " + class)
	}
	openers[class] = open
}

func lookup(class string) (Opener, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	open, ok := openers[class]
	return open, ok
}
