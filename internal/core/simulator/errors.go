package simulator

import "errors"

// Contract-level errors shared by all backends. Backend-internal failures
// wrap their own causes but must surface one of these where applicable so
// callers can classify without knowing the backend.
var (
	ErrSimulatorClosed   = errors.New("simulator is closed")
	ErrUnknownAgent      = errors.New("unknown agent")
	ErrUnknownSensor     = errors.New("unknown sensor")
	ErrUnknownObject     = errors.New("object not in registry")
	ErrUnknownInstance   = errors.New("object instance not found")
	ErrUnsupportedAction = errors.New("unsupported action type")
	ErrNoPlacement       = errors.New("no valid placement for object")
)
