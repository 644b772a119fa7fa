package sender

import "errors"

var (
	// ErrConnectionTimeout is returned when the connection is not confirmed
	// live within the readiness bound. Treat it as fatal.
	ErrConnectionTimeout = errors.New("sender: timed out waiting for connection")

	// ErrNilConnection is returned by New when no connection is supplied.
	ErrNilConnection = errors.New("sender: connection is nil")
)
