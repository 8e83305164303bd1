package quantum

import "errors"

// Error definitions.
//
// Errors returned by the driver wrap one of these and can be tested with
// errors.Is.
var (
	// ErrConnect is returned if the connection to the sensor could not be opened.
	ErrConnect = errors.New("connect failed")
	// ErrIO is returned if a write or read failed. The connection is closed
	// and reopened on next use.
	ErrIO = errors.New("i/o failed")
	// ErrDecode is returned if a response is too short or malformed.
	ErrDecode = errors.New("invalid response")
	// ErrNoSamples is returned if no voltage sample could be read.
	ErrNoSamples = errors.New("no voltage samples available")
	// ErrInvalidReading is returned if the sensor reports the invalid
	// measurement value.
	ErrInvalidReading = errors.New("invalid voltage reading")
)
