package quantum

import (
	"io"
	"time"
)

// readTimeout is the maximum time a single read waits for the sensor.
const readTimeout = 500 * time.Millisecond

// Conn is a stream oriented connection to the sensor.
//
// A read exceeding the connection read timeout returns the bytes received so
// far (possibly none) and a nil error.
type Conn interface {
	io.ReadWriteCloser
}

// A Dialer opens a connection to the sensor at endpoint.
type Dialer func(endpoint string) (Conn, error)

// inputResetter is implemented by connections able to discard received but
// not yet read data.
type inputResetter interface {
	ResetInputBuffer() error
}
