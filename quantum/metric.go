package quantum

import "sync/atomic"

// Metrics contains atomic driver metrics.
type Metrics struct {
	// ReadingCount indicates the number of successful readings.
	ReadingCount atomic.Uint64
	// ReadingErrCount indicates the number of failed readings.
	ReadingErrCount atomic.Uint64
	// SampleMissCount indicates the number of voltage attempts without a sample.
	SampleMissCount atomic.Uint64
	// ConnectCount indicates the number of opened connections.
	ConnectCount atomic.Uint64
	// ConnectErrCount indicates the number of failed connection attempts.
	ConnectErrCount atomic.Uint64
	// TeardownCount indicates the number of connections closed after an i/o error.
	TeardownCount atomic.Uint64
}
