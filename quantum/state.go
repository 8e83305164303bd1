package quantum

// ConnState represents the state of a session connection.
type ConnState uint8

// Connection states.
const (
	// NotConnectedState indicates that no connection is open. The next
	// transaction tries to open one.
	NotConnectedState ConnState = iota
	// ConnectedState indicates an open connection.
	ConnectedState
)

func (s ConnState) String() string {
	switch s {
	case NotConnectedState:
		return "not-connected"
	case ConnectedState:
		return "connected"
	default:
		return "unknown"
	}
}

// DriverState represents the state of a sensor driver.
type DriverState uint8

// Driver states.
//
// No state is final: reading from a driver in CalibratingState or
// UnavailableState tries to calibrate again.
const (
	// UninitializedState is the state before the first calibration.
	UninitializedState DriverState = iota
	// CalibratingState indicates that the calibration has to be (re)read
	// before the next reading.
	CalibratingState
	// ReadyState indicates a loaded calibration.
	ReadyState
	// UnavailableState indicates that the last calibration failed.
	UnavailableState
)

func (s DriverState) String() string {
	switch s {
	case UninitializedState:
		return "uninitialized"
	case CalibratingState:
		return "calibrating"
	case ReadyState:
		return "ready"
	case UnavailableState:
		return "unavailable"
	default:
		return "unknown"
	}
}
