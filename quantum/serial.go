package quantum

import (
	"errors"
	"strings"

	"go.bug.st/serial"
	"golang.org/x/exp/slices"
)

const baudRate = 115200 // baud rate of the quantum sensor.

// SerialDefaultPortName returns the default serial port name if a detection is possible and an error otherwise.
// If more than one candidate is found the lowest port name is returned.
func SerialDefaultPortName() (string, error) {
	portNames, err := serial.GetPortsList()
	if err != nil {
		return "", err
	}
	slices.Sort(portNames)

	for _, name := range portNames {
		if strings.HasPrefix(name, defaultSerialPortPath) {
			return name, nil
		}
	}
	return "", errors.New("default port could not be detected")
}

// Serial provides a serial connection to the quantum sensor.
type Serial struct {
	portName string
	port     serial.Port
}

// NewSerial returns a new serial connection instance.
func NewSerial(portName string) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, err
	}
	return &Serial{portName: portName, port: port}, nil
}

// SerialDialer is a Dialer opening serial connections.
func SerialDialer(portName string) (Conn, error) {
	return NewSerial(portName)
}

// PortName returns the name of the serial port.
func (s *Serial) PortName() string { return s.portName }

// Read implements the io.Reader interface.
func (s *Serial) Read(p []byte) (n int, err error) {
	return s.port.Read(p)
}

// Write implements the io.Writer interface.
func (s *Serial) Write(p []byte) (n int, err error) {
	return s.port.Write(p)
}

// ResetInputBuffer discards received data not read so far.
func (s *Serial) ResetInputBuffer() error {
	return s.port.ResetInputBuffer()
}

// Close closes the serial port.
func (s *Serial) Close() error {
	return s.port.Close()
}
