package quantum

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/pico-cs/go-quantum/logger"
	"github.com/stretchr/testify/require"
)

var (
	errFakeDial  = errors.New("no such device")
	errFakeWrite = errors.New("write failed")
)

const statusOK = 0x00

// frame returns a framed response consisting of a status byte and the payloads.
func frame(payloads ...[]byte) []byte {
	b := []byte{statusOK}
	for _, p := range payloads {
		b = append(b, p...)
	}
	return b
}

func f32(f float32) []byte {
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(f))
}

func u32(u uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, u)
}

func calibrationResponse(offset, multiplier float32) []byte {
	return append(frame(f32(multiplier)), f32(offset)...)
}

func voltageResponse(v float32) []byte { return frame(f32(v)) }

// fakeDevice simulates a sensor answering each command with the next
// queued response for the command code. Commands without queued response
// are not answered.
type fakeDevice struct {
	responses map[Code][][]byte
	writes    [][]byte
	failWrite map[int]bool // 1 based write numbers
	pending   bytes.Buffer
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		responses: map[Code][][]byte{},
		failWrite: map[int]bool{},
	}
}

func (d *fakeDevice) queue(code Code, responses ...[]byte) {
	d.responses[code] = append(d.responses[code], responses...)
}

func (d *fakeDevice) write(p []byte) (int, error) {
	d.writes = append(d.writes, append([]byte(nil), p...))
	if d.failWrite[len(d.writes)] {
		return 0, errFakeWrite
	}
	code := Code(p[0])
	if q := d.responses[code]; len(q) > 0 {
		d.pending.Write(q[0])
		d.responses[code] = q[1:]
	}
	return len(p), nil
}

type fakeConn struct {
	dev    *fakeDevice
	closed bool
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	n, _ := c.dev.pending.Read(p) // empty buffer: timeout
	return n, nil
}

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.closed {
		return 0, io.ErrClosedPipe
	}
	return c.dev.write(p)
}

func (c *fakeConn) ResetInputBuffer() error {
	c.dev.pending.Reset()
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeDialer struct {
	dev   *fakeDevice
	fail  int // number of dials to fail
	dials int
}

func (d *fakeDialer) dial(endpoint string) (Conn, error) {
	d.dials++
	if d.fail > 0 {
		d.fail--
		return nil, errFakeDial
	}
	return &fakeConn{dev: d.dev}, nil
}

func testLogger() logger.Logger { return logger.NewSlog(io.Discard, logger.DebugLevel) }

func newTestDriver(t *testing.T, dialer *fakeDialer) *Driver {
	t.Helper()
	d, err := New("fake", WithDialer(dialer.dial), WithLogger(testLogger()), WithSleep(func(time.Duration) {}))
	require.NoError(t, err)
	return d
}
