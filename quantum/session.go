package quantum

import (
	"fmt"

	"github.com/pico-cs/go-quantum/logger"
)

// responseSize is the size of a framed response: status byte and payload.
const responseSize = 1 + payloadSize

// Session manages the connection to a sensor.
//
// A connection is opened on demand and closed after any i/o error, so the
// next transaction opens a new one. A session does not retry on its own.
// A session is not safe for concurrent use.
type Session struct {
	endpoint string
	dial     Dialer
	conn     Conn
	state    ConnState
	logger   logger.Logger
	metrics  *Metrics
}

func newSession(endpoint string, dial Dialer, log logger.Logger, metrics *Metrics) *Session {
	return &Session{
		endpoint: endpoint,
		dial:     dial,
		logger:   log.With("endpoint", endpoint),
		metrics:  metrics,
	}
}

// NewSession returns a new unconnected session.
func NewSession(endpoint string, dial Dialer) *Session {
	return newSession(endpoint, dial, logger.GetLogger(), new(Metrics))
}

// Endpoint returns the endpoint the session connects to.
func (s *Session) Endpoint() string { return s.endpoint }

// State returns the connection state.
func (s *Session) State() ConnState { return s.state }

// EnsureConnected opens a connection if the session is not connected.
func (s *Session) EnsureConnected() error {
	if s.state == ConnectedState {
		return nil
	}
	conn, err := s.dial(s.endpoint)
	if err != nil {
		s.metrics.ConnectErrCount.Add(1)
		return fmt.Errorf("%w: %s: %w", ErrConnect, s.endpoint, err)
	}
	s.conn, s.state = conn, ConnectedState
	s.metrics.ConnectCount.Add(1)
	s.logger.Info("connected")
	return nil
}

// Close closes the connection. Closing an unconnected session is a no-op.
func (s *Session) Close() error {
	if s.state == NotConnectedState {
		return nil
	}
	err := s.conn.Close()
	s.conn, s.state = nil, NotConnectedState
	return err
}

// teardown drops the connection after an i/o error.
func (s *Session) teardown(cause error) {
	s.logger.Warn("connection dropped", "error", cause)
	if err := s.Close(); err != nil {
		s.logger.Debug("close failed", "error", err)
	}
	s.metrics.TeardownCount.Add(1)
}

func (s *Session) write(cmd []byte) error {
	if err := s.EnsureConnected(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if r, ok := s.conn.(inputResetter); ok {
		if err := r.ResetInputBuffer(); err != nil {
			s.teardown(err)
			return fmt.Errorf("%w: reset input: %w", ErrIO, err)
		}
	}
	if _, err := s.conn.Write(cmd); err != nil {
		s.teardown(err)
		return fmt.Errorf("%w: write: %w", ErrIO, err)
	}
	return nil
}

// read reads up to n bytes. It stops early if a read times out.
func (s *Session) read(n int) ([]byte, error) {
	buf := make([]byte, n)
	i := 0
	for i < n {
		m, err := s.conn.Read(buf[i:])
		i += m
		if err != nil {
			s.teardown(err)
			return nil, fmt.Errorf("%w: read: %w", ErrIO, err)
		}
		if m == 0 { // timeout
			break
		}
	}
	return buf[:i], nil
}

// readFrame reads a framed response and returns the payload without the
// status byte.
func (s *Session) readFrame() ([]byte, error) {
	b, err := s.read(responseSize)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return b, nil
	}
	return b[1:], nil
}

// Transact writes cmd and returns the payload of the response.
//
// A response shorter than a full frame is returned as is without an error,
// an empty payload means that the sensor did not answer in time.
func (s *Session) Transact(cmd []byte) ([]byte, error) {
	if err := s.write(cmd); err != nil {
		return nil, err
	}
	payload, err := s.readFrame()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("transaction", "command", fmt.Sprintf("% x", cmd), "payload", fmt.Sprintf("% x", payload))
	return payload, nil
}

// TransactWithTrailer writes cmd, reads a framed response and then n more
// bytes without a status byte.
func (s *Session) TransactWithTrailer(cmd []byte, n int) (payload, trailer []byte, err error) {
	if err := s.write(cmd); err != nil {
		return nil, nil, err
	}
	if payload, err = s.readFrame(); err != nil {
		return nil, nil, err
	}
	if trailer, err = s.read(n); err != nil {
		return nil, nil, err
	}
	s.logger.Debug("transaction", "command", fmt.Sprintf("% x", cmd), "payload", fmt.Sprintf("% x", payload), "trailer", fmt.Sprintf("% x", trailer))
	return payload, trailer, nil
}
