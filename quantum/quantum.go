// Package quantum provides a driver for Apogee quantum PAR sensors connected
// by USB serial.
//
// The driver reads the calibration of the sensor once per connection, averages
// raw voltage samples and converts them to photosynthetically active radiation
// in micromoles. Connections are reopened on demand after i/o errors, so a
// driver stays usable after any failure.
package quantum

import (
	"fmt"
	"math"
	"time"

	"github.com/pico-cs/go-quantum/logger"
	"github.com/pico-cs/go-quantum/quantum/average"
)

// InvalidVoltage is the voltage value the sensor reports for an invalid measurement.
const InvalidVoltage float32 = 9999.0

const micromolesPerVolt = 1000

// Calibration holds the sensor specific conversion constants.
type Calibration struct {
	Offset     float32
	Multiplier float32
}

// Micromoles converts voltage to micromoles. Negative results are clamped to 0.
func (c Calibration) Micromoles(voltage float32) float32 {
	v := (voltage - c.Offset) * c.Multiplier * micromolesPerVolt
	if v < 0 {
		return 0
	}
	return v
}

// Driver represents a quantum sensor driver instance.
// A driver is not safe for concurrent use.
type Driver struct {
	session *Session
	state   DriverState
	cal     Calibration
	policy  average.Policy
	sleep   func(time.Duration)
	logger  logger.Logger
	metrics *Metrics
}

// New returns a new driver for the sensor at endpoint and tries to read the
// sensor calibration. A failed calibration is logged and retried by the next
// reading. An error is returned for invalid options only.
func New(endpoint string, opts ...Option) (*Driver, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	metrics := new(Metrics)
	d := &Driver{
		session: newSession(endpoint, cfg.dial, cfg.logger, metrics),
		policy:  cfg.policy,
		sleep:   cfg.sleep,
		logger:  cfg.logger.With("endpoint", endpoint),
		metrics: metrics,
	}
	if err := d.Calibrate(); err != nil {
		d.logger.Warn("initial calibration failed", "error", err)
	}
	return d, nil
}

// Close closes the sensor connection. The driver reconnects and recalibrates
// on next use.
func (d *Driver) Close() error {
	d.state, d.cal = UninitializedState, Calibration{}
	return d.session.Close()
}

// State returns the driver state.
func (d *Driver) State() DriverState { return d.state }

// ConnState returns the state of the sensor connection.
func (d *Driver) ConnState() ConnState { return d.session.State() }

// Metrics returns the driver metrics.
func (d *Driver) Metrics() *Metrics { return d.metrics }

// Calibration returns the loaded calibration and false if none is loaded.
func (d *Driver) Calibration() (Calibration, bool) {
	return d.cal, d.state == ReadyState
}

// transact sends cmd and forces a recalibration on transport errors.
func (d *Driver) transact(cmd Command) ([]byte, error) {
	payload, err := d.session.Transact(cmd.Bytes())
	if err != nil {
		if d.state == ReadyState {
			d.state = CalibratingState
		}
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}
	return payload, nil
}

// Calibrate reads the calibration from the sensor.
// On error no calibration is loaded.
func (d *Driver) Calibrate() error {
	d.state, d.cal = CalibratingState, Calibration{}

	cal, err := d.readCalibration()
	if err != nil {
		d.state = UnavailableState
		return err
	}
	d.state, d.cal = ReadyState, cal
	d.logger.Info("calibration loaded", "multiplier", cal.Multiplier, "offset", cal.Offset)
	return nil
}

func (d *Driver) readCalibration() (Calibration, error) {
	cmd := ReadCalibrationCmd
	multiplier, offset, err := d.session.TransactWithTrailer(cmd.Bytes(), payloadSize)
	if err != nil {
		return Calibration{}, fmt.Errorf("%s: %w", cmd, err)
	}
	m, err := parseFloat32(multiplier)
	if err != nil {
		return Calibration{}, fmt.Errorf("%s: multiplier %w", cmd, err)
	}
	o, err := parseFloat32(offset)
	if err != nil {
		return Calibration{}, fmt.Errorf("%s: offset %w", cmd, err)
	}
	return Calibration{Offset: o, Multiplier: m}, nil
}

func (d *Driver) sampleVoltage(attempt int) (float32, bool, error) {
	payload, err := d.transact(GetVoltageCmd)
	if err == nil && len(payload) == 0 {
		d.metrics.SampleMissCount.Add(1)
		d.logger.Debug("voltage sample missing", "attempt", attempt)
		return 0, false, nil
	}
	var v float32
	if err == nil {
		v, err = parseFloat32(payload)
	}
	if err == nil && math.IsNaN(float64(v)) {
		err = fmt.Errorf("%w - not a number", ErrDecode)
	}
	if err != nil {
		d.metrics.SampleMissCount.Add(1)
		d.logger.Debug("voltage sample failed", "attempt", attempt, "error", err)
		return 0, false, err
	}
	return v, true, nil
}

// ReadVoltage returns the average of the raw voltage samples read within one
// sample period. Failed or missing samples are skipped, ErrNoSamples is
// returned if no sample could be read at all.
func (d *Driver) ReadVoltage() (float32, error) {
	samples, err := average.Collect(d.policy, d.sleep, d.sampleVoltage)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoSamples, err)
	}
	return average.Mean(samples), nil
}

// Reading returns the photosynthetically active radiation in micromoles.
//
// The calibration is read first if it is not loaded. ErrInvalidReading is
// returned if the averaged voltage equals InvalidVoltage.
func (d *Driver) Reading() (float32, error) {
	v, err := d.reading()
	if err != nil {
		d.metrics.ReadingErrCount.Add(1)
		return 0, err
	}
	d.metrics.ReadingCount.Add(1)
	return v, nil
}

func (d *Driver) reading() (float32, error) {
	if d.state != ReadyState {
		if err := d.Calibrate(); err != nil {
			return 0, err
		}
	}
	cal := d.cal

	voltage, err := d.ReadVoltage()
	if err != nil {
		return 0, err
	}
	if voltage == InvalidVoltage {
		return 0, ErrInvalidReading
	}
	return cal.Micromoles(voltage), nil
}

func (d *Driver) ack(cmd Command) error {
	payload, err := d.transact(cmd)
	if err != nil {
		return err
	}
	if err := checkPayload(payload); err != nil {
		return fmt.Errorf("%s: missing acknowledge %w", cmd, err)
	}
	return nil
}

// SetCalibration stores a calibration pair on the sensor.
// The calibration is read back from the sensor before the next reading.
func (d *Driver) SetCalibration(offset, multiplier float32) error {
	if err := d.ack(SetCalibrationCmd(offset, multiplier)); err != nil {
		return err
	}
	d.state = CalibratingState
	d.logger.Info("calibration stored", "multiplier", multiplier, "offset", offset)
	return nil
}

// SerialNumber returns the serial number of the sensor.
func (d *Driver) SerialNumber() (uint32, error) {
	payload, err := d.transact(ReadSerialNumberCmd)
	if err != nil {
		return 0, err
	}
	return parseUint32(payload)
}

// LoggingCount returns the number of entries logged by the sensor.
func (d *Driver) LoggingCount() (uint32, error) {
	payload, err := d.transact(GetLoggingCountCmd)
	if err != nil {
		return 0, err
	}
	return parseUint32(payload)
}

// LoggedEntry returns the voltage of the logged entry with index idx.
func (d *Driver) LoggedEntry(idx uint32) (float32, error) {
	payload, err := d.transact(GetLoggedEntryCmd(idx))
	if err != nil {
		return 0, err
	}
	return parseFloat32(payload)
}

// EraseLoggedData deletes all logged entries on the sensor.
func (d *Driver) EraseLoggedData() error {
	return d.ack(EraseLoggedDataCmd)
}
