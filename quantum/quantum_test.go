package quantum

import (
	"math"
	"testing"
	"time"

	"github.com/pico-cs/go-quantum/logger"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCalibrate(t *testing.T) {
	pairs := []Calibration{
		{Offset: 0.5, Multiplier: 2.0},
		{Offset: 0, Multiplier: 0},
		{Offset: -1.25, Multiplier: 1234.5},
		{Offset: 0.0021, Multiplier: 0.0833},
		{Offset: math.MaxFloat32, Multiplier: math.SmallestNonzeroFloat32},
	}

	for _, cal := range pairs {
		require := require.New(t)

		dev := newFakeDevice()
		dev.queue(CodeReadCalibration, calibrationResponse(cal.Offset, cal.Multiplier))
		d := newTestDriver(t, &fakeDialer{dev: dev})

		require.Equal(ReadyState, d.State())
		got, ok := d.Calibration()
		require.True(ok)
		require.Equal(cal, got)
		require.Equal([][]byte{{0x83, '!'}}, dev.writes)
	}
}

func TestCalibrateFailure(t *testing.T) {
	t.Run("ShortTrailer", func(t *testing.T) {
		require := require.New(t)

		dev := newFakeDevice()
		dev.queue(CodeReadCalibration, frame(f32(2.0)))
		d := newTestDriver(t, &fakeDialer{dev: dev})

		require.Equal(UnavailableState, d.State())
		_, ok := d.Calibration()
		require.False(ok)

		err := d.Calibrate()
		require.ErrorIs(err, ErrDecode)
		require.Equal(UnavailableState, d.State())
		// decode errors keep the connection
		require.Equal(ConnectedState, d.ConnState())
	})

	t.Run("ShortFrame", func(t *testing.T) {
		require := require.New(t)

		dev := newFakeDevice()
		dev.queue(CodeReadCalibration, []byte{statusOK, 0x01})
		d := newTestDriver(t, &fakeDialer{dev: dev})

		require.Equal(UnavailableState, d.State())
		cal, ok := d.Calibration()
		require.False(ok)
		require.Zero(cal)
	})

	t.Run("Connect", func(t *testing.T) {
		require := require.New(t)

		dev := newFakeDevice()
		dialer := &fakeDialer{dev: dev, fail: 2}
		d := newTestDriver(t, dialer)
		require.Equal(UnavailableState, d.State())
		require.Empty(dev.writes)

		_, err := d.Reading()
		require.ErrorIs(err, ErrConnect)
		require.ErrorIs(err, ErrIO)
		require.Equal(UnavailableState, d.State())

		dev.queue(CodeReadCalibration, calibrationResponse(0.5, 2.0))
		dev.queue(CodeGetVoltage, voltageResponse(0.6))
		v, err := d.Reading()
		require.NoError(err)
		require.InDelta(200.0, v, 1e-3)
		require.Equal(ReadyState, d.State())
		require.Equal(3, dialer.dials)
		require.EqualValues(2, d.Metrics().ConnectErrCount.Load())
		require.EqualValues(1, d.Metrics().ReadingErrCount.Load())
		require.EqualValues(1, d.Metrics().ReadingCount.Load())
	})
}

func TestReadVoltage(t *testing.T) {
	tests := []struct {
		name      string
		responses [][]byte
		mean      float32
	}{
		{"All", [][]byte{voltageResponse(1), voltageResponse(2), voltageResponse(3), voltageResponse(4), voltageResponse(5)}, 3},
		{"Equal", [][]byte{voltageResponse(0.6), voltageResponse(0.6), voltageResponse(0.6), voltageResponse(0.6), voltageResponse(0.6)}, 0.6},
		{"Missing", [][]byte{{}, voltageResponse(1.5), {}, voltageResponse(2.5), {}}, 2},
		{"Short", [][]byte{{statusOK, 0x01, 0x02}, voltageResponse(0.25), {statusOK}, voltageResponse(0.75), voltageResponse(0.5)}, 0.5},
		{"Single", [][]byte{{}, {}, {}, {}, voltageResponse(9999)}, 9999},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			dev := newFakeDevice()
			dev.queue(CodeReadCalibration, calibrationResponse(0.5, 2.0))
			dev.queue(CodeGetVoltage, test.responses...)
			d := newTestDriver(t, &fakeDialer{dev: dev})

			v, err := d.ReadVoltage()
			require.NoError(err)
			require.InDelta(test.mean, v, 1e-5)
			require.Len(dev.writes, 1+DefaultSampleAttempts)
			for _, w := range dev.writes[1:] {
				require.Equal([]byte{0x55, '!'}, w)
			}
		})
	}
}

func TestReadVoltageNoSamples(t *testing.T) {
	require := require.New(t)

	dev := newFakeDevice()
	dev.queue(CodeReadCalibration, calibrationResponse(0.5, 2.0))
	dev.queue(CodeGetVoltage, []byte{}, []byte{}, []byte{}, []byte{}, []byte{})
	d := newTestDriver(t, &fakeDialer{dev: dev})

	_, err := d.ReadVoltage()
	require.ErrorIs(err, ErrNoSamples)
	require.NotErrorIs(err, ErrInvalidReading)
	require.EqualValues(DefaultSampleAttempts, d.Metrics().SampleMissCount.Load())

	_, err = d.Reading()
	require.ErrorIs(err, ErrNoSamples)
	// the driver stays usable
	require.Equal(ReadyState, d.State())
}

func TestReading(t *testing.T) {
	tests := []struct {
		name    string
		cal     Calibration
		voltage float32
		reading float32
	}{
		{"Scenario", Calibration{Offset: 0.5, Multiplier: 2.0}, 0.6, 200.0},
		{"Zero", Calibration{Offset: 0.5, Multiplier: 2.0}, 0.5, 0},
		{"Clamp", Calibration{Offset: 0.5, Multiplier: 2.0}, 0.4, 0},
		{"ClampNegativeMultiplier", Calibration{Offset: 0, Multiplier: -1}, 1, 0},
		{"Large", Calibration{Offset: 0.0021, Multiplier: 4.0}, 0.5021, 2000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			dev := newFakeDevice()
			dev.queue(CodeReadCalibration, calibrationResponse(test.cal.Offset, test.cal.Multiplier))
			for i := 0; i < DefaultSampleAttempts; i++ {
				dev.queue(CodeGetVoltage, voltageResponse(test.voltage))
			}
			d := newTestDriver(t, &fakeDialer{dev: dev})

			v, err := d.Reading()
			require.NoError(err)
			if test.reading == 0 {
				require.Equal(float32(0), v)
			} else {
				require.InDelta(test.reading, v, 1e-2)
			}
		})
	}
}

func TestReadingInvalidVoltage(t *testing.T) {
	require := require.New(t)

	dev := newFakeDevice()
	dev.queue(CodeReadCalibration, calibrationResponse(0.5, 2.0))
	dev.queue(CodeGetVoltage, voltageResponse(9999), []byte{}, voltageResponse(9999), []byte{}, voltageResponse(9999))
	d := newTestDriver(t, &fakeDialer{dev: dev})

	v, err := d.Reading()
	require.ErrorIs(err, ErrInvalidReading)
	require.NotErrorIs(err, ErrNoSamples)
	require.Zero(v)
	require.Equal(ReadyState, d.State())
}

func TestReadingWriteFailure(t *testing.T) {
	require := require.New(t)

	const voltage = 0.75

	dev := newFakeDevice()
	dev.queue(CodeReadCalibration, calibrationResponse(0.5, 2.0))
	for i := 0; i < 4; i++ {
		dev.queue(CodeGetVoltage, voltageResponse(voltage))
	}
	dev.failWrite[1+3] = true // write 1: calibration, write 4: third voltage attempt
	dialer := &fakeDialer{dev: dev}
	d := newTestDriver(t, dialer)

	v, err := d.Reading()
	require.NoError(err)
	require.InDelta(Calibration{Offset: 0.5, Multiplier: 2.0}.Micromoles(voltage), v, 1e-3)
	require.Len(dev.writes, 1+DefaultSampleAttempts)

	// the connection was dropped and reopened by the fourth attempt
	m := d.Metrics()
	require.EqualValues(1, m.TeardownCount.Load())
	require.EqualValues(2, m.ConnectCount.Load())
	require.EqualValues(1, m.SampleMissCount.Load())
	require.Equal(2, dialer.dials)

	// the transport failure forces a recalibration before the next reading
	require.Equal(CalibratingState, d.State())
	dev.queue(CodeReadCalibration, calibrationResponse(0.25, 4.0))
	dev.queue(CodeGetVoltage, voltageResponse(voltage))
	v, err = d.Reading()
	require.NoError(err)
	require.Equal([]byte{0x83, '!'}, dev.writes[1+DefaultSampleAttempts])
	require.InDelta(2000.0, v, 1e-3)
	require.Equal(ReadyState, d.State())
}

func TestReadingLogsTeardown(t *testing.T) {
	require := require.New(t)

	log := logger.NewMockLogger()
	log.On("Info", mock.Anything, mock.Anything).Maybe()
	log.On("Warn", "connection dropped", mock.Anything).Once()

	dev := newFakeDevice()
	dev.queue(CodeReadCalibration, calibrationResponse(0.5, 2.0))
	dev.queue(CodeGetVoltage, voltageResponse(0.6))
	dev.failWrite[2] = true
	d, err := New("fake", WithDialer((&fakeDialer{dev: dev}).dial), WithLogger(log), WithSleep(func(time.Duration) {}))
	require.NoError(err)

	_, err = d.Reading()
	require.NoError(err)
	log.AssertExpectations(t)
}

func TestCommands(t *testing.T) {
	require := require.New(t)

	dev := newFakeDevice()
	dev.queue(CodeReadCalibration, calibrationResponse(0.5, 2.0))
	d := newTestDriver(t, &fakeDialer{dev: dev})

	dev.queue(CodeReadSerialNumber, frame(u32(1234)))
	sn, err := d.SerialNumber()
	require.NoError(err)
	require.EqualValues(1234, sn)

	dev.queue(CodeGetLoggingCount, frame(u32(42)))
	count, err := d.LoggingCount()
	require.NoError(err)
	require.EqualValues(42, count)

	dev.queue(CodeGetLoggedEntry, frame(f32(0.125)))
	entry, err := d.LoggedEntry(7)
	require.NoError(err)
	require.Equal(float32(0.125), entry)
	require.Equal([]byte{0xf2, 7, 0, 0, 0, '!'}, dev.writes[len(dev.writes)-1])

	dev.queue(CodeEraseLoggedData, frame(u32(0)))
	require.NoError(d.EraseLoggedData())

	// no acknowledge
	require.ErrorIs(d.EraseLoggedData(), ErrDecode)
	_, err = d.SerialNumber()
	require.ErrorIs(err, ErrDecode)
	require.Equal(ReadyState, d.State())

	dev.queue(CodeSetCalibration, frame(u32(0)))
	require.NoError(d.SetCalibration(0.25, 4.0))
	require.Equal(append(append([]byte{0x84}, f32(0.25)...), append(f32(4.0), '!')...), dev.writes[len(dev.writes)-1])
	require.Equal(CalibratingState, d.State())

	dev.queue(CodeReadCalibration, calibrationResponse(0.25, 4.0))
	require.NoError(d.Calibrate())
	cal, ok := d.Calibration()
	require.True(ok)
	require.Equal(Calibration{Offset: 0.25, Multiplier: 4.0}, cal)
}

func TestClose(t *testing.T) {
	require := require.New(t)

	dev := newFakeDevice()
	dev.queue(CodeReadCalibration, calibrationResponse(0.5, 2.0), calibrationResponse(0.5, 2.0))
	dev.queue(CodeGetVoltage, voltageResponse(0.6))
	dialer := &fakeDialer{dev: dev}
	d := newTestDriver(t, dialer)

	require.NoError(d.Close())
	require.Equal(UninitializedState, d.State())
	require.Equal(NotConnectedState, d.ConnState())

	v, err := d.Reading()
	require.NoError(err)
	require.InDelta(200.0, v, 1e-3)
	require.Equal(2, dialer.dials)
}
