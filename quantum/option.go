package quantum

import (
	"errors"
	"time"

	"github.com/pico-cs/go-quantum/logger"
	"github.com/pico-cs/go-quantum/quantum/average"
)

// Default voltage sampling: five samples within one second.
const (
	DefaultSampleAttempts = 5
	DefaultSampleSpacing  = 200 * time.Millisecond
)

// DefaultSamplePolicy is the policy used to average voltage samples.
var DefaultSamplePolicy = average.Policy{
	MaxAttempts: DefaultSampleAttempts,
	Spacing:     DefaultSampleSpacing,
	MinSamples:  1,
}

type config struct {
	dial   Dialer
	logger logger.Logger
	policy average.Policy
	sleep  func(time.Duration)
}

func defaultConfig() *config {
	return &config{
		dial:   SerialDialer,
		logger: logger.GetLogger(),
		policy: DefaultSamplePolicy,
		sleep:  time.Sleep,
	}
}

// An Option configures a driver.
type Option func(cfg *config) error

// WithDialer sets the dialer used to connect to the sensor. The default opens
// a serial port.
func WithDialer(dial Dialer) Option {
	return func(cfg *config) error {
		if dial == nil {
			return errors.New("nil dialer")
		}
		cfg.dial = dial
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errors.New("nil logger")
		}
		cfg.logger = l
		return nil
	}
}

// WithSamplePolicy sets the policy used to average voltage samples.
func WithSamplePolicy(policy average.Policy) Option {
	return func(cfg *config) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		cfg.policy = policy
		return nil
	}
}

// WithSleep replaces time.Sleep between two voltage samples.
func WithSleep(sleep func(time.Duration)) Option {
	return func(cfg *config) error {
		if sleep == nil {
			return errors.New("nil sleep function")
		}
		cfg.sleep = sleep
		return nil
	}
}
