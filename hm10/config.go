package hm10

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds every transfer except the connect
	// confirmation. Modules have been seen to fail below 160ms.
	DefaultTimeout = 320 * time.Millisecond
	// DefaultSettleDelay is the wait after Reset and Renew before the module
	// accepts further commands.
	DefaultSettleDelay = time.Second
	// DefaultConnectTimeout bounds the wait for OK+CONN after a connect
	// command was accepted.
	DefaultConnectTimeout = 11 * time.Second
	// DefaultFlushLimit caps the number of single byte reads spent
	// discarding stale input before a command.
	DefaultFlushLimit = 512
)

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	return nil
}

// Config holds the settings of a Device. Build one with NewConfigBuilder.
type Config struct {
	dialer         Dialer
	timeout        time.Duration
	settleDelay    time.Duration
	connectTimeout time.Duration
	flushLimit     int
	logger         logrus.FieldLogger
	trace          bool
	clock          Clock
	metrics        *Metrics
	probe          bool
}

func (c *Config) setDefaults() {
	if c.timeout == 0 {
		c.timeout = DefaultTimeout
	}
	if c.settleDelay == 0 {
		c.settleDelay = DefaultSettleDelay
	}
	if c.connectTimeout == 0 {
		c.connectTimeout = DefaultConnectTimeout
	}
	if c.flushLimit == 0 {
		c.flushLimit = DefaultFlushLimit
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger()
	}
	if c.clock == nil {
		c.clock = systemClock{}
	}
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets how the transport is opened. Required.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

// WithTimeout sets the per transfer timeout used for commands, responses
// and input flushing.
func (b *ConfigBuilder) WithTimeout(d time.Duration) *ConfigBuilder {
	b.config.timeout = d
	return b
}

func (b *ConfigBuilder) WithSettleDelay(d time.Duration) *ConfigBuilder {
	b.config.settleDelay = d
	return b
}

func (b *ConfigBuilder) WithConnectTimeout(d time.Duration) *ConfigBuilder {
	b.config.connectTimeout = d
	return b
}

func (b *ConfigBuilder) WithFlushLimit(n int) *ConfigBuilder {
	b.config.flushLimit = n
	return b
}

func (b *ConfigBuilder) WithLogger(l logrus.FieldLogger) *ConfigBuilder {
	b.config.logger = l
	return b
}

// WithTrace enables step by step debug logging of every transaction.
func (b *ConfigBuilder) WithTrace(enabled bool) *ConfigBuilder {
	b.config.trace = enabled
	return b
}

func (b *ConfigBuilder) WithClock(c Clock) *ConfigBuilder {
	b.config.clock = c
	return b
}

func (b *ConfigBuilder) WithMetrics(m *Metrics) *ConfigBuilder {
	b.config.metrics = m
	return b
}

// WithProbe makes New send a test command before returning the Device.
//
// Leave it off when the module may already be connected: on a live link the
// test command drops the connection.
func (b *ConfigBuilder) WithProbe(enabled bool) *ConfigBuilder {
	b.config.probe = enabled
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
