package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"i4.energy/across/hm10/hm10"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `mapstructure:"bind_address"`
	// SerialPort is the path to the module's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string `mapstructure:"serial_port"`
	// BaudRate is the UART speed of the module (factory default 9600)
	BaudRate int `mapstructure:"baud_rate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `mapstructure:"log_level"`
	// LogFormat is either "text" or "json"
	LogFormat string `mapstructure:"log_format"`
	// LogFile enables a rotating log file instead of stderr
	LogFile string `mapstructure:"log_file"`
	// Timeout bounds every AT command transfer
	Timeout time.Duration `mapstructure:"timeout"`
	// SettleDelay is the wait after reset and renew
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	// ConnectTimeout bounds the wait for an established connection
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// Trace logs every step of every transaction at debug level
	Trace bool `mapstructure:"trace"`
	// Simulate runs against an in-memory module instead of a serial port
	Simulate bool `mapstructure:"simulate"`
	// Profile is a YAML file with settings applied at startup
	Profile string `mapstructure:"profile"`
}

// configKeys lists every key that can be set from a file or the
// environment.
var configKeys = []string{
	"bind_address",
	"serial_port",
	"baud_rate",
	"log_level",
	"log_format",
	"log_file",
	"timeout",
	"settle_delay",
	"connect_timeout",
	"trace",
	"simulate",
	"profile",
}

// envPrefix is prepended to every key to form its environment variable,
// e.g. HM10_SERIAL_PORT.
const envPrefix = "HM10"

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if !c.Simulate && c.SerialPort == "" {
		return errors.New("serial port is required unless simulating")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	if c.Timeout <= 0 || c.SettleDelay <= 0 || c.ConnectTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = hm10.DefaultBaudRate
		c.LogLevel = "info"
		c.LogFormat = "text"
		c.Timeout = hm10.DefaultTimeout
		c.SettleDelay = hm10.DefaultSettleDelay
		c.ConnectTimeout = hm10.DefaultConnectTimeout
		return nil
	}
}

// WithFile loads configuration from a YAML, TOML or JSON file. Keys missing
// from the file keep their current value. An empty path is a no-op.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}

		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if err := v.Unmarshal(c); err != nil {
			return fmt.Errorf("failed to unmarshal config file: %w", err)
		}
		return nil
	}
}

// WithEnv loads configuration from HM10_ prefixed environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		v := viper.New()
		v.SetEnvPrefix(envPrefix)
		for _, key := range configKeys {
			if err := v.BindEnv(key); err != nil {
				return err
			}
		}
		if err := v.Unmarshal(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var err error
		fSet.Visit(func(f *flag.Flag) {
			value := f.Value.String()
			switch f.Name {
			case "bind-address":
				c.BindAddress = value
			case "serial-port":
				c.SerialPort = value
			case "baud-rate":
				if b, perr := strconv.Atoi(value); perr == nil {
					c.BaudRate = b
				} else {
					err = errors.Join(err, fmt.Errorf("-baud-rate: %w", perr))
				}
			case "log-level":
				c.LogLevel = value
			case "log-format":
				c.LogFormat = value
			case "log-file":
				c.LogFile = value
			case "timeout":
				err = errors.Join(err, setDuration(&c.Timeout, f))
			case "settle-delay":
				err = errors.Join(err, setDuration(&c.SettleDelay, f))
			case "connect-timeout":
				err = errors.Join(err, setDuration(&c.ConnectTimeout, f))
			case "trace":
				c.Trace = value == "true"
			case "simulate":
				c.Simulate = value == "true"
			case "profile":
				c.Profile = value
			}
		})
		return err
	}
}

func setDuration(dst *time.Duration, f *flag.Flag) error {
	d, err := time.ParseDuration(f.Value.String())
	if err != nil {
		return fmt.Errorf("-%s: %w", f.Name, err)
	}
	*dst = d
	return nil
}
