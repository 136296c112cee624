package fluke45

import (
	"time"

	"github.com/allbin/go-fluke45/logger"
	"github.com/allbin/go-fluke45/serialport"
)

// Config holds the settings shared by the prober and the session
type Config struct {
	BaudRate     int
	Timeout      time.Duration // how long a single line may take to arrive
	PollInterval time.Duration // how often input availability is checked
	SyncAttempts int           // prompt resynchronization attempts

	Opener Opener
	Lister Lister
	Logger logger.Logger
}

// Option is a functional option for configuring the prober and the session
type Option func(*Config) error

// DefaultConfig returns the meter's factory line settings: 9600 baud, 2s per line
func DefaultConfig() Config {
	return Config{
		BaudRate:     9600,
		Timeout:      2 * time.Second,
		PollInterval: 10 * time.Millisecond,
		SyncAttempts: 2,
		Opener:       openSerial,
		Lister:       serialport.ListPorts,
	}
}

func newConfig(opts []Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	return cfg, nil
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if !serialport.ValidBaudRate(rate) {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithTimeout sets the per-line response timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return ErrInvalidConfig
		}
		c.Timeout = timeout
		return nil
	}
}

// WithPollInterval sets how often the line reader checks for input
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) error {
		if interval <= 0 {
			return ErrInvalidConfig
		}
		c.PollInterval = interval
		return nil
	}
}

// WithSyncAttempts sets how many lines resynchronization waits for before giving up
func WithSyncAttempts(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return ErrInvalidConfig
		}
		c.SyncAttempts = n
		return nil
	}
}

// WithOpener replaces the function used to open transports
func WithOpener(open Opener) Option {
	return func(c *Config) error {
		if open == nil {
			return ErrInvalidConfig
		}
		c.Opener = open
		return nil
	}
}

// WithLister replaces the function used to enumerate candidate ports
func WithLister(list Lister) Option {
	return func(c *Config) error {
		if list == nil {
			return ErrInvalidConfig
		}
		c.Lister = list
		return nil
	}
}

// WithLogger sets the logger; the package default logger is used otherwise
func WithLogger(l logger.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return ErrInvalidConfig
		}
		c.Logger = l
		return nil
	}
}
