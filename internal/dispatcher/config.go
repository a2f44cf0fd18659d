package dispatcher

import (
	"time"

	"github.com/apex/log"

	"github.com/netrelay/rudp/internal/model"
	"github.com/netrelay/rudp/internal/reliable"
	"github.com/netrelay/rudp/internal/unreliable"
)

// Config holds per-role endpoint configuration plus the outbound
// size-based routing thresholds. The zero value is invalid; use
// [NewConfig].
type Config struct {
	sConfig *reliable.Config
	mConfig *reliable.Config
	bConfig *reliable.Config
	uConfig *unreliable.Config

	// sQueueDepthThreshold is the S queue depth above which outbound
	// traffic that would otherwise fit on S spills over onto M.
	sQueueDepthThreshold int

	logger model.Logger
}

// NewConfig returns a Config with the profile defaults from §4.6: S is
// tiny (ability-event scale), M is moderate, B is large, customized by the
// given options.
func NewConfig(options ...Option) *Config {
	cfg := &Config{
		sConfig: reliable.NewConfig(
			reliable.WithSeqBits(4),
			reliable.WithMaxMessageSize(25),
			reliable.WithMaxPacketSize(64),
			reliable.WithUpdateInterval(50*time.Millisecond),
		),
		mConfig: reliable.NewConfig(
			reliable.WithSeqBits(4),
			reliable.WithMaxMessageSize(512),
			reliable.WithMaxPacketSize(900),
			reliable.WithUpdateInterval(50*time.Millisecond),
		),
		bConfig: reliable.NewConfig(
			reliable.WithSeqBits(4),
			reliable.WithMaxMessageSize(16384),
			reliable.WithMaxPacketSize(32768),
			reliable.WithUpdateInterval(100*time.Millisecond),
		),
		uConfig:              unreliable.NewConfig(),
		sQueueDepthThreshold: 4,
		logger:               log.Log,
	}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

// Option configures a [Config].
type Option func(*Config)

// WithSConfig overrides the S endpoint configuration.
func WithSConfig(c *reliable.Config) Option {
	return func(cfg *Config) { cfg.sConfig = c }
}

// WithMConfig overrides the M endpoint configuration.
func WithMConfig(c *reliable.Config) Option {
	return func(cfg *Config) { cfg.mConfig = c }
}

// WithBConfig overrides the B endpoint configuration.
func WithBConfig(c *reliable.Config) Option {
	return func(cfg *Config) { cfg.bConfig = c }
}

// WithUConfig overrides the U endpoint configuration.
func WithUConfig(c *unreliable.Config) Option {
	return func(cfg *Config) { cfg.uConfig = c }
}

// WithSQueueDepthThreshold overrides the S-to-M spillover threshold.
func WithSQueueDepthThreshold(n int) Option {
	return func(cfg *Config) { cfg.sQueueDepthThreshold = n }
}

// WithLogger configures the passed [model.Logger].
func WithLogger(logger model.Logger) Option {
	return func(cfg *Config) { cfg.logger = logger }
}

// SMaxPacketSize returns S's configured max packet size, for callers (e.g.
// a carrier host) that need to size a fixed-width transport slot to
// actually fit S's frames.
func (c *Config) SMaxPacketSize() int {
	return c.sConfig.MaxPacketSize()
}
