package reliable

import (
	"time"

	"github.com/apex/log"

	"github.com/netrelay/rudp/internal/model"
)

// Config holds the recognized configuration options for a Reliable
// [Endpoint]. Unknown options are ignored by construction: there is no
// catch-all setter, only the named [Option] constructors below.
type Config struct {
	seqBits                 uint
	maxMessageSize          int
	maxPacketSize           int
	updateInterval          time.Duration
	ackTimeoutFactor        float64
	packetResendDelayFactor float64
	logger                  model.Logger
	now                     func() time.Time
}

// NewConfig returns a Config with the defaults used throughout this
// package's tests (seq_bits=4, i.e. a 16-value space and an 8-packet
// window), further customized by the given options.
func NewConfig(options ...Option) *Config {
	cfg := &Config{
		seqBits:                 4,
		maxMessageSize:          1200,
		maxPacketSize:           1400,
		updateInterval:          50 * time.Millisecond,
		ackTimeoutFactor:        2,
		packetResendDelayFactor: 3,
		logger:                  log.Log,
		now:                     time.Now,
	}
	for _, opt := range options {
		opt(cfg)
	}
	return cfg
}

// Option configures a [Config].
type Option func(*Config)

// WithSeqBits sets the sequence width. The window is derived as
// 2^(seqBits-1), per §4.1's requirement that a window stay within half the
// sequence space.
func WithSeqBits(bits uint) Option {
	return func(c *Config) { c.seqBits = bits }
}

// WithMaxMessageSize sets the largest application message this endpoint
// will accept from Send.
func WithMaxMessageSize(n int) Option {
	return func(c *Config) { c.maxMessageSize = n }
}

// WithMaxPacketSize sets the cap on serialized payload bytes per frame.
func WithMaxPacketSize(n int) Option {
	return func(c *Config) { c.maxPacketSize = n }
}

// WithUpdateInterval sets the nominal tick period this endpoint expects to
// be driven at. It governs the ack-timeout and resend-delay computations,
// not the driver's actual scheduling.
func WithUpdateInterval(d time.Duration) Option {
	return func(c *Config) { c.updateInterval = d }
}

// WithAckTimeoutFactor sets the multiple of UpdateInterval after which an
// ack-only frame is emitted if nothing else has been sent.
func WithAckTimeoutFactor(f float64) Option {
	return func(c *Config) { c.ackTimeoutFactor = f }
}

// WithPacketResendDelayFactor sets the multiple of UpdateInterval after
// which an unacked packet becomes eligible for retransmission.
func WithPacketResendDelayFactor(f float64) Option {
	return func(c *Config) { c.packetResendDelayFactor = f }
}

// WithLogger configures the passed [model.Logger].
func WithLogger(logger model.Logger) Option {
	return func(c *Config) { c.logger = logger }
}

// WithClock overrides the monotonic clock used internally for tests that
// need to drive time deterministically. Production callers should not need
// this: they pass `now` explicitly to every Tick call.
func WithClock(now func() time.Time) Option {
	return func(c *Config) { c.now = now }
}

// MaxMessageSize returns the configured largest accepted message size, for
// callers (e.g. the dispatcher's size-based routing) that need to decide
// which endpoint a message belongs on before calling Send.
func (c *Config) MaxMessageSize() int {
	return c.maxMessageSize
}

// MaxPacketSize returns the configured cap on serialized payload bytes per
// frame, for callers (e.g. a carrier host) that need to size a fixed-width
// transport slot to actually fit a frame this endpoint emits.
func (c *Config) MaxPacketSize() int {
	return c.maxPacketSize
}

func (c *Config) window() uint32 {
	return uint32(1) << (c.seqBits - 1)
}

func (c *Config) ackTimeout() time.Duration {
	return time.Duration(float64(c.updateInterval) * c.ackTimeoutFactor)
}

func (c *Config) resendDelay() time.Duration {
	return time.Duration(float64(c.updateInterval) * c.packetResendDelayFactor)
}
