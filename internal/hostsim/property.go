package hostsim

import (
	"sync"

	"github.com/netrelay/rudp/internal/baseenc"
)

// PropertyCarrier is an in-memory property-style carrier: set_channel /
// on_channel_change. Setting a channel is last-write-wins and is
// network-replicated to every peer attached to the carrier, mirroring a
// game engine's replicated property.
type PropertyCarrier struct {
	mu       sync.Mutex
	values   map[string]string
	watchers map[string][]func(text string)
}

// NewPropertyCarrier returns an empty PropertyCarrier.
func NewPropertyCarrier() *PropertyCarrier {
	return &PropertyCarrier{
		values:   make(map[string]string),
		watchers: make(map[string][]func(text string)),
	}
}

// OnChannelChange registers handler to fire whenever channel is set.
func (c *PropertyCarrier) OnChannelChange(channel string, handler func(text string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers[channel] = append(c.watchers[channel], handler)
}

// SetChannel overwrites channel with the base-N encoding of payload and
// synchronously notifies every watcher.
func (c *PropertyCarrier) SetChannel(channel string, payload []byte) {
	text := baseenc.Encode(payload)

	c.mu.Lock()
	c.values[channel] = text
	watchers := append([]func(text string){}, c.watchers[channel]...)
	c.mu.Unlock()

	for _, h := range watchers {
		h(text)
	}
}

// Channel returns the current value of channel and whether it has ever been
// set.
func (c *PropertyCarrier) Channel(channel string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.values[channel]
	return text, ok
}
