// Command endpointbench is a small demo binary around the rudp library: it
// wires two Clients over an in-memory carrier host and times a
// ping/pong round trip exchange, the way the teacher's own cmd/ binaries
// exercise its library rather than gate its public contract. The actual
// logic lives in internal/endpointbenchcmd so E2E's scripted tests can
// drive it without forking a real process.
package main

import (
	"os"

	"github.com/netrelay/rudp/internal/endpointbenchcmd"
)

func main() {
	os.Exit(endpointbenchcmd.Main())
}
