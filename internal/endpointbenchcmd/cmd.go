// Package endpointbenchcmd holds cmd/endpointbench's logic as an importable
// package, so both the real binary and the scripted E2E tests in E2E/ can
// call the same entry point.
package endpointbenchcmd

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/pborman/getopt/v2"

	"github.com/netrelay/rudp"
	"github.com/netrelay/rudp/internal/dispatcher"
	"github.com/netrelay/rudp/internal/hostsim"
)

// Main parses flags from os.Args, runs the benchmark, and returns the
// process exit code. It never calls os.Exit itself, so tests can invoke it
// directly (e.g. under [github.com/rogpeppe/go-internal/testscript]'s
// RunMain) and observe the result without forking a real process.
func Main() int {
	count := getopt.IntLong("count", 'n', 1000, "number of ping/pong round trips to run")
	size := getopt.IntLong("size", 's', 64, "payload size in bytes per ping")
	timeoutSeconds := getopt.IntLong("timeout", 't', 30, "max seconds to wait for completion")
	dropEvery := getopt.IntLong("drop-every", 'l', 0, "drop every Nth outbound M-carrier call, to exercise retransmission (0 disables)")
	verbose := getopt.Bool('v', "enable debug logging")
	getopt.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}

	if err := run(*count, *size, *dropEvery, time.Duration(*timeoutSeconds)*time.Second); err != nil {
		fmt.Fprintln(os.Stderr, "endpointbench:", err)
		return 1
	}
	return 0
}

func run(count, size, dropEvery int, timeout time.Duration) error {
	var client, server *rudp.Client
	sSlotSize := dispatcher.NewConfig().SMaxPacketSize() + hostsim.FrameHeaderSize
	hostClient, hostServer := hostsim.NewLinkedHosts(1024, sSlotSize, "bench-client", "bench-server",
		func(peer string, role dispatcher.Role, header uint32, payload []byte) {
			client.OnReceive(peer, role, header, payload)
		},
		func(peer string, role dispatcher.Role, header uint32, payload []byte) {
			server.OnReceive(peer, role, header, payload)
		},
	)

	if dropEvery > 0 {
		// Pre-mark every Nth outbound M call as lost; the reliable
		// endpoint's own resend timer is what's actually under test here,
		// not a live randomized loss process.
		m := hostClient.OutboundMCarrier()
		for seq := dropEvery; seq <= count*4; seq += dropEvery {
			m.DropCall(seq)
		}
	}

	client = rudp.NewClient(hostClient, rudp.NewConfig(rudp.WithLogger(log.Log)))
	server = rudp.NewClient(hostServer, rudp.NewConfig(rudp.WithLogger(log.Log)))
	defer client.Shutdown()
	defer server.Shutdown()

	if err := client.AttachPeer("bench-server"); err != nil {
		return err
	}
	if err := server.AttachPeer("bench-client"); err != nil {
		return err
	}
	client.UnlockPeer("bench-server")
	server.UnlockPeer("bench-client")

	server.ConnectForPeer("bench-client", "ping", func(peer string, args [][]byte) {
		if err := server.BroadcastToPeer(peer, "pong", args[0]); err != nil {
			log.WithError(err).Warn("endpointbench: server failed to reply")
		}
	})

	var replies atomic.Int64
	client.ConnectForPeer("bench-server", "pong", func(peer string, args [][]byte) {
		replies.Add(1)
	})

	payload := make([]byte, size)
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(2 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hostClient.Flush()
				hostServer.Flush()
			case <-stop:
				return
			}
		}
	}()

	start := time.Now()
	for i := 0; i < count; i++ {
		if err := client.BroadcastToPeer("bench-server", "ping", payload); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(timeout)
	for replies.Load() < int64(count) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	elapsed := time.Since(start)

	got := replies.Load()
	fmt.Printf("sent=%d received=%d elapsed=%s rate=%.0f msg/s\n",
		count, got, elapsed, float64(got)/elapsed.Seconds())
	if got < int64(count) {
		return fmt.Errorf("only received %d/%d round trips before timing out", got, count)
	}
	return nil
}
