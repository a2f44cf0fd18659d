// Package reliability_test drives the endpointbench binary end to end
// through scripted command sequences, the way the teacher's own E2E suite
// drives its OpenVPN client against recorded network conditions.
package reliability_test

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/netrelay/rudp/internal/endpointbenchcmd"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"endpointbench": endpointbenchcmd.Main,
	}))
}

func TestLoss(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
