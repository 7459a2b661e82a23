package target

import (
	"os"
	"testing"
)

// TestMain lets the test binary host Go invocations the way the diffgen binary
// does through its hidden subcommand.
func TestMain(m *testing.M) {
	if len(os.Args) > 1 && os.Args[1] == InvokeCommand {
		os.Exit(hostMain(os.Args[2:]))
	}
	os.Exit(m.Run())
}

func hostMain(args []string) int {
	check := len(args) > 0 && args[0] == "--check"
	if check {
		args = args[1:]
	}
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) != 2 {
		return 2
	}
	if err := ServeGo(args[0], args[1], check, os.Stdin, os.Stdout); err != nil {
		return 1
	}
	return 0
}
