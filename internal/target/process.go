package target

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// waitDelay bounds how long an invocation waits for output pipes after its
// process has been killed.
const waitDelay = time.Second

// Response statuses of the invocation protocol shared by driver.py and ServeGo.
const (
	statusOK        = "ok"
	statusException = "exception"
	statusError     = "error" // implementation could not be loaded or called
)

// response is the single message a hosting process writes as the last line of
// its stdout.
type response struct {
	Status  string       `json:"status"`
	Value   *value.Value `json:"value,omitempty"`
	Class   string       `json:"class,omitempty"`
	Message string       `json:"message,omitempty"`
}

// runHosted runs cmd with args as its stdin and maps the process result to an
// outcome. A killed process is a timeout when ctx expired; a non-zero exit is a
// crash; a load failure reported by the host is a tooling error for name.
func runHosted(ctx context.Context, name string, cmd *exec.Cmd, args []value.Value) (tests.Outcome, error) {
	if args == nil {
		args = []value.Value{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return tests.Outcome{}, errors.Tooling(name, err, "cannot encode arguments")
	}
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() != nil {
		return deadlineOutcome(ctx, start)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(runErr, &exitErr) {
			return tests.Outcome{}, errors.Tooling(name, runErr, "cannot start process")
		}
		o := tests.Crash(crashMessage(runErr, stderr.String()))
		o.Duration = elapsed
		return o, nil
	}

	resp, ok, err := lastResponse(stdout.Bytes())
	if err != nil {
		return tests.Outcome{}, errors.Tooling(name, err, "unparseable host output")
	}
	if !ok {
		o := tests.Crash("exited without reporting a result")
		o.Duration = elapsed
		return o, nil
	}

	var o tests.Outcome
	switch resp.Status {
	case statusOK:
		if resp.Value == nil {
			return tests.Outcome{}, errors.Toolingf(name, "host reported success without a value")
		}
		o = tests.Success(*resp.Value)
	case statusException:
		o = tests.Exception(resp.Class, resp.Message)
	case statusError:
		return tests.Outcome{}, errors.Toolingf(name, "cannot invoke implementation: %s", resp.Message)
	default:
		return tests.Outcome{}, errors.Toolingf(name, "unknown host status %q", resp.Status)
	}
	o.Duration = elapsed
	return o, nil
}

// lastResponse decodes the last non-empty line of out. The bool result is false
// when out is blank.
func lastResponse(out []byte) (response, bool, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return response{}, false, nil
	}
	if i := bytes.LastIndexByte(out, '\n'); i >= 0 {
		out = out[i+1:]
	}
	var resp response
	if err := json.Unmarshal(out, &resp); err != nil {
		return response{}, false, err
	}
	return resp, true, nil
}

// crashMessage keeps the exit status and the most specific stderr line: a Go
// runtime "fatal error:" line when there is one, the last line otherwise (for an
// interpreter abort it names the cause).
func crashMessage(runErr error, stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	for _, l := range lines {
		if strings.HasPrefix(l, "fatal error:") {
			last = strings.TrimSpace(l)
			break
		}
	}
	if last == "" {
		return runErr.Error()
	}
	return fmt.Sprintf("%v: %s", runErr, last)
}
