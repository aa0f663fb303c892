package testsupport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"shipit/internal/services"
)

// Response is the scripted result of one fake command.
type Response struct {
	Output services.Output
	Err    error
}

// OK returns a successful response with the given stdout.
func OK(stdout string) Response {
	return Response{Output: services.Output{Stdout: stdout}}
}

// Fail returns a failed response whose stderr carries message.
func Fail(message string) Response {
	return Response{
		Output: services.Output{Stderr: message, ExitCode: 1},
		Err:    fmt.Errorf("exit status 1: %s", message),
	}
}

// FakeRunner is a spy services.Runner. Commands are matched against scripted
// rules by prefix of "binary arg0 arg1 ..."; unmatched commands succeed with
// empty output. Every invocation is recorded.
type FakeRunner struct {
	mu    sync.Mutex
	rules []rule
	calls []services.Command
}

type rule struct {
	prefix    string
	responses []Response
}

// On scripts responses for commands whose rendered form starts with prefix.
// Responses are consumed in order; the last one repeats once the list is spent.
func (f *FakeRunner) On(prefix string, responses ...Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(responses) == 0 {
		responses = []Response{OK("")}
	}
	f.rules = append(f.rules, rule{prefix: prefix, responses: responses})
	return f
}

// Run implements services.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd services.Command) (services.Output, error) {
	if err := ctx.Err(); err != nil {
		return services.Output{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	rendered := cmd.String()
	for i := range f.rules {
		r := &f.rules[i]
		if !strings.HasPrefix(rendered, r.prefix) {
			continue
		}
		resp := r.responses[0]
		if len(r.responses) > 1 {
			r.responses = r.responses[1:]
		}
		return resp.Output, resp.Err
	}
	return services.Output{}, nil
}

// Calls returns a copy of every recorded command.
func (f *FakeRunner) Calls() []services.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]services.Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Count returns how many recorded commands start with prefix.
func (f *FakeRunner) Count(prefix string) int {
	n := 0
	for _, call := range f.Calls() {
		if strings.HasPrefix(call.String(), prefix) {
			n++
		}
	}
	return n
}

// Rendered returns every recorded command in rendered form.
func (f *FakeRunner) Rendered() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, call := range calls {
		out = append(out, call.String())
	}
	return out
}

// ErrScripted is a convenience error for scripted failures.
var ErrScripted = errors.New("scripted failure")
