package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Command describes one external CLI invocation. Dir is always explicit so the
// process working directory is never consulted or mutated.
type Command struct {
	Dir    string
	Binary string
	Args   []string
	Env    []string
}

// String renders the command for logs.
func (c Command) String() string {
	parts := append([]string{c.Binary}, c.Args...)
	return strings.Join(parts, " ")
}

// Output captures what an external command printed and how it exited.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined joins stdout and stderr for pattern classification.
func (o Output) Combined() string {
	switch {
	case o.Stdout == "":
		return o.Stderr
	case o.Stderr == "":
		return o.Stdout
	default:
		return o.Stdout + "\n" + o.Stderr
	}
}

// Runner abstracts command execution for testability.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Output, error)
}

// ExecRunner runs commands through os/exec. A non-zero exit yields both the
// captured Output and an error wrapping *exec.ExitError.
type ExecRunner struct {
	// OnLine, when set, receives every output line as it is produced.
	OnLine func(stream, line string)
}

// Run executes cmd and blocks until it exits.
func (runner ExecRunner) Run(ctx context.Context, command Command) (Output, error) {
	if strings.TrimSpace(command.Binary) == "" {
		return Output{}, errors.New("command binary required")
	}
	cmd := exec.CommandContext(ctx, command.Binary, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(cmd.Environ(), command.Env...)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Output{}, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Output{}, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Output{ExitCode: -1}, fmt.Errorf("start %s: %w", command.Binary, err)
	}

	var (
		wg      sync.WaitGroup
		scanErr error
		once    sync.Once
		outBuf  bytes.Buffer
		errBuf  bytes.Buffer
	)

	scan := func(r io.Reader, stream string, buf *bytes.Buffer) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			buf.WriteString(line)
			buf.WriteByte('\n')
			if runner.OnLine != nil {
				runner.OnLine(stream, line)
			}
		}
		if err := scanner.Err(); err != nil {
			once.Do(func() {
				scanErr = err
			})
		}
	}

	wg.Add(2)
	go scan(stdout, "stdout", &outBuf)
	go scan(stderr, "stderr", &errBuf)
	wg.Wait()

	waitErr := cmd.Wait()
	out := Output{
		Stdout:   strings.TrimSpace(outBuf.String()),
		Stderr:   strings.TrimSpace(errBuf.String()),
		ExitCode: cmd.ProcessState.ExitCode(),
	}
	if scanErr != nil {
		return out, fmt.Errorf("scan output: %w", scanErr)
	}
	if waitErr != nil {
		return out, fmt.Errorf("%s exited with status %d: %w", command.Binary, out.ExitCode, waitErr)
	}
	return out, nil
}
