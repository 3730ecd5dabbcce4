package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Runner executes ffmpeg jobs.
type Runner interface {
	Run(ctx context.Context, job Job) error
}

// ExecRunner runs jobs with a local ffmpeg binary.
type ExecRunner struct {
	Binary string
	// Stderr, when set, receives ffmpeg's stderr in addition to the capture
	// kept for error reporting.
	Stderr io.Writer
}

// NewExecRunner returns a runner for binary, defaulting to "ffmpeg".
func NewExecRunner(binary string) *ExecRunner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &ExecRunner{Binary: binary}
}

// Run executes the job and blocks until ffmpeg exits or ctx is done.
func (r *ExecRunner) Run(ctx context.Context, job Job) error {
	if job.stream == nil {
		return errors.New("ffmpeg: empty job")
	}

	var stderr bytes.Buffer
	var errOut io.Writer = &stderr
	if r.Stderr != nil {
		errOut = io.MultiWriter(&stderr, r.Stderr)
	}

	stream := *job.stream
	stream.Context = streamContext{Context: ctx, values: job.stream.Context}
	stream.Silent(true)
	err := stream.SetFfmpegPath(r.Binary).WithErrorOutput(errOut).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg %s: %w", job.Kind, ctxErr)
		}
		return &ExecError{Kind: job.Kind, Args: job.Args(), Stderr: stderr.String(), Err: err}
	}
	return nil
}

// streamContext takes cancellation from the caller's context and the
// builder options (such as OverWriteOutput) from the stream's own context.
type streamContext struct {
	context.Context
	values context.Context
}

func (c streamContext) Value(key any) any {
	if v := c.values.Value(key); v != nil {
		return v
	}
	return c.Context.Value(key)
}
