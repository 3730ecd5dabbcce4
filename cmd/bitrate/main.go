// Command bitrate sweeps a sample video across fixed video and audio
// bitrates, measures the renditions, and charts size and quality against
// bitrate.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "bitrate: %v\n", err)
		}
		return 1
	}
	return 0
}
