package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/creack/pty"
)

// runTTY starts cmd on a fresh pseudo-terminal and collects everything it
// writes until the child exits. The pty is closed when ctx ends so a
// descendant holding the slave side open cannot block the read.
func runTTY(ctx context.Context, cmd *exec.Cmd) (string, error) {
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: 200, Rows: 50})
	if err != nil {
		return "", fmt.Errorf("pty start: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			ptmx.Close()
		case <-done:
		}
	}()

	var buf bytes.Buffer
	// Reading the master returns EIO once the child closes the slave.
	_, _ = io.Copy(&limitedWriter{w: &buf, limit: MaxOutputSize}, ptmx)
	ptmx.Close()

	if err := cmd.Wait(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
