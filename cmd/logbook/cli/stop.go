package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// stopWait bounds how long we wait for the server to drain after SIGTERM.
// The server's own shutdown timeout is 30s, but an idle register front end
// rarely has in-flight gateway calls to wait on.
const stopWait = 5 * time.Second

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background logbook server",
		Long:  "Stop a logbook server that was started with 'logbook serve --background'.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop()
		},
	}
}

func runStop() error {
	pid, err := readPID()
	if err != nil {
		return fmt.Errorf("no running server found (missing PID file at %s)", pidFilePath())
	}
	if !isProcessRunning(pid) {
		removePID()
		return fmt.Errorf("server (PID %d) is not running (stale PID file removed)", pid)
	}

	fmt.Printf("Stopping logbook server (PID %d)...\n", pid)
	if err := stopProcess(pid); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	deadline := time.Now().Add(stopWait)
	for time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
		if !isProcessRunning(pid) {
			removePID()
			fmt.Println("Server stopped.")
			return nil
		}
	}
	return fmt.Errorf("server (PID %d) did not stop within %s, it may still be draining connections", pid, stopWait)
}
