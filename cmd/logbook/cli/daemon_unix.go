//go:build !windows

package cli

import (
	"os"
	"os/exec"
	"syscall"
)

// setSysProcAttr detaches the `serve --background` child into its own
// session so closing the launching terminal does not take the server down.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

// signalProcess sends sig to pid. Signal 0 probes liveness without touching
// the process.
func signalProcess(pid int, sig syscall.Signal) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(sig)
}

// isProcessRunning reports whether the recorded server PID is still alive.
func isProcessRunning(pid int) bool {
	return signalProcess(pid, syscall.Signal(0)) == nil
}

// stopProcess asks the server to shut down gracefully. SIGTERM triggers the
// same drain path as Ctrl-C on a foreground serve.
func stopProcess(pid int) error {
	return signalProcess(pid, syscall.SIGTERM)
}
