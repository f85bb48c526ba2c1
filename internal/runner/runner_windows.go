//go:build windows

package runner

import (
	"os/exec"
	"syscall"
)

// setProcessGroup is a no-op on Windows; WaitDelay still bounds Wait
// when descendants hold the output pipes
func setProcessGroup(_ *exec.Cmd) {}

// signalGroup approximates group signalling: SIGTERM maps to the only
// soft signal the platform supports, everything else kills outright
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if sig == syscall.SIGTERM {
		if err := cmd.Process.Signal(sig); err == nil {
			return nil
		}
	}
	return cmd.Process.Kill()
}
