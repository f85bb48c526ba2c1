//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the child in its own process group so
// termination signals can cover its descendants
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup delivers sig to the child's process group, falling back
// to the child alone when the group can no longer be resolved
func signalGroup(cmd *exec.Cmd, sig syscall.Signal) error {
	if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
		return syscall.Kill(-pgid, sig)
	}
	return cmd.Process.Signal(sig)
}
