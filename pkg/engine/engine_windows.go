//go:build windows
// +build windows

package engine

import (
	"os/exec"
	"syscall"
)

// setupProcAttr configures platform-specific process attributes. On Windows,
// this prevents Delve from creating a console window.
func setupProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}

// killProcessGroup kills the dlv process; Windows has no process groups to
// signal, so child cleanup is left to dlv itself.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
}
