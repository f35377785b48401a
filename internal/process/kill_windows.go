//go:build windows

// Package process terminates browser process trees left behind by the
// rendering engine.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup force-kills pid and its child processes with taskkill /T.
// It reports whether taskkill succeeded; pids <= 0 are ignored.
func KillProcessGroup(pid int) bool {
	if pid <= 0 {
		return false
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() == nil
}
