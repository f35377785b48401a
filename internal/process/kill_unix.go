//go:build !windows

// Package process terminates browser process trees left behind by the
// rendering engine.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// Chrome's renderer and GPU children down with it. It reports whether a
// signal was sent; pids <= 1 are ignored.
func KillProcessGroup(pid int) bool {
	if pid <= 1 {
		return false
	}
	return syscall.Kill(-pid, syscall.SIGKILL) == nil
}
