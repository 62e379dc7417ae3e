//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills the browser process tree with taskkill
// (/F force, /T include children). Non-positive pids are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
