//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the child in a new process group and makes
// cancellation kill the whole group.
func setProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
	}
}

//Personal.AI order the ending
