//go:build !unix

package process

import "os/exec"

// setProcessGroup falls back to killing the direct child only.
func setProcessGroup(c *exec.Cmd) {}

//Personal.AI order the ending
