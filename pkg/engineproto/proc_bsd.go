//go:build darwin || freebsd

package engineproto

import (
	"os/exec"
	"syscall"
)

func setProcAttr(c *exec.Cmd) error {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return nil
}

// CPU affinity syscalls are not available in a portable form on BSD/Darwin;
// the worker simply does not pin engines on these platforms.
func setAffinity(pid int, cpus []int) error {
	return nil
}
