//go:build !linux && !darwin && !freebsd

package engineproto

import "os/exec"

func setProcAttr(c *exec.Cmd) error {
	// Process-group isolation beyond the default is POSIX-specific;
	// elsewhere (Windows) os/exec's CREATE_NEW_PROCESS_GROUP equivalent is
	// not set here and affinity is a no-op.
	return nil
}

func setAffinity(pid int, cpus []int) error {
	return nil
}
