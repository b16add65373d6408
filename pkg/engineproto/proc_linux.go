//go:build linux

package engineproto

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func setProcAttr(c *exec.Cmd) error {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return nil
}

// setAffinity pins pid to the given CPU set. Child threads created after
// this call inherit the mask; threads the engine already started do not.
// pkg/scheduler calls it on each engine after spawning it and before the
// game's first go command (see pkg/affinity).
func setAffinity(pid int, cpus []int) error {
	if len(cpus) == 0 {
		return nil
	}
	var set unix.CPUSet
	set.Zero()
	for _, c := range cpus {
		set.Set(c)
	}
	return unix.SchedSetaffinity(pid, &set)
}
