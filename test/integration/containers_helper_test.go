package integration

import (
	"os"
	"path/filepath"
	"strconv"
)

// containersAvailable reports whether a Docker or Podman socket exists,
// so container-backed tests can skip cleanly on machines without one.
func containersAvailable() bool {
	if _, err := os.Stat("/var/run/docker.sock"); err == nil {
		return true
	}
	// Rootless podman puts its socket under the user runtime dir
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		uid := os.Getuid()
		if uid <= 0 {
			return false
		}
		runtimeDir = "/run/user/" + strconv.Itoa(uid)
	}
	_, err := os.Stat(filepath.Join(runtimeDir, "podman", "podman.sock"))
	return err == nil
}
