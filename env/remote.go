package env

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ava1ar/zfs-send-receive/logger"
)

var _ Executor = &Remote{}

// Remote runs commands on the destination host over ssh. The channel is
// reused sequentially for inventory, rename, receive and retention calls
// within a run; there is no session pooling.
type Remote struct {
	host string
}

func NewRemote(host string) *Remote {
	return &Remote{host: host}
}

func (remote *Remote) Exec(log logger.Logger, cmd ...string) ([]string, error) {
	return Exec(log, "ssh", remote.host, strings.Join(cmd, " "))
}

func (remote *Remote) Execf(log logger.Logger, s string, args ...any) ([]string, error) {
	return Exec(log, "ssh", remote.host, fmt.Sprintf(s, args...))
}

// Ping probes the remote channel with a bounded connection timeout.
func (remote *Remote) Ping(log logger.Logger, timeout time.Duration) error {
	seconds := int(timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	log.Printf("probing %s", remote.host)
	cmd := exec.Command("ssh",
		"-o", fmt.Sprintf("ConnectTimeout=%d", seconds),
		"-o", "BatchMode=yes",
		remote.host, "true")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("probing '%s': %w: %s", remote.host, err, strings.TrimSpace(string(out)))
	}
	return nil
}
