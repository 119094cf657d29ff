package transport

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ava1ar/zfs-send-receive/env"
	"github.com/ava1ar/zfs-send-receive/logger"
)

// SSH pipes the send stream straight into a remote receive invocation.
// One logical operation: either end failing fails the pair.
type SSH struct {
	Host string
}

func (t *SSH) Name() string {
	return "ssh"
}

func (t *SSH) Run(ctx context.Context, log logger.Logger, spec Spec) error {
	send := exec.Command(spec.Send[0], spec.Send[1:]...)
	recv := exec.Command("ssh", t.Host, strings.Join(spec.Recv, " "))
	if err := env.Pipe(ctx, log, send, recv); err != nil {
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	return nil
}
