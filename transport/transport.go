package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ava1ar/zfs-send-receive/logger"
)

// ErrTransfer marks a failed send/receive pair. There is no automatic
// retry; the documented recovery path is re-running the tool.
var ErrTransfer = errors.New("transfer failed")

// Spec holds the two halves of a transfer as argv vectors. Send runs on
// the local host, Recv on the destination host.
type Spec struct {
	Send []string
	Recv []string
}

// Transport moves the send stream into the remote receive invocation.
type Transport interface {
	Name() string
	Run(ctx context.Context, log logger.Logger, spec Spec) error
}

type Options struct {
	Host           string
	Port           int
	SettleDelay    time.Duration
	ConnectTimeout time.Duration
}

// New selects a transport by its command-line name.
func New(name string, opts Options) (Transport, error) {
	switch name {
	case "ssh":
		return &SSH{Host: opts.Host}, nil
	case "nc":
		return &Netcat{
			Host:           opts.Host,
			Port:           opts.Port,
			SettleDelay:    opts.SettleDelay,
			ConnectTimeout: opts.ConnectTimeout,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported transport '%s' (want ssh or nc)", name)
	}
}
