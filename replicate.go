package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ava1ar/zfs-send-receive/config"
	"github.com/ava1ar/zfs-send-receive/env"
	"github.com/ava1ar/zfs-send-receive/logger"
	"github.com/ava1ar/zfs-send-receive/model"
	"github.com/ava1ar/zfs-send-receive/retention"
	"github.com/ava1ar/zfs-send-receive/transport"
)

// Error kinds a run can fail with. The process exit status is 1 for all
// of them; the kinds exist for wrapping and for tests.
var (
	ErrValidation      = errors.New("invalid arguments")
	ErrUnreachable     = errors.New("remote host unreachable")
	ErrDatasetNotFound = errors.New("dataset not found")
)

type pinger interface {
	Ping(log logger.Logger, timeout time.Duration) error
}

// Replicator sequences one replication run: preflight, inventory, plan,
// transfer, then retention on both ends. All state is read fresh from the
// storage engine; nothing persists between invocations.
type Replicator struct {
	config    config.Config
	log       logger.Logger
	local     *env.ZFS
	remote    *env.ZFS
	remoteCh  pinger
	transport transport.Transport
	now       func() time.Time
}

func NewReplicator(conf config.Config) (*Replicator, error) {
	t, err := transport.New(conf.Transport, transport.Options{
		Host:           conf.Remote,
		Port:           conf.ListenerPort,
		SettleDelay:    time.Duration(conf.SettleDelay),
		ConnectTimeout: time.Duration(conf.ConnectTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	remote := env.NewRemote(conf.Remote)
	return &Replicator{
		config:    conf,
		log:       logger.New(conf.Source),
		local:     env.NewZFS(env.Local),
		remote:    env.NewZFS(remote),
		remoteCh:  remote,
		transport: t,
		now:       time.Now,
	}, nil
}

func (r *Replicator) Run(ctx context.Context) error {
	conf := r.config

	if err := r.preflight(); err != nil {
		return err
	}

	localSnaps, err := r.local.GetSnapshots(r.log, conf.Source, conf.Prefix)
	if err != nil {
		return fmt.Errorf("inventorying source: %w", err)
	}
	remoteSnaps, err := r.remote.GetSnapshots(r.log, conf.Dest, conf.Prefix)
	if err != nil {
		return fmt.Errorf("inventorying destination: %w", err)
	}
	destExists, err := r.remote.DatasetExists(r.log, conf.Dest)
	if err != nil {
		return fmt.Errorf("checking destination dataset: %w", err)
	}

	next := model.NextSnapshotName(conf.Prefix, r.now(), localSnaps)
	plan := model.NewPlan(localSnaps, remoteSnaps, destExists, next)
	r.log.Printf("plan: %s", plan)

	if err := r.transfer(ctx, plan); err != nil {
		return err
	}

	// Best effort on both ends; a retention failure never fails the run.
	if _, err := retention.Enforce(r.log, r.local, conf.Source, conf.Prefix, conf.Keep, conf.DryRun, conf.Verbose > 0); err != nil {
		r.log.Printf("warning: source retention: %s", err)
	}
	if _, err := retention.Enforce(r.log, r.remote, conf.Dest, conf.Prefix, conf.Keep, conf.DryRun, conf.Verbose > 0); err != nil {
		r.log.Printf("warning: destination retention: %s", err)
	}

	return nil
}

// preflight validates the run before anything mutates. Reads are cheap
// and safe; every check here aborts with no snapshot created and no
// rename performed.
func (r *Replicator) preflight() error {
	conf := r.config

	if err := r.remoteCh.Ping(r.log, time.Duration(conf.PingTimeout)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if ok, err := r.local.DatasetExists(r.log, conf.Source); err != nil {
		return fmt.Errorf("checking source dataset: %w", err)
	} else if !ok {
		return fmt.Errorf("%w: source dataset '%s'", ErrDatasetNotFound, conf.Source)
	}

	destExists, err := r.remote.DatasetExists(r.log, conf.Dest)
	if err != nil {
		return fmt.Errorf("checking destination dataset: %w", err)
	}
	if !destExists {
		// An existing dataset already implies its pool exists.
		pool := strings.SplitN(conf.Dest, "/", 2)[0]
		if ok, err := r.remote.PoolExists(r.log, pool); err != nil {
			return fmt.Errorf("checking destination pool: %w", err)
		} else if !ok {
			return fmt.Errorf("%w: destination pool '%s'", ErrDatasetNotFound, pool)
		}
	}

	return nil
}
