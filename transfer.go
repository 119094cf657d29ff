package main

import (
	"context"
	"fmt"

	"github.com/ava1ar/zfs-send-receive/config"
	"github.com/ava1ar/zfs-send-receive/model"
	"github.com/ava1ar/zfs-send-receive/transport"
)

// transfer realizes a plan: set the destination aside if required, take
// the new source snapshot, then drive the stream through the transport.
// A transfer failure leaves the fresh source snapshot in place; the next
// successful run uses it as the incremental base, or retention prunes it.
func (r *Replicator) transfer(ctx context.Context, plan model.Plan) error {
	conf := r.config

	if plan.RenameRequired {
		aside := fmt.Sprintf("%s_%s", conf.Dest, plan.NewSnapshot)
		r.log.Printf("setting aside existing destination as '%s'", aside)
		if err := r.remote.RenameDataset(r.log, conf.Dest, aside, conf.DryRun); err != nil {
			return fmt.Errorf("renaming destination: %w", err)
		}
	}

	if err := r.local.CreateSnapshot(r.log, conf.Source, plan.NewSnapshot, conf.Recursive, conf.DryRun); err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	spec := transport.Spec{
		Send: sendArgs(conf, plan),
		Recv: recvArgs(conf),
	}
	return r.transport.Run(ctx, r.log, spec)
}

func sendArgs(conf config.Config, plan model.Plan) []string {
	args := []string{"zfs", "send"}
	if conf.Recursive {
		args = append(args, "-R")
	}
	if conf.Properties {
		args = append(args, "-p")
	}
	if conf.Verbose >= 2 {
		args = append(args, "-v")
	}
	if conf.DryRun {
		args = append(args, "-n")
	}
	if plan.Mode == model.Incremental {
		args = append(args, "-i", string(plan.Base))
	}
	return append(args, fmt.Sprintf("%s@%s", conf.Source, plan.NewSnapshot))
}

func recvArgs(conf config.Config) []string {
	args := []string{"zfs", "receive"}
	if conf.Force {
		args = append(args, "-F")
	}
	if conf.Verbose >= 1 {
		args = append(args, "-v")
	}
	if conf.DryRun {
		args = append(args, "-n")
	}
	return append(args, conf.Dest)
}
