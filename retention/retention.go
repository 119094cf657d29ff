package retention

import (
	"fmt"

	"github.com/ava1ar/zfs-send-receive/env"
	"github.com/ava1ar/zfs-send-receive/logger"
	"github.com/ava1ar/zfs-send-receive/model"
)

// Enforce keeps the `keep` most recent managed snapshots of dataset and
// destroys the rest, oldest first. Managed names are timestamp-sortable,
// so ascending lexicographic order is chronological order. A failed
// destroy is logged and skipped; the remaining snapshots are still
// attempted. keep=0 destroys every managed snapshot.
func Enforce(log logger.Logger, zfs *env.ZFS, dataset, prefix string, keep int, dryrun, verbose bool) ([]model.SnapshotName, error) {
	snaps, err := zfs.GetSnapshots(log, dataset, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots of '%s': %w", dataset, err)
	}

	names := snaps.Sorted()
	if len(names) <= keep {
		return nil, nil
	}

	var destroyed []model.SnapshotName
	for _, name := range names[:len(names)-keep] {
		if err := zfs.DestroySnapshot(log, dataset, name, dryrun, verbose); err != nil {
			log.Printf("warning: destroying '%s@%s': %s", dataset, name, err)
			continue
		}
		destroyed = append(destroyed, name)
	}
	return destroyed, nil
}
