package env

import (
	"fmt"
	"strings"

	"github.com/ava1ar/zfs-send-receive/logger"
	"github.com/ava1ar/zfs-send-receive/model"
)

// ZFS issues storage-engine commands through an Executor, which makes the
// same calls work against the local host and the remote one.
type ZFS struct {
	x Executor
}

func NewZFS(x Executor) *ZFS {
	return &ZFS{x: x}
}

// GetSnapshots lists the managed snapshots of dataset. A missing dataset
// is not an error: it just means there is no shared history.
func (zfs *ZFS) GetSnapshots(log logger.Logger, dataset, prefix string) (*model.Set[model.SnapshotName], error) {
	snaps := model.NewSet[model.SnapshotName]()

	rows, err := zfs.x.Execf(log, "zfs list -H -t snapshot -o name -d 1 %s", dataset)
	if err != nil && strings.Contains(err.Error(), "does not exist") {
		return snaps, nil
	} else if err != nil {
		return nil, fmt.Errorf("zfs list: %w", err)
	}

	for _, row := range rows {
		parts := strings.SplitN(row, "@", 2)
		if len(parts) != 2 {
			continue
		}
		name := model.SnapshotName(parts[1])
		if name.Managed(prefix) {
			snaps.Add(name)
		}
	}
	return snaps, nil
}

func (zfs *ZFS) DatasetExists(log logger.Logger, dataset string) (bool, error) {
	_, err := zfs.x.Execf(log, "zfs list -H -o name -d 0 %s", dataset)
	if err != nil && strings.Contains(err.Error(), "does not exist") {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("zfs list: %w", err)
	}
	return true, nil
}

func (zfs *ZFS) PoolExists(log logger.Logger, pool string) (bool, error) {
	_, err := zfs.x.Execf(log, "zpool list -H -o name %s", pool)
	if err != nil && strings.Contains(err.Error(), "no such pool") {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("zpool list: %w", err)
	}
	return true, nil
}

// CreateSnapshot takes a new snapshot of dataset. zfs snapshot has no
// dry-run flag, so in dry-run mode the call is logged and skipped.
func (zfs *ZFS) CreateSnapshot(log logger.Logger, dataset string, name model.SnapshotName, recursive, dryrun bool) error {
	cmd := "zfs snapshot"
	if recursive {
		cmd += " -r"
	}
	if dryrun {
		log.Printf("[dryrun] %s %s@%s", cmd, dataset, name)
		return nil
	}
	if _, err := zfs.x.Execf(log, "%s %s@%s", cmd, dataset, name); err != nil {
		return fmt.Errorf("zfs snapshot: %w", err)
	}
	return nil
}

// RenameDataset sets an existing dataset aside. zfs rename has no dry-run
// flag either.
func (zfs *ZFS) RenameDataset(log logger.Logger, from, to string, dryrun bool) error {
	if dryrun {
		log.Printf("[dryrun] zfs rename %s %s", from, to)
		return nil
	}
	if _, err := zfs.x.Execf(log, "zfs rename %s %s", from, to); err != nil {
		return fmt.Errorf("zfs rename: %w", err)
	}
	return nil
}

func (zfs *ZFS) DestroySnapshot(log logger.Logger, dataset string, name model.SnapshotName, dryrun, verbose bool) error {
	cmd := "zfs destroy"
	if dryrun {
		cmd += " -n"
	}
	if verbose {
		cmd += " -v"
	}
	if _, err := zfs.x.Execf(log, "%s %s@%s", cmd, dataset, name); err != nil {
		return fmt.Errorf("zfs destroy: %w", err)
	}
	return nil
}
