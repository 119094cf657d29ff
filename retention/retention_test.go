package retention

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ava1ar/zfs-send-receive/env"
	"github.com/ava1ar/zfs-send-receive/logger"
	"github.com/ava1ar/zfs-send-receive/model"
)

type fakeExecutor struct {
	out  map[string][]string
	errs map[string]error
	cmds []string
}

func (f *fakeExecutor) Exec(log logger.Logger, cmd ...string) ([]string, error) {
	joined := strings.Join(cmd, " ")
	f.cmds = append(f.cmds, joined)
	if err, ok := f.errs[joined]; ok {
		return nil, err
	}
	return f.out[joined], nil
}

func (f *fakeExecutor) Execf(log logger.Logger, s string, args ...any) ([]string, error) {
	return f.Exec(log, strings.Fields(fmt.Sprintf(s, args...))...)
}

func listOutput() map[string][]string {
	return map[string][]string{
		"zfs list -H -t snapshot -o name -d 1 tank/data": {
			"tank/data@backup_1",
			"tank/data@backup_2",
			"tank/data@backup_3",
			"tank/data@backup_4",
			"tank/data@manual-snap",
		},
	}
}

func TestEnforce(t *testing.T) {
	x := &fakeExecutor{out: listOutput()}

	destroyed, err := Enforce(logger.Nop(), env.NewZFS(x), "tank/data", "backup", 2, false, false)
	if err != nil {
		t.Fatalf("Enforce: %s", err)
	}

	want := []model.SnapshotName{"backup_1", "backup_2"}
	if diff := cmp.Diff(want, destroyed); diff != "" {
		t.Errorf("destroyed mismatch (-want +got):\n%s", diff)
	}

	for _, cmd := range x.cmds {
		if strings.Contains(cmd, "backup_3") || strings.Contains(cmd, "backup_4") || strings.Contains(cmd, "manual-snap") {
			if strings.HasPrefix(cmd, "zfs destroy") {
				t.Errorf("destroyed a snapshot that should be retained: %s", cmd)
			}
		}
	}
}

func TestEnforce_KeepCoversAll(t *testing.T) {
	x := &fakeExecutor{out: listOutput()}

	destroyed, err := Enforce(logger.Nop(), env.NewZFS(x), "tank/data", "backup", 10, false, false)
	if err != nil {
		t.Fatalf("Enforce: %s", err)
	}
	if destroyed != nil {
		t.Errorf("destroyed=%v; expect: nil", destroyed)
	}
	if len(x.cmds) != 1 {
		t.Errorf("expected only the list command, got: %v", x.cmds)
	}
}

func TestEnforce_KeepZeroDestroysEverything(t *testing.T) {
	x := &fakeExecutor{out: listOutput()}

	destroyed, err := Enforce(logger.Nop(), env.NewZFS(x), "tank/data", "backup", 0, false, false)
	if err != nil {
		t.Fatalf("Enforce: %s", err)
	}
	want := []model.SnapshotName{"backup_1", "backup_2", "backup_3", "backup_4"}
	if diff := cmp.Diff(want, destroyed); diff != "" {
		t.Errorf("destroyed mismatch (-want +got):\n%s", diff)
	}
}

func TestEnforce_DestroyFailureContinues(t *testing.T) {
	x := &fakeExecutor{
		out: listOutput(),
		errs: map[string]error{
			"zfs destroy tank/data@backup_1": errors.New("snapshot is busy"),
		},
	}

	destroyed, err := Enforce(logger.Nop(), env.NewZFS(x), "tank/data", "backup", 2, false, false)
	if err != nil {
		t.Fatalf("a failed destroy must not fail enforcement, got: %s", err)
	}
	want := []model.SnapshotName{"backup_2"}
	if diff := cmp.Diff(want, destroyed); diff != "" {
		t.Errorf("destroyed mismatch (-want +got):\n%s", diff)
	}
}
