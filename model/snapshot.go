package model

import (
	"strings"
	"time"
)

// SnapshotName is the name portion of a zfs snapshot, after the '@'.
type SnapshotName string

// TimestampLayout sorts lexicographically in chronological order.
// Retention and base-snapshot selection both depend on that, so the
// layout must never gain a field that breaks it.
const TimestampLayout = "2006_01_02_15_04_05"

func (name SnapshotName) String() string {
	return string(name)
}

// Managed reports whether this tool created the snapshot.
func (name SnapshotName) Managed(prefix string) bool {
	return strings.HasPrefix(string(name), prefix+"_")
}

// NextSnapshotName generates the name for the snapshot a run will create.
// The result is strictly greater than every existing managed name: when
// the clock collides with (or lags) the newest existing name, the
// timestamp is bumped a second at a time until it clears it.
func NextSnapshotName(prefix string, now time.Time, existing *Set[SnapshotName]) SnapshotName {
	name := timestampName(prefix, now)
	max, ok := existing.Max()
	if !ok {
		return name
	}
	for name <= max {
		now = now.Add(time.Second)
		name = timestampName(prefix, now)
	}
	return name
}

func timestampName(prefix string, t time.Time) SnapshotName {
	return SnapshotName(prefix + "_" + t.UTC().Format(TimestampLayout))
}
