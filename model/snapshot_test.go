package model

import (
	"testing"
	"time"
)

func TestSnapshotName_Managed(t *testing.T) {
	cases := []struct {
		name    SnapshotName
		managed bool
	}{
		{"backup_2024_01_01_00_00_00", true},
		{"backup_x", true},
		{"backupish", false},
		{"manual-snap", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := tc.name.Managed("backup"); got != tc.managed {
			t.Errorf("Managed(%q)=%v; expect: %v", tc.name, got, tc.managed)
		}
	}
}

func TestNextSnapshotName(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)
	got := NextSnapshotName("backup", now, NewSet[SnapshotName]())
	if got != "backup_2024_03_01_12_30_45" {
		t.Errorf("NextSnapshotName=%s; expect: backup_2024_03_01_12_30_45", got)
	}
}

func TestNextSnapshotName_StrictlyIncreasing(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)

	// Same-second collision bumps past the existing name.
	existing := NewSet[SnapshotName]("backup_2024_03_01_12_30_45")
	got := NextSnapshotName("backup", now, existing)
	if got != "backup_2024_03_01_12_30_46" {
		t.Errorf("NextSnapshotName=%s; expect: backup_2024_03_01_12_30_46", got)
	}

	// A stalled clock still clears an existing future name.
	existing = NewSet[SnapshotName]("backup_2024_03_01_12_30_50")
	got = NextSnapshotName("backup", now, existing)
	if got != "backup_2024_03_01_12_30_51" {
		t.Errorf("NextSnapshotName=%s; expect: backup_2024_03_01_12_30_51", got)
	}

	if max, _ := existing.Max(); got <= max {
		t.Errorf("generated name %s is not greater than existing max %s", got, max)
	}
}
