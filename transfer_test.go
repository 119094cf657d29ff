package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ava1ar/zfs-send-receive/config"
	"github.com/ava1ar/zfs-send-receive/model"
)

func testConfig() config.Config {
	conf := config.Default()
	conf.Source = "tank/data"
	conf.Dest = "backup/data"
	conf.Remote = "backup.example.com"
	conf.Transport = "ssh"
	return conf
}

func TestSendArgs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		plan   model.Plan
		want   []string
	}{
		{
			name: "full",
			plan: model.Plan{Mode: model.Full, NewSnapshot: "backup_x"},
			want: []string{"zfs", "send", "tank/data@backup_x"},
		},
		{
			name: "incremental",
			plan: model.Plan{Mode: model.Incremental, Base: "backup_a", NewSnapshot: "backup_x"},
			want: []string{"zfs", "send", "-i", "backup_a", "tank/data@backup_x"},
		},
		{
			name: "all flags",
			mutate: func(c *config.Config) {
				c.Recursive = true
				c.Properties = true
				c.Verbose = 2
				c.DryRun = true
			},
			plan: model.Plan{Mode: model.Incremental, Base: "backup_a", NewSnapshot: "backup_x"},
			want: []string{"zfs", "send", "-R", "-p", "-v", "-n", "-i", "backup_a", "tank/data@backup_x"},
		},
		{
			name:   "single -v leaves send quiet",
			mutate: func(c *config.Config) { c.Verbose = 1 },
			plan:   model.Plan{Mode: model.Full, NewSnapshot: "backup_x"},
			want:   []string{"zfs", "send", "tank/data@backup_x"},
		},
	}

	for _, tc := range cases {
		conf := testConfig()
		if tc.mutate != nil {
			tc.mutate(&conf)
		}
		if diff := cmp.Diff(tc.want, sendArgs(conf, tc.plan)); diff != "" {
			t.Errorf("%s: sendArgs mismatch (-want +got):\n%s", tc.name, diff)
		}
	}
}

func TestRecvArgs(t *testing.T) {
	conf := testConfig()
	want := []string{"zfs", "receive", "backup/data"}
	if diff := cmp.Diff(want, recvArgs(conf)); diff != "" {
		t.Errorf("recvArgs mismatch (-want +got):\n%s", diff)
	}

	conf.Force = true
	conf.Verbose = 1
	conf.DryRun = true
	want = []string{"zfs", "receive", "-F", "-v", "-n", "backup/data"}
	if diff := cmp.Diff(want, recvArgs(conf)); diff != "" {
		t.Errorf("recvArgs mismatch (-want +got):\n%s", diff)
	}
}
