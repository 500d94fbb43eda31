package store

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestLoadSnapshot_MissingFile_ReturnsEmpty(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	snap, err := LoadSnapshot(filepath.Join(tmp, "run.yaml"))
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap == nil || len(snap.Nodes) != 0 {
		t.Fatalf("snapshot=%+v", snap)
	}
}

func TestSaveSnapshot_RoundTrip(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "run.yaml")

	in := &Snapshot{
		Seed:           7,
		SimTimeSec:     300,
		NodesSeen:      4,
		FlowsProcessed: 120,
		FlowsDropped:   2,
		FlowsRecorded:  118,
		ModelTrained:   true,
		Nodes: []NodeStatus{
			{Addr: 1, BatteryLevel: 73.5, BatteryState: "ACTIVE", LinkQuality: 97.1, Distance: 42, Sent: 30},
			{Addr: 2, BatteryLevel: 12.0, BatteryState: "CHARGING", LinkQuality: 95.4, Distance: 61, Dropped: 3},
		},
	}
	if err := SaveSnapshot(path, in); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	out, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if out.UpdatedAt.IsZero() {
		t.Fatalf("updated_at not set")
	}
	if diff := cmp.Diff(in, out, cmpopts.IgnoreFields(Snapshot{}, "UpdatedAt")); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
