// Package store persists the final state of a simulation run for external
// inspection.
package store

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot is the end-of-run report: controller counters plus the last
// known telemetry per node.
type Snapshot struct {
	UpdatedAt      time.Time    `yaml:"updated_at"`
	Seed           int64        `yaml:"seed"`
	SimTimeSec     float64      `yaml:"sim_time_sec"`
	NodesSeen      int          `yaml:"nodes_seen"`
	FlowsProcessed int          `yaml:"flows_processed"`
	FlowsDropped   int          `yaml:"flows_dropped"`
	FlowsRecorded  int          `yaml:"flows_recorded"`
	ModelTrained   bool         `yaml:"model_trained"`
	Nodes          []NodeStatus `yaml:"nodes"`
}

// NodeStatus is one node's final line in the report.
type NodeStatus struct {
	Addr         int     `yaml:"addr"`
	BatteryLevel float64 `yaml:"battery_level"`
	BatteryState string  `yaml:"battery_state"`
	LinkQuality  float64 `yaml:"link_quality"`
	Distance     float64 `yaml:"distance"`
	Sent         int     `yaml:"sent"`
	Forwarded    int     `yaml:"forwarded"`
	Delivered    int     `yaml:"delivered"`
	Dropped      int     `yaml:"dropped"`
}

// LoadSnapshot loads a snapshot from disk. A missing file yields an empty
// snapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, err
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}

// SaveSnapshot writes the snapshot to disk.
func SaveSnapshot(path string, snap *Snapshot) error {
	if snap == nil {
		return nil
	}
	snap.UpdatedAt = time.Now().UTC()
	data, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
