// Package telemetry holds the controller's live view of node metrics.
// The store is owned and mutated only by the controller process.
package telemetry

import (
	"math/rand"
	"sort"
	"time"

	"sdnsim/internal/model"
)

// Defaults returned by Lookup for nodes that have never reported. An unknown
// node is the normal cold-start case, not an error.
const (
	DefaultBattery  = 100.0
	DefaultQuality  = 90.0
	DefaultDistance = 50.0
	DefaultDegree   = 1
)

// Store maps node address to the latest observed metrics. Entries never
// expire; values go stale if a node stops reporting.
type Store struct {
	nodes map[int]model.NodeMetrics
	rng   *rand.Rand
}

// New creates an empty store. The random source synthesizes the loss and
// throughput figures recorded with each report, so a seeded source makes
// reports reproducible.
func New(rng *rand.Rand) *Store {
	return &Store{nodes: make(map[int]model.NodeMetrics), rng: rng}
}

// RecordDiscovery creates or wholesale-replaces the entry for addr. Packet
// loss and throughput are simulation artifacts drawn at record time, not
// measured values.
func (s *Store) RecordDiscovery(addr int, battery, distance, pathDelay float64, hopCount int, now time.Duration) {
	loss := s.uniform(0, 5)
	s.nodes[addr] = model.NodeMetrics{
		Addr:               addr,
		BatteryLevel:       battery,
		Distance:           distance,
		AvgDelay:           pathDelay,
		PacketLoss:         loss,
		Throughput:         s.uniform(1, 10),
		HopCount:           hopCount,
		LinkQuality:        100.0 - loss,
		LastUpdate:         now,
		ConnectedNeighbors: 1 + s.rng.Intn(4),
	}
}

// Lookup returns the entry for addr, or optimistic defaults when the node
// has never reported. The second return reports whether the node is known.
func (s *Store) Lookup(addr int) (model.NodeMetrics, bool) {
	if nm, ok := s.nodes[addr]; ok {
		return nm, true
	}
	return model.NodeMetrics{
		Addr:               addr,
		BatteryLevel:       DefaultBattery,
		Distance:           DefaultDistance,
		LinkQuality:        DefaultQuality,
		ConnectedNeighbors: DefaultDegree,
	}, false
}

// Size returns the number of known nodes.
func (s *Store) Size() int { return len(s.nodes) }

// AverageBattery is the network-wide mean battery level across known nodes,
// or 100 when no node has reported yet.
func (s *Store) AverageBattery() float64 {
	if len(s.nodes) == 0 {
		return 100.0
	}
	sum := 0.0
	for _, nm := range s.nodes {
		sum += nm.BatteryLevel
	}
	return sum / float64(len(s.nodes))
}

// All returns the known entries ordered by address.
func (s *Store) All() []model.NodeMetrics {
	out := make([]model.NodeMetrics, 0, len(s.nodes))
	for _, nm := range s.nodes {
		out = append(out, nm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}

func (s *Store) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
