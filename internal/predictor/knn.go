// Package predictor implements the controller's path predictor: a
// k-nearest-neighbor classifier over a frozen snapshot of past flows.
package predictor

import (
	"math"
	"sort"

	"sdnsim/internal/model"
)

// DefaultK is the fixed neighbor count.
const DefaultK = 3

// Query is the feature vector a prediction is made from. Values come from
// the telemetry store, with cold-start defaults for unknown nodes.
type Query struct {
	SrcBattery   float64
	DestBattery  float64
	PathDistance float64
}

// Model is trained at most once per controller lifetime. After training the
// snapshot is frozen: later corpus appends do not affect it.
type Model struct {
	trained bool
	set     []model.FlowRecord
	k       int
}

// New returns an untrained model with k = DefaultK.
func New() *Model {
	return &Model{k: DefaultK}
}

// Trained reports whether the one-shot training event has happened.
func (m *Model) Trained() bool { return m.trained }

// SampleCount returns the size of the frozen training set.
func (m *Model) SampleCount() int { return len(m.set) }

// Train captures the snapshot and marks the model trained. The transition is
// one-way: a second call is a no-op and returns false.
func (m *Model) Train(snapshot []model.FlowRecord) bool {
	if m.trained {
		return false
	}
	m.set = snapshot
	m.trained = true
	return true
}

// Predict returns the plurality link among the k nearest training samples.
// The second return is false when the model is untrained or the snapshot is
// empty; the caller then falls back to static routing. The returned link is
// not range-checked here — the caller validates it against its link set.
func (m *Model) Predict(q Query) (int, bool) {
	if !m.trained || len(m.set) == 0 {
		return -1, false
	}

	type scored struct {
		dist float64
		link int
	}
	distances := make([]scored, len(m.set))
	for i, sample := range m.set {
		distances[i] = scored{dist: distance(q, sample), link: sample.ChosenLink}
	}
	// Stable keeps insertion order among equidistant samples, so the vote
	// is reproducible.
	sort.SliceStable(distances, func(i, j int) bool {
		return distances[i].dist < distances[j].dist
	})

	limit := m.k
	if len(distances) < limit {
		limit = len(distances)
	}
	votes := make(map[int]int)
	for i := 0; i < limit; i++ {
		votes[distances[i].link]++
	}

	best, maxVotes := -1, 0
	for link := 0; link <= maxLink(votes); link++ {
		// Ascending link order breaks vote ties toward the lowest index.
		if n := votes[link]; n > maxVotes {
			maxVotes = n
			best = link
		}
	}
	return best, true
}

func distance(q Query, s model.FlowRecord) float64 {
	d1 := (q.SrcBattery - s.SrcBattery) / 100.0
	d2 := (q.DestBattery - s.DestBattery) / 100.0
	d3 := (q.PathDistance - s.PathDistance) / 100.0
	return math.Sqrt(d1*d1 + d2*d2 + d3*d3)
}

func maxLink(votes map[int]int) int {
	max := -1
	for link := range votes {
		if link > max {
			max = link
		}
	}
	return max
}
