// Package scorer ranks candidate outgoing links by a multi-criteria
// energy-fairness score over live telemetry.
package scorer

import "sdnsim/internal/model"

const (
	// lowBatteryPenalty deprioritizes starved candidates without excluding
	// them: a low-battery link can still win if every alternative is worse.
	lowBatteryPenalty = 50.0
	// preferredBonus keeps the predictor's or fallback's suggestion when
	// scores otherwise tie.
	preferredBonus = 5.0
)

// Weights are the externally configured scoring constants.
type Weights struct {
	Battery             float64
	LinkQuality         float64
	Distance            float64
	Fairness            float64
	LowBatteryThreshold float64
}

// Telemetry is the view of node metrics the scorer needs. Satisfied by
// *telemetry.Store.
type Telemetry interface {
	Lookup(addr int) (model.NodeMetrics, bool)
	AverageBattery() float64
}

// Scorer scores candidate next hops using the telemetry store.
type Scorer struct {
	store   Telemetry
	weights Weights
}

// New creates a scorer over the given telemetry view.
func New(store Telemetry, w Weights) *Scorer {
	return &Scorer{store: store, weights: w}
}

// Choose scores every link in [0, linkCount) and returns the best one, or -1
// when there are no links. Link i maps to neighbor address i+1, the star
// convention of this test network. Ties go to the first link scanned.
func (s *Scorer) Choose(linkCount, preferred int) int {
	if linkCount <= 0 {
		return -1
	}

	avgBattery := s.store.AverageBattery()

	bestScore := -1e9
	best := preferred
	for i := 0; i < linkCount; i++ {
		neighbor := i + 1

		nm, _ := s.store.Lookup(neighbor)
		battery := nm.BatteryLevel
		quality := nm.LinkQuality
		proximity := invertDistance(nm.Distance)
		degree := float64(nm.ConnectedNeighbors)

		fairnessPenalty := 0.0
		if battery < avgBattery {
			fairnessPenalty = avgBattery - battery
		}

		score := s.weights.Battery*battery +
			s.weights.LinkQuality*quality +
			s.weights.Distance*proximity +
			s.weights.Fairness*degree -
			s.weights.Fairness*fairnessPenalty

		if battery < s.weights.LowBatteryThreshold {
			score -= lowBatteryPenalty
		}
		if i == preferred {
			score += preferredBonus
		}

		if score > bestScore {
			bestScore = score
			best = i
		}
	}

	return best
}

// invertDistance turns meters into a closeness term: closer scores higher,
// anything at or beyond 100m scores zero.
func invertDistance(d float64) float64 {
	if d > 100 {
		d = 100
	}
	p := 100 - d
	if p < 0 {
		p = 0
	}
	return p
}
