// Package battery implements the per-node battery lifecycle. A node in
// CHARGING may not transmit, forward or send discovery; callers skip those
// actions silently rather than treating them as errors.
package battery

import "math/rand"

// State is the battery FSM state.
type State int

const (
	Active State = iota
	Charging
)

func (s State) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Charging:
		return "CHARGING"
	default:
		return "unknown"
	}
}

// Transition describes what a drain or recharge step did.
type Transition int

const (
	None Transition = iota
	EnteredCharging
	EnteredActive
)

// Thresholds. Entering CHARGING happens below lowLevel; leaving it requires
// a full recharge to exactly 100. The asymmetry simulates slow recharge and
// is intentional.
const (
	lowLevel  = 20.0
	fullLevel = 100.0
)

// Cost is a uniform drain range for one class of activity.
type Cost struct {
	Min, Max float64
}

// Drain ranges per activity class.
var (
	DiscoveryCost = Cost{0.1, 0.5}
	DataCost      = Cost{0.05, 0.2}
	ForwardCost   = Cost{0.02, 0.1}
)

// Battery is one node's battery. Mutated only by its owning node.
type Battery struct {
	level float64
	state State
	rng   *rand.Rand
}

// New returns a full battery in the ACTIVE state.
func New(rng *rand.Rand) *Battery {
	return &Battery{level: fullLevel, state: Active, rng: rng}
}

// Level returns the current charge in [0, 100].
func (b *Battery) Level() float64 { return b.level }

// State returns the current FSM state.
func (b *Battery) State() State { return b.state }

// CanTransmit reports whether the node may generate or forward traffic.
func (b *Battery) CanTransmit() bool { return b.state == Active }

// Tick advances the battery by one periodic step: drain while ACTIVE,
// recharge while CHARGING.
func (b *Battery) Tick() Transition {
	switch b.state {
	case Active:
		return b.applyDrain(b.uniform(0.01, 0.03))
	case Charging:
		b.level += b.uniform(0.2, 0.5)
		if b.level > fullLevel {
			b.level = fullLevel
		}
		if b.level >= fullLevel {
			b.state = Active
			return EnteredActive
		}
	}
	return None
}

// DrainActivity applies a per-packet drain from the given cost range. It is
// a no-op unless the battery is ACTIVE. The transition it triggers is
// immediate and independent of the periodic tick.
func (b *Battery) DrainActivity(c Cost) Transition {
	if b.state != Active {
		return None
	}
	return b.applyDrain(b.uniform(c.Min, c.Max))
}

func (b *Battery) applyDrain(delta float64) Transition {
	b.level -= delta
	if b.level < 0 {
		b.level = 0
	}
	// The depleted and low-battery triggers are distinct in the source
	// model; both land in CHARGING.
	if b.level == 0 {
		b.state = Charging
		return EnteredCharging
	}
	if b.level < lowLevel && b.state == Active {
		b.state = Charging
		return EnteredCharging
	}
	return None
}

func (b *Battery) uniform(lo, hi float64) float64 {
	return lo + b.rng.Float64()*(hi-lo)
}
