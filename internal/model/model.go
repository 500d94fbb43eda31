package model

import "time"

// PacketType tags a packet as payload traffic or a telemetry report.
type PacketType int

const (
	Data PacketType = iota
	Discovery
)

// ControllerAddr is the fixed address of the SDN controller.
const ControllerAddr = 0

// Packet is the unit of traffic exchanged between nodes and the controller.
type Packet struct {
	Name          string
	SrcAddr       int
	DestAddr      int
	Type          PacketType
	BatteryLevel  float64
	DistanceToSDN float64
	PathDelay     float64
	HopCount      int
	ByteLength    int
}

// NodeMetrics is the controller's latest view of one node. Entries are
// overwritten wholesale on every discovery report and never expire.
type NodeMetrics struct {
	Addr               int
	BatteryLevel       float64
	Distance           float64
	AvgDelay           float64
	PacketLoss         float64
	Throughput         float64
	HopCount           int
	LinkQuality        float64
	LastUpdate         time.Duration
	ConnectedNeighbors int
}

// FlowRecord captures one routed data flow. Immutable after creation.
type FlowRecord struct {
	Timestamp    time.Duration
	SrcAddr      int
	DestAddr     int
	SrcBattery   float64
	DestBattery  float64
	PathDistance float64
	ChosenLink   int
	PathDelay    float64
	PathQuality  float64
}

// Forwarder delivers a packet to the process on the far side of a link.
type Forwarder func(pkt *Packet)

// Outlink is one outgoing connection slot, addressed by zero-based index.
type Outlink struct {
	Delay   time.Duration
	Deliver Forwarder
}
