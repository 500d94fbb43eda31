// Package node implements the autonomous network node process: periodic
// discovery reporting, data traffic origination, transit forwarding, and the
// battery lifecycle that gates all of it.
package node

import (
	"fmt"
	"log"
	"time"

	"sdnsim/internal/battery"
	"sdnsim/internal/model"
	"sdnsim/internal/sim"
	"sdnsim/internal/topology"
)

const batteryTickInterval = time.Second

// Config tunes one node process.
type Config struct {
	Addr              int
	SDNAddr           int
	DiscoveryInterval time.Duration
	TrafficInterval   time.Duration
	SendDiscovery     bool
	SendTraffic       bool
	// Peers are candidate destinations for originated traffic.
	Peers []int
}

// Node is one simulated device. All its state is mutated only from its own
// event handlers.
type Node struct {
	cfg    Config
	eng    *sim.Engine
	bat    *battery.Battery
	rtable map[int]int
	links  []model.Outlink

	discoveryTimer *sim.Timer
	batteryTimer   *sim.Timer
	trafficTimer   *sim.Timer

	sent      int
	forwarded int
	delivered int
	dropped   int
}

// Stats is a point-in-time summary of one node, used for the final report.
type Stats struct {
	Addr         int
	BatteryLevel float64
	BatteryState string
	Sent         int
	Forwarded    int
	Delivered    int
	Dropped      int
}

// New builds a node and derives its routing table from the static topology.
func New(eng *sim.Engine, cfg Config, g *topology.Graph) (*Node, error) {
	rtable, err := g.RoutingTable(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", cfg.Addr, err)
	}
	if _, ok := rtable[cfg.SDNAddr]; !ok {
		return nil, fmt.Errorf("node %d: no route to controller %d", cfg.Addr, cfg.SDNAddr)
	}
	return &Node{
		cfg:    cfg,
		eng:    eng,
		bat:    battery.New(eng.Rand()),
		rtable: rtable,
	}, nil
}

// SetLinks installs the node's outgoing links, indexed as in the topology.
func (n *Node) SetLinks(links []model.Outlink) { n.links = links }

// Addr returns the node's address.
func (n *Node) Addr() int { return n.cfg.Addr }

// Battery returns the node's battery for reporting.
func (n *Node) Battery() *battery.Battery { return n.bat }

// Stats returns the node's current counters.
func (n *Node) Stats() Stats {
	return Stats{
		Addr:         n.cfg.Addr,
		BatteryLevel: n.bat.Level(),
		BatteryState: n.bat.State().String(),
		Sent:         n.sent,
		Forwarded:    n.forwarded,
		Delivered:    n.delivered,
		Dropped:      n.dropped,
	}
}

// Start schedules the node's periodic timers. Discovery starts at a jittered
// offset so nodes do not report in lockstep.
func (n *Node) Start() {
	n.batteryTimer = n.eng.ScheduleAfter(batteryTickInterval, n.batteryTick)
	if n.cfg.SendDiscovery {
		offset := secondsToDuration(n.eng.Uniform(0.5, 2.0))
		n.discoveryTimer = n.eng.ScheduleAfter(offset, n.discoveryTick)
	}
	if n.cfg.SendTraffic && len(n.cfg.Peers) > 0 {
		n.trafficTimer = n.eng.ScheduleAfter(n.jitteredTrafficInterval(), n.trafficTick)
	}
}

// Stop cancels all pending timers. Cancelled timers never fire.
func (n *Node) Stop() {
	n.batteryTimer.Cancel()
	n.discoveryTimer.Cancel()
	n.trafficTimer.Cancel()
}

// HandlePacket is the node's inbound transport callback.
func (n *Node) HandlePacket(pkt *model.Packet) {
	if pkt.DestAddr == n.cfg.Addr {
		n.delivered++
		log.Printf("node %d: packet from %d arrived", n.cfg.Addr, pkt.SrcAddr)
		return
	}
	n.forwardTransit(pkt)
}

func (n *Node) batteryTick() {
	switch n.bat.Tick() {
	case battery.EnteredCharging:
		log.Printf("node %d: battery low (%.2f%%), entering CHARGING", n.cfg.Addr, n.bat.Level())
	case battery.EnteredActive:
		log.Printf("node %d: battery full, returning to ACTIVE", n.cfg.Addr)
	}
	n.batteryTimer = n.eng.ScheduleAfter(batteryTickInterval, n.batteryTick)
}

func (n *Node) discoveryTick() {
	n.sendDiscovery()
	n.discoveryTimer = n.eng.ScheduleAfter(n.cfg.DiscoveryInterval, n.discoveryTick)
}

func (n *Node) trafficTick() {
	n.originateData()
	n.trafficTimer = n.eng.ScheduleAfter(n.jitteredTrafficInterval(), n.trafficTick)
}

// sendDiscovery reports battery and link telemetry to the controller. A
// CHARGING node skips the report silently.
func (n *Node) sendDiscovery() {
	if !n.bat.CanTransmit() {
		return
	}
	n.drain(battery.DiscoveryCost)

	pkt := &model.Packet{
		Name:          fmt.Sprintf("discovery-%d", n.cfg.Addr),
		SrcAddr:       n.cfg.Addr,
		DestAddr:      n.cfg.SDNAddr,
		Type:          model.Discovery,
		BatteryLevel:  n.bat.Level(),
		DistanceToSDN: n.distanceToSDN(),
		PathDelay:     n.eng.Uniform(0.001, 0.01),
		ByteLength:    512,
	}
	n.send(pkt, n.rtable[n.cfg.SDNAddr])
}

// originateData sends one data packet to a random peer via the controller.
func (n *Node) originateData() {
	if !n.bat.CanTransmit() {
		return
	}
	dest := n.cfg.Peers[n.eng.Rand().Intn(len(n.cfg.Peers))]

	n.drain(battery.DataCost)

	pkt := &model.Packet{
		Name:         fmt.Sprintf("data-%d-%d", n.cfg.Addr, dest),
		SrcAddr:      n.cfg.Addr,
		DestAddr:     dest,
		Type:         model.Data,
		BatteryLevel: n.bat.Level(),
		PathDelay:    n.eng.Uniform(0.001, 0.005),
		HopCount:     1,
		ByteLength:   1024,
	}
	n.sent++
	n.send(pkt, n.rtable[n.cfg.SDNAddr])
}

// forwardTransit relays a packet not addressed to this node. A CHARGING
// node drops transit traffic.
func (n *Node) forwardTransit(pkt *model.Packet) {
	if !n.bat.CanTransmit() {
		n.dropped++
		log.Printf("node %d: battery unavailable, dropping transit packet", n.cfg.Addr)
		return
	}

	gate, ok := n.rtable[pkt.DestAddr]
	if !ok {
		n.dropped++
		log.Printf("node %d: no route to %d, dropping", n.cfg.Addr, pkt.DestAddr)
		return
	}

	n.drain(battery.ForwardCost)
	pkt.BatteryLevel = n.bat.Level()
	pkt.HopCount++
	pkt.PathDelay += n.eng.Uniform(0.001, 0.005)

	n.forwarded++
	n.send(pkt, gate)
}

func (n *Node) send(pkt *model.Packet, gate int) {
	if gate < 0 || gate >= len(n.links) {
		n.dropped++
		log.Printf("node %d: invalid gate %d, dropping", n.cfg.Addr, gate)
		return
	}
	link := n.links[gate]
	n.eng.ScheduleAfter(link.Delay, func() { link.Deliver(pkt) })
}

func (n *Node) drain(c battery.Cost) {
	if n.bat.DrainActivity(c) == battery.EnteredCharging {
		log.Printf("node %d: battery drained to %.2f%%, entering CHARGING", n.cfg.Addr, n.bat.Level())
	}
}

// distanceToSDN is the synthetic distance model: a random base plus an
// address-proportional offset.
func (n *Node) distanceToSDN() float64 {
	return n.eng.Uniform(10.0, 100.0) + float64(n.cfg.Addr)*5.0
}

func (n *Node) jitteredTrafficInterval() time.Duration {
	base := n.cfg.TrafficInterval.Seconds()
	return secondsToDuration(n.eng.Uniform(0.5*base, 1.5*base))
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
