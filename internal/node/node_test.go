package node

import (
	"testing"
	"time"

	"sdnsim/internal/battery"
	"sdnsim/internal/model"
	"sdnsim/internal/sim"
	"sdnsim/internal/topology"
)

func testNode(t *testing.T, eng *sim.Engine, addr int) (*Node, *[]*model.Packet) {
	t.Helper()

	g := topology.Star(4)
	n, err := New(eng, Config{
		Addr:              addr,
		SDNAddr:           0,
		DiscoveryInterval: 5 * time.Second,
		TrafficInterval:   2 * time.Second,
		SendDiscovery:     true,
		SendTraffic:       true,
		Peers:             peersFor(addr, 4),
	}, g)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out []*model.Packet
	n.SetLinks([]model.Outlink{{Delay: time.Millisecond, Deliver: func(pkt *model.Packet) {
		out = append(out, pkt)
	}}})
	return n, &out
}

func peersFor(addr, total int) []int {
	var peers []int
	for a := 1; a <= total; a++ {
		if a != addr {
			peers = append(peers, a)
		}
	}
	return peers
}

func drainToCharging(n *Node) {
	for n.bat.State() != battery.Charging {
		n.bat.DrainActivity(battery.DiscoveryCost)
	}
}

func TestNew_RequiresRouteToController(t *testing.T) {
	t.Parallel()

	g := topology.NewGraph()
	g.Connect(1, 2)
	g.AddNode(0)
	if _, err := New(sim.New(1), Config{Addr: 1, SDNAddr: 0}, g); err == nil {
		t.Fatal("expected error")
	}
}

func TestSendDiscovery_PacketFields(t *testing.T) {
	t.Parallel()

	eng := sim.New(1)
	n, out := testNode(t, eng, 3)

	n.sendDiscovery()
	eng.Run(time.Second)

	if len(*out) != 1 {
		t.Fatalf("packets=%d", len(*out))
	}
	pkt := (*out)[0]
	if pkt.Type != model.Discovery || pkt.SrcAddr != 3 || pkt.DestAddr != 0 {
		t.Fatalf("packet=%+v", pkt)
	}
	if pkt.DistanceToSDN < 25 || pkt.DistanceToSDN >= 115 {
		t.Fatalf("distance=%v", pkt.DistanceToSDN)
	}
	if pkt.PathDelay < 0.001 || pkt.PathDelay >= 0.01 {
		t.Fatalf("delay=%v", pkt.PathDelay)
	}
	if pkt.ByteLength != 512 || pkt.HopCount != 0 {
		t.Fatalf("packet=%+v", pkt)
	}
	if pkt.BatteryLevel >= 100 {
		t.Fatalf("battery not drained: %v", pkt.BatteryLevel)
	}
}

func TestChargingNode_OriginatesNothing(t *testing.T) {
	t.Parallel()

	eng := sim.New(1)
	n, out := testNode(t, eng, 2)
	drainToCharging(n)

	n.sendDiscovery()
	n.originateData()
	eng.Run(time.Second)

	if len(*out) != 0 {
		t.Fatalf("packets=%d", len(*out))
	}
	if n.Stats().Sent != 0 {
		t.Fatalf("sent=%d", n.Stats().Sent)
	}
}

func TestForwardTransit_UpdatesPacket(t *testing.T) {
	t.Parallel()

	eng := sim.New(1)
	n, out := testNode(t, eng, 1)

	pkt := &model.Packet{SrcAddr: 2, DestAddr: 0, Type: model.Data, HopCount: 1, PathDelay: 0.002, BatteryLevel: 80}
	n.HandlePacket(pkt)
	eng.Run(time.Second)

	if len(*out) != 1 {
		t.Fatalf("packets=%d", len(*out))
	}
	got := (*out)[0]
	if got.HopCount != 2 {
		t.Fatalf("hops=%d", got.HopCount)
	}
	if got.PathDelay <= 0.002 {
		t.Fatalf("delay=%v", got.PathDelay)
	}
	if got.BatteryLevel != n.bat.Level() {
		t.Fatalf("battery=%v level=%v", got.BatteryLevel, n.bat.Level())
	}
	if n.Stats().Forwarded != 1 {
		t.Fatalf("forwarded=%d", n.Stats().Forwarded)
	}
}

func TestChargingNode_DropsTransit(t *testing.T) {
	t.Parallel()

	eng := sim.New(1)
	n, out := testNode(t, eng, 1)
	drainToCharging(n)

	n.HandlePacket(&model.Packet{SrcAddr: 2, DestAddr: 0, Type: model.Data})
	eng.Run(time.Second)

	if len(*out) != 0 {
		t.Fatalf("packets=%d", len(*out))
	}
	if n.Stats().Dropped != 1 {
		t.Fatalf("dropped=%d", n.Stats().Dropped)
	}
}

func TestHandlePacket_LocalDelivery(t *testing.T) {
	t.Parallel()

	eng := sim.New(1)
	n, out := testNode(t, eng, 2)

	n.HandlePacket(&model.Packet{SrcAddr: 4, DestAddr: 2, Type: model.Data})
	if n.Stats().Delivered != 1 {
		t.Fatalf("delivered=%d", n.Stats().Delivered)
	}
	if len(*out) != 0 {
		t.Fatalf("packets=%d", len(*out))
	}
}

func TestStop_CancelsTimers(t *testing.T) {
	t.Parallel()

	eng := sim.New(1)
	n, out := testNode(t, eng, 1)

	n.Start()
	n.Stop()
	eng.Run(time.Minute)

	if len(*out) != 0 {
		t.Fatalf("packets after stop: %d", len(*out))
	}
}

func TestStart_PeriodicDiscovery(t *testing.T) {
	t.Parallel()

	eng := sim.New(1)
	n, out := testNode(t, eng, 1)

	n.Start()
	eng.Run(30 * time.Second)
	n.Stop()

	discoveries := 0
	for _, pkt := range *out {
		if pkt.Type == model.Discovery {
			discoveries++
		}
	}
	// First report lands within 2s, then every 5s: at least 5 in 30s.
	if discoveries < 5 {
		t.Fatalf("discoveries=%d", discoveries)
	}
}
