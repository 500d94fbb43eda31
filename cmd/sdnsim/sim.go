package main

import (
	"fmt"
	"time"

	"sdnsim/internal/config"
	"sdnsim/internal/controller"
	"sdnsim/internal/flowlog"
	"sdnsim/internal/model"
	"sdnsim/internal/node"
	"sdnsim/internal/sim"
	"sdnsim/internal/store"
	"sdnsim/internal/topology"
)

// linkDelay is the fixed propagation delay of every wire; the variable part
// of end-to-end latency comes from the per-hop delays nodes stamp on packets.
const linkDelay = 2 * time.Millisecond

// runSimulation assembles a star topology around one controller, runs it to
// the configured horizon and returns the end-of-run snapshot. The config must
// have defaults applied and be validated.
func runSimulation(cfg config.Config) (*store.Snapshot, error) {
	eng := sim.New(cfg.Sim.Seed)
	g := topology.Star(cfg.Sim.Nodes)

	sink, err := flowlog.NewSink(cfg.Sim.FlowsPath)
	if err != nil {
		return nil, fmt.Errorf("open flow dataset: %w", err)
	}

	ctrl := controller.New(eng, *cfg.Controller, sink)

	nodes := make([]*node.Node, 0, cfg.Sim.Nodes)
	for addr := 1; addr <= cfg.Sim.Nodes; addr++ {
		nd, err := node.New(eng, node.Config{
			Addr:              addr,
			SDNAddr:           model.ControllerAddr,
			DiscoveryInterval: secondsToDuration(cfg.Node.DiscoveryIntervalSec),
			TrafficInterval:   secondsToDuration(cfg.Node.TrafficIntervalSec),
			SendDiscovery:     *cfg.Node.SendDiscovery,
			SendTraffic:       *cfg.Node.SendTraffic,
			Peers:             peersFor(addr, cfg.Sim.Nodes),
		}, g)
		if err != nil {
			sink.Close()
			return nil, err
		}
		nodes = append(nodes, nd)
	}

	// Controller link i reaches the node at address i+1; every node's only
	// link leads back to the controller.
	ctrlLinks := make([]model.Outlink, len(nodes))
	for i, nd := range nodes {
		nd := nd
		ctrlLinks[i] = model.Outlink{Delay: linkDelay, Deliver: nd.HandlePacket}
		nd.SetLinks([]model.Outlink{{Delay: linkDelay, Deliver: ctrl.HandlePacket}})
	}
	ctrl.SetLinks(ctrlLinks)

	ctrl.Start()
	for _, nd := range nodes {
		nd.Start()
	}

	eng.Run(secondsToDuration(cfg.Sim.DurationSec))

	ctrl.Stop()
	for _, nd := range nodes {
		nd.Stop()
	}
	if err := sink.Close(); err != nil {
		return nil, fmt.Errorf("close flow dataset: %w", err)
	}

	snap := buildSnapshot(cfg, eng, ctrl, nodes)
	if cfg.Sim.SnapshotPath != "" {
		if err := store.SaveSnapshot(cfg.Sim.SnapshotPath, snap); err != nil {
			return nil, fmt.Errorf("write snapshot: %w", err)
		}
	}
	return snap, nil
}

func buildSnapshot(cfg config.Config, eng *sim.Engine, ctrl *controller.Controller, nodes []*node.Node) *store.Snapshot {
	snap := &store.Snapshot{
		Seed:           cfg.Sim.Seed,
		SimTimeSec:     eng.Now().Seconds(),
		NodesSeen:      ctrl.Store().Size(),
		FlowsProcessed: ctrl.FlowsProcessed(),
		FlowsDropped:   ctrl.FlowsDropped(),
		FlowsRecorded:  ctrl.Corpus().Size(),
		ModelTrained:   ctrl.Trained(),
	}
	for _, nd := range nodes {
		stats := nd.Stats()
		nm, _ := ctrl.Store().Lookup(stats.Addr)
		snap.Nodes = append(snap.Nodes, store.NodeStatus{
			Addr:         stats.Addr,
			BatteryLevel: stats.BatteryLevel,
			BatteryState: stats.BatteryState,
			LinkQuality:  nm.LinkQuality,
			Distance:     nm.Distance,
			Sent:         stats.Sent,
			Forwarded:    stats.Forwarded,
			Delivered:    stats.Delivered,
			Dropped:      stats.Dropped,
		})
	}
	return snap
}

func peersFor(addr, total int) []int {
	peers := make([]int, 0, total-1)
	for a := 1; a <= total; a++ {
		if a != addr {
			peers = append(peers, a)
		}
	}
	return peers
}
