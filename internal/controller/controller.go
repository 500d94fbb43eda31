// Package controller implements the SDN controller process: it ingests
// discovery telemetry, trains the path predictor once enough flows have been
// observed, and picks an outgoing link for every data flow.
package controller

import (
	"log"
	"time"

	"sdnsim/internal/config"
	"sdnsim/internal/model"
	"sdnsim/internal/predictor"
	"sdnsim/internal/scorer"
	"sdnsim/internal/sim"
	"sdnsim/internal/telemetry"
)

// Controller owns all global routing state: telemetry store, flow corpus and
// predictor. There is exactly one controller per simulation run.
type Controller struct {
	cfg   config.ControllerConfig
	eng   *sim.Engine
	store *telemetry.Store
	corp  *Corpus
	pred  *predictor.Model
	gates *scorer.Scorer
	links []model.Outlink

	flowsProcessed int
	flowsDropped   int
	sweepTimer     *sim.Timer

	// Advisory observability hooks; nil-safe.
	OnTopologySize func(n int)
	OnPrediction   func(link int)
	OnDecision     func(link int)
}

// New wires the controller's decision engine together. sink may be nil.
func New(eng *sim.Engine, cfg config.ControllerConfig, sink ExportSink) *Controller {
	store := telemetry.New(eng.Rand())
	return &Controller{
		cfg:   cfg,
		eng:   eng,
		store: store,
		corp:  NewCorpus(sink),
		pred:  predictor.New(),
		gates: scorer.New(store, scorer.Weights{
			Battery:             cfg.BatteryWeight,
			LinkQuality:         cfg.LinkQualityWeight,
			Distance:            cfg.DistanceWeight,
			Fairness:            cfg.FairnessWeight,
			LowBatteryThreshold: cfg.LowBatteryThreshold,
		}),
	}
}

// SetLinks installs the controller's outgoing links. Link i connects to the
// node at address i+1.
func (c *Controller) SetLinks(links []model.Outlink) { c.links = links }

// Start schedules the periodic topology sweep.
func (c *Controller) Start() {
	c.sweepTimer = c.eng.ScheduleAfter(time.Second, c.sweep)
	log.Printf("sdn: controller up, ml=%v energy_aware=%v threshold=%d",
		c.cfg.EnableMLRouting, c.cfg.EnergyAwareRouting, c.cfg.TrainingThreshold)
}

// Stop cancels the pending sweep timer.
func (c *Controller) Stop() {
	c.sweepTimer.Cancel()
}

// Store exposes the telemetry store for reporting.
func (c *Controller) Store() *telemetry.Store { return c.store }

// Corpus exposes the flow corpus for reporting.
func (c *Controller) Corpus() *Corpus { return c.corp }

// Trained reports whether the predictor's one-shot training has happened.
func (c *Controller) Trained() bool { return c.pred.Trained() }

// FlowsProcessed returns how many data packets reached the controller.
func (c *Controller) FlowsProcessed() int { return c.flowsProcessed }

// FlowsDropped returns how many data packets had no usable link.
func (c *Controller) FlowsDropped() int { return c.flowsDropped }

// HandlePacket is the controller's inbound transport callback.
func (c *Controller) HandlePacket(pkt *model.Packet) {
	switch pkt.Type {
	case model.Discovery:
		c.processDiscovery(pkt)
	case model.Data:
		c.forwardData(pkt)
	}
}

func (c *Controller) processDiscovery(pkt *model.Packet) {
	c.store.RecordDiscovery(pkt.SrcAddr, pkt.BatteryLevel, pkt.DistanceToSDN,
		pkt.PathDelay, pkt.HopCount, c.eng.Now())
	log.Printf("sdn: discovery from node %d battery=%.1f%% distance=%.1fm",
		pkt.SrcAddr, pkt.BatteryLevel, pkt.DistanceToSDN)
}

// sweep is the periodic topology report; it also drives the one-shot
// training check.
func (c *Controller) sweep() {
	log.Printf("sdn: topology sweep t=%v nodes=%d corpus=%d trained=%v",
		c.eng.Now(), c.store.Size(), c.corp.Size(), c.pred.Trained())
	if c.OnTopologySize != nil {
		c.OnTopologySize(c.store.Size())
	}
	c.MaybeTrain()
	interval := secondsToDuration(c.cfg.DiscoveryIntervalSec)
	c.sweepTimer = c.eng.ScheduleAfter(interval, c.sweep)
}

// MaybeTrain trains the predictor the first time the corpus reaches the
// configured threshold. Training happens at most once per run.
func (c *Controller) MaybeTrain() {
	if c.pred.Trained() || c.corp.Size() < c.cfg.TrainingThreshold {
		return
	}
	if c.pred.Train(c.corp.Snapshot()) {
		log.Printf("sdn: predictor trained on %d samples (k=%d)",
			c.pred.SampleCount(), predictor.DefaultK)
	}
}

func (c *Controller) forwardData(pkt *model.Packet) {
	c.flowsProcessed++

	chosen := c.chooseLink(pkt.SrcAddr, pkt.DestAddr)
	if chosen < 0 || chosen >= len(c.links) {
		// Terminal for this packet only; the controller keeps running.
		c.flowsDropped++
		log.Printf("sdn: no valid route %d->%d, dropping", pkt.SrcAddr, pkt.DestAddr)
		return
	}

	c.corp.Append(c.buildFlowRecord(pkt, chosen))
	if c.OnDecision != nil {
		c.OnDecision(chosen)
	}

	link := c.links[chosen]
	c.eng.ScheduleAfter(link.Delay, func() { link.Deliver(pkt) })
}

// chooseLink runs the per-flow decision cascade: predictor or static
// fallback, then the energy-aware scorer, then the fallback safety net.
func (c *Controller) chooseLink(srcAddr, destAddr int) int {
	var candidate int
	if c.cfg.EnableMLRouting && c.pred.Trained() {
		candidate = c.predictLink(srcAddr, destAddr)
	} else {
		candidate = c.staticFallback(destAddr)
	}

	chosen := candidate
	if c.cfg.EnergyAwareRouting {
		chosen = c.gates.Choose(len(c.links), candidate)
	}

	if chosen < 0 || chosen >= len(c.links) {
		chosen = c.staticFallback(destAddr)
	}
	return chosen
}

// predictLink queries the KNN model with live telemetry features, falling
// back to static routing when the model abstains or votes out of range.
func (c *Controller) predictLink(srcAddr, destAddr int) int {
	src, _ := c.store.Lookup(srcAddr)
	dest, _ := c.store.Lookup(destAddr)
	link, ok := c.pred.Predict(predictor.Query{
		SrcBattery:   src.BatteryLevel,
		DestBattery:  dest.BatteryLevel,
		PathDistance: src.Distance,
	})
	if !ok || link < 0 || link >= len(c.links) {
		return c.staticFallback(destAddr)
	}
	if c.OnPrediction != nil {
		c.OnPrediction(link)
	}
	return link
}

// staticFallback is the deterministic star-topology mapping. Returns -1 when
// the controller has no links at all.
func (c *Controller) staticFallback(destAddr int) int {
	n := len(c.links)
	if n == 0 {
		return -1
	}
	return ((destAddr-1)%n + n) % n
}

func (c *Controller) buildFlowRecord(pkt *model.Packet, chosen int) model.FlowRecord {
	src, _ := c.store.Lookup(pkt.SrcAddr)
	dest, _ := c.store.Lookup(pkt.DestAddr)
	return model.FlowRecord{
		Timestamp:    c.eng.Now(),
		SrcAddr:      pkt.SrcAddr,
		DestAddr:     pkt.DestAddr,
		SrcBattery:   src.BatteryLevel,
		DestBattery:  dest.BatteryLevel,
		PathDistance: src.Distance,
		ChosenLink:   chosen,
		PathDelay:    pkt.PathDelay,
		PathQuality:  c.pathQuality(pkt.SrcAddr, pkt.DestAddr),
	}
}

// pathQuality is a synthetic [0,100] score kept for offline analysis only;
// it never feeds back into routing.
func (c *Controller) pathQuality(srcAddr, destAddr int) float64 {
	quality := 50.0
	if src, known := c.store.Lookup(srcAddr); known {
		quality += src.LinkQuality*0.25 + src.BatteryLevel*0.15
	}
	if dest, known := c.store.Lookup(destAddr); known {
		quality += dest.LinkQuality*0.25 + dest.BatteryLevel*0.15
	}
	quality += c.eng.Uniform(-10, 10)
	if quality < 0 {
		return 0
	}
	if quality > 100 {
		return 100
	}
	return quality
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
