package controller

import (
	"log"

	"sdnsim/internal/model"
)

// ExportSink persists flow records outside the simulation. Export failures
// degrade to a warning; routing never stops over a broken sink.
type ExportSink interface {
	Export(rec model.FlowRecord) error
}

// Corpus is the append-only, insertion-ordered log of routing decisions the
// predictor trains from.
type Corpus struct {
	records []model.FlowRecord
	sink    ExportSink
}

// NewCorpus creates an empty corpus. sink may be nil.
func NewCorpus(sink ExportSink) *Corpus {
	return &Corpus{sink: sink}
}

// Size returns the number of recorded flows.
func (c *Corpus) Size() int { return len(c.records) }

// Append records one flow and mirrors it to the export sink best-effort.
func (c *Corpus) Append(rec model.FlowRecord) {
	c.records = append(c.records, rec)
	if c.sink == nil {
		return
	}
	if err := c.sink.Export(rec); err != nil {
		log.Printf("sdn: flow export failed: %v", err)
	}
}

// Snapshot returns a copy of the current sequence. Appends after the copy do
// not affect it.
func (c *Corpus) Snapshot() []model.FlowRecord {
	out := make([]model.FlowRecord, len(c.records))
	copy(out, c.records)
	return out
}
