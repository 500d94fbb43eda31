package predictor

import (
	"testing"

	"sdnsim/internal/model"
)

func rec(srcB, destB, dist float64, link int) model.FlowRecord {
	return model.FlowRecord{SrcBattery: srcB, DestBattery: destB, PathDistance: dist, ChosenLink: link}
}

func TestPredict_UntrainedFailsOver(t *testing.T) {
	t.Parallel()

	m := New()
	if _, ok := m.Predict(Query{100, 100, 50}); ok {
		t.Fatal("untrained model predicted")
	}
}

func TestTrain_OneShot(t *testing.T) {
	t.Parallel()

	m := New()
	if m.Trained() {
		t.Fatal("trained before Train")
	}
	if !m.Train([]model.FlowRecord{rec(100, 100, 50, 0)}) {
		t.Fatal("first Train returned false")
	}
	if !m.Trained() {
		t.Fatal("not trained after Train")
	}
	if m.Train([]model.FlowRecord{rec(1, 1, 1, 2)}) {
		t.Fatal("second Train succeeded")
	}
	if m.SampleCount() != 1 {
		t.Fatalf("samples=%d", m.SampleCount())
	}
}

func TestTrain_EmptySnapshotStillFailsOver(t *testing.T) {
	t.Parallel()

	m := New()
	m.Train(nil)
	if _, ok := m.Predict(Query{100, 100, 50}); ok {
		t.Fatal("empty snapshot predicted")
	}
}

func TestPredict_PluralityAmongNearestThree(t *testing.T) {
	t.Parallel()

	// Three samples at the query point vote link 1; two far samples vote
	// elsewhere and must not reach the neighbor set.
	m := New()
	m.Train([]model.FlowRecord{
		rec(50, 50, 50, 1),
		rec(50, 50, 50, 1),
		rec(50, 50, 50, 1),
		rec(100, 0, 100, 2),
		rec(0, 100, 0, 0),
	})

	link, ok := m.Predict(Query{50, 50, 50})
	if !ok {
		t.Fatal("predict failed")
	}
	if link != 1 {
		t.Fatalf("link=%d", link)
	}
}

func TestPredict_VoteTieBreaksToLowestLink(t *testing.T) {
	t.Parallel()

	// Nearest three split 1/1/1 across links 2, 0, 1.
	m := New()
	m.Train([]model.FlowRecord{
		rec(50, 50, 50, 2),
		rec(50, 50, 50, 0),
		rec(50, 50, 50, 1),
	})

	link, ok := m.Predict(Query{50, 50, 50})
	if !ok {
		t.Fatal("predict failed")
	}
	if link != 0 {
		t.Fatalf("link=%d", link)
	}
}

func TestPredict_EquidistantUsesInsertionOrder(t *testing.T) {
	t.Parallel()

	// Five equidistant samples: the first three inserted form the neighbor
	// set, so link 1 wins 2-1 regardless of the later samples.
	m := New()
	m.Train([]model.FlowRecord{
		rec(50, 50, 50, 1),
		rec(50, 50, 50, 1),
		rec(50, 50, 50, 3),
		rec(50, 50, 50, 2),
		rec(50, 50, 50, 2),
	})

	link, ok := m.Predict(Query{50, 50, 50})
	if !ok {
		t.Fatal("predict failed")
	}
	if link != 1 {
		t.Fatalf("link=%d", link)
	}
}

func TestPredict_FewerSamplesThanK(t *testing.T) {
	t.Parallel()

	m := New()
	m.Train([]model.FlowRecord{rec(50, 50, 50, 2)})

	link, ok := m.Predict(Query{50, 50, 50})
	if !ok {
		t.Fatal("predict failed")
	}
	if link != 2 {
		t.Fatalf("link=%d", link)
	}
}

func TestPredict_SnapshotFrozen(t *testing.T) {
	t.Parallel()

	snapshot := []model.FlowRecord{
		rec(50, 50, 50, 1),
		rec(50, 50, 50, 1),
		rec(50, 50, 50, 1),
	}
	m := New()
	m.Train(snapshot)

	// Later corpus growth must not leak into the model.
	if m.SampleCount() != 3 {
		t.Fatalf("samples=%d", m.SampleCount())
	}
	link, _ := m.Predict(Query{50, 50, 50})
	if link != 1 {
		t.Fatalf("link=%d", link)
	}
}
