package flowlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sdnsim/internal/model"
)

func sampleRecords() []model.FlowRecord {
	return []model.FlowRecord{
		{
			Timestamp:    1500 * time.Millisecond,
			SrcAddr:      2,
			DestAddr:     4,
			SrcBattery:   97.5,
			DestBattery:  88.25,
			PathDistance: 42.125,
			ChosenLink:   1,
			PathDelay:    0.0035,
			PathQuality:  73.4,
		},
		{
			Timestamp:    2 * time.Second,
			SrcAddr:      3,
			DestAddr:     1,
			SrcBattery:   100,
			DestBattery:  100,
			PathDistance: 50,
			ChosenLink:   0,
			PathDelay:    0.0012,
			PathQuality:  50,
		},
	}
}

func TestWriteCSV_HeaderAndOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d", len(lines))
	}
	if lines[0] != strings.Join(Header, ",") {
		t.Fatalf("header=%q", lines[0])
	}
	if lines[1] != "1.500000,2,4,97.500000,88.250000,42.125000,1,0.003500,73.400000" {
		t.Fatalf("row=%q", lines[1])
	}
}

func TestRoundTrip_ByteForByte(t *testing.T) {
	t.Parallel()

	var first bytes.Buffer
	if err := WriteCSV(&first, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	parsed, err := readCSV(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("readCSV: %v", err)
	}

	var second bytes.Buffer
	if err := WriteCSV(&second, parsed); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatalf("round trip diverged:\n%s\nvs\n%s", first.String(), second.String())
	}
}

func TestReadCSV_ParsesFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	want := sampleRecords()
	if err := WriteCSV(&buf, want); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	got, err := readCSV(&buf)
	if err != nil {
		t.Fatalf("readCSV: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV_ShortRecordFails(t *testing.T) {
	t.Parallel()

	_, err := readCSV(strings.NewReader("1.0,2,3\n"))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestAppendCSV_HeaderOnlyOnce(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "flows.csv")
	recs := sampleRecords()

	if err := AppendCSV(path, recs[:1]); err != nil {
		t.Fatalf("AppendCSV: %v", err)
	}
	if err := AppendCSV(path, recs[1:]); err != nil {
		t.Fatalf("AppendCSV: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n := strings.Count(string(data), "timestamp"); n != 1 {
		t.Fatalf("headers=%d", n)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if diff := cmp.Diff(recs, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSink_StreamsRecords(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	path := filepath.Join(tmp, "flows.csv")
	sink, err := NewSink(path)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}

	recs := sampleRecords()
	for _, rec := range recs {
		if err := sink.Export(rec); err != nil {
			t.Fatalf("Export: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if diff := cmp.Diff(recs, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}
