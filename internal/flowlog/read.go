package flowlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"sdnsim/internal/model"
)

// ReadCSV loads flow records from a CSV file.
func ReadCSV(path string) ([]model.FlowRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readCSV(file)
}

func readCSV(r io.Reader) ([]model.FlowRecord, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	start := 0
	if len(records[0]) > 0 && records[0][0] == "timestamp" {
		start = 1
	}

	items := make([]model.FlowRecord, 0, len(records)-start)
	for i := start; i < len(records); i++ {
		rec := records[i]
		if len(rec) < len(Header) {
			return nil, fmt.Errorf("invalid record at line %d", i+1)
		}
		ts, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp at line %d: %w", i+1, err)
		}
		src, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("invalid src_addr at line %d: %w", i+1, err)
		}
		dest, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("invalid dest_addr at line %d: %w", i+1, err)
		}
		link, err := strconv.Atoi(rec[6])
		if err != nil {
			return nil, fmt.Errorf("invalid chosen_path at line %d: %w", i+1, err)
		}
		srcBattery, _ := strconv.ParseFloat(rec[3], 64)
		destBattery, _ := strconv.ParseFloat(rec[4], 64)
		distance, _ := strconv.ParseFloat(rec[5], 64)
		delay, _ := strconv.ParseFloat(rec[7], 64)
		quality, _ := strconv.ParseFloat(rec[8], 64)

		items = append(items, model.FlowRecord{
			Timestamp:    durationFromSeconds(ts),
			SrcAddr:      src,
			DestAddr:     dest,
			SrcBattery:   srcBattery,
			DestBattery:  destBattery,
			PathDistance: distance,
			ChosenLink:   link,
			PathDelay:    delay,
			PathQuality:  quality,
		})
	}

	return items, nil
}

// durationFromSeconds rounds to microseconds, the precision the dataset
// carries, so read-write cycles are stable.
func durationFromSeconds(sec float64) time.Duration {
	return time.Duration(math.Round(sec*1e6)) * time.Microsecond
}
