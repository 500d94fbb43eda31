// Package flowlog encodes routed-flow records to the CSV dataset format and
// computes summary statistics over exported flows.
package flowlog

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"sdnsim/internal/model"
)

// Header is the fixed column order of the flow dataset.
var Header = []string{
	"timestamp",
	"src_addr",
	"dest_addr",
	"src_battery",
	"dest_battery",
	"path_distance",
	"chosen_path",
	"path_delay",
	"path_quality",
}

// WriteCSV writes records to CSV with a fixed column order.
func WriteCSV(w io.Writer, items []model.FlowRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, rec := range items {
		if err := writer.Write(encode(rec)); err != nil {
			return err
		}
	}
	return writer.Error()
}

// AppendCSV appends records to path, writing the header first when the file
// is new or empty.
func AppendCSV(path string, items []model.FlowRecord) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if info.Size() == 0 {
		if err := writer.Write(Header); err != nil {
			return err
		}
	}
	for _, rec := range items {
		if err := writer.Write(encode(rec)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func encode(rec model.FlowRecord) []string {
	return []string{
		formatSeconds(rec.Timestamp),
		strconv.Itoa(rec.SrcAddr),
		strconv.Itoa(rec.DestAddr),
		formatFloat(rec.SrcBattery),
		formatFloat(rec.DestBattery),
		formatFloat(rec.PathDistance),
		strconv.Itoa(rec.ChosenLink),
		formatFloat(rec.PathDelay),
		formatFloat(rec.PathQuality),
	}
}

// Six decimals, matching the dataset consumed by the offline trainer.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatSeconds(d time.Duration) string {
	return formatFloat(d.Seconds())
}
