package flowlog

import (
	"encoding/csv"
	"os"

	"sdnsim/internal/model"
)

// Sink streams flow records to a CSV file as they are produced, one flushed
// row per record so the dataset survives an aborted run.
type Sink struct {
	file   *os.File
	writer *csv.Writer
}

// NewSink truncates or creates the dataset file and writes the header.
func NewSink(path string) (*Sink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	writer := csv.NewWriter(file)
	if err := writer.Write(Header); err != nil {
		file.Close()
		return nil, err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return nil, err
	}
	return &Sink{file: file, writer: writer}, nil
}

// Export appends one record.
func (s *Sink) Export(rec model.FlowRecord) error {
	if err := s.writer.Write(encode(rec)); err != nil {
		return err
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes and closes the dataset file.
func (s *Sink) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
