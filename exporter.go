package gocircular

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Exporter defines an export interface for filtered trajectories.
type Exporter interface {
	Write(step int, truth, measurement float64, belief Noise) error
	Close() error
}

// CSVExporter writes one row per filter step: the true state, the
// measurement, and the mean direction, angular error and circular standard
// deviation of the belief.
type CSVExporter struct {
	delimiter string
	w         io.Writer
	f         *os.File
}

// NewCSVExporter initializes a new CSV export to the given file.
func NewCSVExporter(filepath, filename string) (*CSVExporter, error) {
	f, err := os.Create(fmt.Sprintf("%s/%s", filepath, filename))
	if err != nil {
		return nil, err
	}
	e := &CSVExporter{delimiter: ",", w: f, f: f}
	if err := e.writeHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return e, nil
}

// NewCSVExporterTo initializes a new CSV export to an arbitrary writer.
func NewCSVExporterTo(w io.Writer) (*CSVExporter, error) {
	e := &CSVExporter{delimiter: ",", w: w}
	if err := e.writeHeader(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *CSVExporter) writeHeader() error {
	hdr := []string{"step", "truth", "measurement", "estimate", "error", "stddev"}
	_, err := io.WriteString(e.w, fmt.Sprintf("# Creation date (UTC): %s\n%s\n", time.Now().UTC(), strings.Join(hdr, e.delimiter)))
	return err
}

// Write writes one belief row. The belief only needs its first
// trigonometric moment, so both filter estimates qualify.
func (e *CSVExporter) Write(step int, truth, measurement float64, belief Noise) error {
	m1, err := belief.TrigonometricMoment(1)
	if err != nil {
		return err
	}
	est := MeanDirection(m1)
	vals := []string{
		fmt.Sprintf("%d", step),
		fmt.Sprintf("%f", truth),
		fmt.Sprintf("%f", measurement),
		fmt.Sprintf("%f", est),
		fmt.Sprintf("%f", AngularError(est, truth)),
		fmt.Sprintf("%f", CircularStd(m1)),
	}
	_, err = io.WriteString(e.w, strings.Join(vals, e.delimiter)+"\n")
	return err
}

// WriteRawLn writes a raw line to the CSV file.
func (e *CSVExporter) WriteRawLn(s string) error {
	_, err := io.WriteString(e.w, s+"\n")
	return err
}

// Close writes the closing stamp and closes the file when the exporter
// owns one.
func (e *CSVExporter) Close() error {
	if err := e.WriteRawLn(fmt.Sprintf("# Closing date (UTC): %s", time.Now().UTC())); err != nil {
		return err
	}
	if e.f == nil {
		return nil
	}
	return e.f.Close()
}
