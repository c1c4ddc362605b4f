package gocircular

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImplementsExporter(t *testing.T) {
	implements := func(Exporter) {}
	implements(new(CSVExporter))
}

func TestCSVExportFail(t *testing.T) {
	if _, err := NewCSVExporter("/noNoNoNo", "temp.csv"); err == nil {
		t.Fatal("no issue when trying to create a file on root")
	}
}

func TestCSVExporterRows(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewCSVExporterTo(&buf)
	require.NoError(t, err)

	atom, err := NewDiscreteDistribution([]float64{1}, []float64{1})
	require.NoError(t, err)
	require.NoError(t, e.Write(0, 0.9, 1.0, atom))
	require.NoError(t, e.Close())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	if !strings.HasPrefix(lines[0], "# Creation date (UTC):") {
		t.Fatalf("header stamp missing, got %q", lines[0])
	}
	if lines[1] != "step,truth,measurement,estimate,error,stddev" {
		t.Fatalf("column header = %q", lines[1])
	}
	if lines[2] != "0,0.900000,1.000000,1.000000,0.100000,0.000000" {
		t.Fatalf("row = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "# Closing date (UTC):") {
		t.Fatalf("closing stamp missing, got %q", lines[3])
	}
}

func TestCSVExporterFile(t *testing.T) {
	dir := t.TempDir()
	e, err := NewCSVExporter(dir, "out.csv")
	require.NoError(t, err)

	vm, _ := NewVonMises(2, 5)
	require.NoError(t, e.Write(0, 2, 2.1, vm))
	require.NoError(t, e.Close())

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	content := string(data)
	if !strings.Contains(content, "step,truth,measurement,estimate,error,stddev") {
		t.Fatal("column header missing")
	}
	if !strings.Contains(content, "# Closing date (UTC):") {
		t.Fatal("closing stamp missing")
	}
}

func TestCSVExporterBeliefError(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewCSVExporterTo(&buf)
	require.NoError(t, err)
	lfd, _ := NewUniformFourier(3, Log)
	if err := e.Write(0, 1, 1, lfd); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("log encoded belief raised %v, want its moment error", err)
	}
}
