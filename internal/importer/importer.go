// Package importer turns statement files into the raw field-mapping
// records the tracker ingests. Format detection sniffs the file header so
// callers never name a format explicitly; each adapter only parses, the
// tracker does all validation.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

// Importer is the strategy interface for file format adapters.
type Importer interface {
	// Name returns the adapter identifier (e.g. "csv", "ofx").
	Name() string

	// CanImport checks whether this adapter handles the file, given its
	// path and the first bytes of its content.
	CanImport(path string, header []byte) bool

	// Import extracts raw records from the file content.
	Import(ctx context.Context, r io.Reader) ([]domain.RawRecord, error)
}

// Registry holds the registered adapters in priority order.
type Registry struct {
	importers []Importer
}

// New creates a registry with all built-in adapters.
func New() *Registry {
	return &Registry{
		importers: []Importer{
			NewOFX(),
			NewJSON(),
			NewCSV(),
		},
	}
}

// Register adds a custom adapter.
func (r *Registry) Register(imp Importer) {
	r.importers = append(r.importers, imp)
}

// headerSize is how much of the file is read for format detection; enough
// for magic markers and a CSV header row.
const headerSize = 512

// Find returns the adapter for this file, sniffing its header.
func (r *Registry) Find(path string) (Importer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	header = header[:n]

	for _, imp := range r.importers {
		if imp.CanImport(path, header) {
			return imp, nil
		}
	}
	return nil, fmt.Errorf("no importer found for file: %s", path)
}

// ImportFile detects the format of the file and extracts its records.
func (r *Registry) ImportFile(ctx context.Context, path string) ([]domain.RawRecord, error) {
	imp, err := r.Find(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	records, err := imp.Import(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s import of %s failed: %w", imp.Name(), path, err)
	}
	return records, nil
}

// Names returns the registered adapter identifiers.
func (r *Registry) Names() []string {
	names := make([]string, len(r.importers))
	for i, imp := range r.importers {
		names[i] = imp.Name()
	}
	return names
}
