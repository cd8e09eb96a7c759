package tables

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const utf8BOM = "\ufeff"

// CSVSource reads a comma separated file with a header row
type CSVSource struct {
	Path string
}

func (s *CSVSource) Name() string { return s.Path }

func (s *CSVSource) Read(ctx context.Context) (*Table, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", s.Path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", s.Path, err)
	}

	log.Ctx(ctx).Debug().Str("path", s.Path).Int("rows", len(t.Rows)).Int("columns", len(t.Header)).Msg("read csv")
	return t, nil
}

// ReadCSV parses a header row followed by data rows, a leading BOM is dropped
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty, expected a header row")
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	t := &Table{Header: header, Rows: records[1:]}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// CSVSink writes the table to Path, replacing the file only once everything has been written
type CSVSink struct {
	Path string
}

func (s *CSVSink) Name() string { return s.Path }

func (s *CSVSink) Write(ctx context.Context, t *Table) error {
	err := writeAtomic(s.Path, func(w io.Writer) error {
		return WriteCSV(w, t)
	})
	if err != nil {
		return err
	}

	log.Ctx(ctx).Debug().Str("path", s.Path).Int("rows", len(t.Rows)).Msg("wrote csv")
	return nil
}

func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, record := range t.Rows {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeAtomic writes into a temp file next to path and renames it over path on success
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // gone after rename, cleans up on failure

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("error moving output into %s: %w", path, err)
	}
	return nil
}
