package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/itsmostafa/bomfold/internal/materialize"
)

// CSVDir writes boms.csv and bom_entries.csv into Dir, creating it if needed.
type CSVDir struct {
	Dir string
}

func (s *CSVDir) Write(ctx context.Context, out *materialize.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeCSVFile(filepath.Join(s.Dir, BOMsName+".csv"), bomRecords(out)); err != nil {
		return err
	}
	return writeCSVFile(filepath.Join(s.Dir, BOMEntriesName+".csv"), entryRecords(out))
}

func writeCSVFile(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeCSV(f, records); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func writeCSV(w io.Writer, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}
