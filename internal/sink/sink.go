// Package sink writes item sync documents to files, object storage or any
// io.Writer.
package sink

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/flat"
	"github.com/itsmostafa/bomfold/internal/materialize"
)

// Writer persists a materialized document.
type Writer interface {
	Write(ctx context.Context, out *materialize.Output) error
}

// File names used by the multi-file sinks.
const (
	BOMsName       = "boms"
	BOMEntriesName = "bom_entries"
)

// Sheet names used by the workbook sink.
const (
	BOMsSheet       = "BOMs"
	BOMEntriesSheet = "BOM Entries"
)

var (
	bomColumns   = []string{"id", "name"}
	entryColumns = []string{"bom_id", "entry_type", "entry_id", "quantity"}
)

// FormatQuantity renders a quantity the same way number values render.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// bomRecords renders headers as string records, header row first.
func bomRecords(out *materialize.Output) [][]string {
	records := make([][]string, 0, len(out.BOMs)+1)
	records = append(records, bomColumns)
	for _, h := range out.BOMs {
		records = append(records, []string{h.ID.String(), h.Name.String()})
	}
	return records
}

// entryRecords renders entries as string records, header row first.
func entryRecords(out *materialize.Output) [][]string {
	records := make([][]string, 0, len(out.BOMEntries)+1)
	records = append(records, entryColumns)
	for _, e := range out.BOMEntries {
		records = append(records, []string{e.BOMID.String(), string(e.Type), e.EntryID.String(), FormatQuantity(e.Quantity)})
	}
	return records
}

// cellValue keeps numbers numeric for typed formats.
func cellValue(v flat.Value) any {
	if n, ok := v.Float(); ok {
		return n
	}
	return v.Str
}

// ForPath picks a sink for a destination string:
//
//	s3://bucket/prefix  object storage (store must be configured)
//	arrow:DIR           Arrow IPC files in DIR
//	*.xlsx              workbook
//	*.json              JSON document
//	anything else       CSV files in a directory
func ForPath(dest string, store StoreConfig) (Writer, error) {
	if dest == "" {
		return nil, bomerr.InvalidArgument("output destination is empty")
	}

	if rest, ok := strings.CutPrefix(dest, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, bomerr.InvalidArgument("object store destination %q has no bucket", dest)
		}
		client, err := NewMinio(store)
		if err != nil {
			return nil, err
		}
		return &ObjectStore{Client: client, Bucket: bucket, Prefix: strings.Trim(prefix, "/"), Format: FormatCSV}, nil
	}

	if dir, ok := strings.CutPrefix(dest, "arrow:"); ok {
		return &Arrow{Dir: dir}, nil
	}

	switch strings.ToLower(filepath.Ext(dest)) {
	case ".xlsx":
		return &XLSX{Path: dest}, nil
	case ".json":
		return &JSONFile{Path: dest}, nil
	default:
		return &CSVDir{Dir: dest}, nil
	}
}
