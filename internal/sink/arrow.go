package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/itsmostafa/bomfold/internal/materialize"
)

var (
	// BOMsSchema describes boms.arrow. Values are rendered to text.
	BOMsSchema = arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.BinaryTypes.String},
		{Name: "name", Type: arrow.BinaryTypes.String},
	}, nil)

	// BOMEntriesSchema describes bom_entries.arrow.
	BOMEntriesSchema = arrow.NewSchema([]arrow.Field{
		{Name: "bom_id", Type: arrow.BinaryTypes.String},
		{Name: "entry_type", Type: arrow.BinaryTypes.String},
		{Name: "entry_id", Type: arrow.BinaryTypes.String},
		{Name: "quantity", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
)

// Arrow writes boms.arrow and bom_entries.arrow in the IPC file format.
type Arrow struct {
	Dir string
	// Pool defaults to the Go allocator.
	Pool memory.Allocator
}

func (s *Arrow) Write(ctx context.Context, out *materialize.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	pool := s.Pool
	if pool == nil {
		pool = memory.NewGoAllocator()
	}

	boms := BOMsRecord(pool, out)
	defer boms.Release()
	if err := writeArrowFile(filepath.Join(s.Dir, BOMsName+".arrow"), pool, boms); err != nil {
		return err
	}

	entries := BOMEntriesRecord(pool, out)
	defer entries.Release()
	return writeArrowFile(filepath.Join(s.Dir, BOMEntriesName+".arrow"), pool, entries)
}

// BOMsRecord builds the headers as a single record batch.
func BOMsRecord(pool memory.Allocator, out *materialize.Output) arrow.Record {
	b := array.NewRecordBuilder(pool, BOMsSchema)
	defer b.Release()

	ids := b.Field(0).(*array.StringBuilder)
	names := b.Field(1).(*array.StringBuilder)
	for _, h := range out.BOMs {
		ids.Append(h.ID.String())
		names.Append(h.Name.String())
	}
	return b.NewRecord()
}

// BOMEntriesRecord builds the entries as a single record batch.
func BOMEntriesRecord(pool memory.Allocator, out *materialize.Output) arrow.Record {
	b := array.NewRecordBuilder(pool, BOMEntriesSchema)
	defer b.Release()

	bomIDs := b.Field(0).(*array.StringBuilder)
	kinds := b.Field(1).(*array.StringBuilder)
	entryIDs := b.Field(2).(*array.StringBuilder)
	quantities := b.Field(3).(*array.Float64Builder)
	for _, e := range out.BOMEntries {
		bomIDs.Append(e.BOMID.String())
		kinds.Append(string(e.Type))
		entryIDs.Append(e.EntryID.String())
		quantities.Append(e.Quantity)
	}
	return b.NewRecord()
}

func writeArrowFile(path string, pool memory.Allocator, rec arrow.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(pool))
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to open arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finish %s: %w", path, err)
	}
	return f.Close()
}
