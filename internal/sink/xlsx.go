package sink

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/itsmostafa/bomfold/internal/materialize"
)

// XLSX writes a workbook with one sheet per record kind.
type XLSX struct {
	Path string
}

func (s *XLSX) Write(ctx context.Context, out *materialize.Output) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	book := excelize.NewFile()
	defer book.Close()

	// * boms sheet
	if err := book.SetSheetName("Sheet1", BOMsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	rows := [][]any{toAny(bomColumns)}
	for _, h := range out.BOMs {
		rows = append(rows, []any{cellValue(h.ID), cellValue(h.Name)})
	}
	if err := setRows(book, BOMsSheet, rows); err != nil {
		return err
	}

	// * entries sheet
	if _, err := book.NewSheet(BOMEntriesSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	rows = [][]any{toAny(entryColumns)}
	for _, e := range out.BOMEntries {
		rows = append(rows, []any{cellValue(e.BOMID), string(e.Type), cellValue(e.EntryID), e.Quantity})
	}
	if err := setRows(book, BOMEntriesSheet, rows); err != nil {
		return err
	}

	if err := book.SaveAs(s.Path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRows(book *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toAny(columns []string) []any {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	return row
}
