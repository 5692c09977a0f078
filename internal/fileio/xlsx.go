package fileio

import (
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"

	"shade-resolver/internal/resolve/model"
)

func readXLSX(r io.Reader, headerRow int) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("xlsx: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowsToMaps(rows, pickHeader(rows, headerRow), headerRow), nil
}

var nonMatchHeader = []any{"brand", "product_raw", "shade_raw", "reason", "count"}

// WriteNonMatchesXLSX writes the non-match report as a single-sheet workbook.
func WriteNonMatchesXLSX(w io.Writer, rows []model.NonMatch) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "non_matches"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", nonMatchHeader); err != nil {
		return err
	}
	for i, nm := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, []any{nm.Brand, nm.ProductLineRaw, nm.ShadeRaw, string(nm.Reason), nm.Count}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
