package fileio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	xls "github.com/extrame/xls"
)

// старые .xls из ERP и маркетплейсов: cp1252 чаще всего, иногда utf-8
var xlsCharsets = []string{"utf-8", "windows-1252", "windows-1251"}

// ширину таблицы считаем сами: Row.LastCol() у extrame/xls врёт на пустых хвостах
func xlsWidth(sheet *xls.WorkSheet) int {
	const probeMax = 256
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := probeMax - 1; j >= width; j-- {
			if normalizeCell(row.Col(j)) != "" {
				width = j + 1
				break
			}
		}
	}
	if width == 0 {
		width = 1
	}
	return width
}

func readXLS(r io.Reader, headerRow int) ([]map[string]string, error) {
	if headerRow <= 0 {
		return nil, errors.New("headerRow must be 1-based and >= 1")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var wb *xls.WorkBook
	var lastErr error
	for _, ch := range xlsCharsets {
		wb, lastErr = xls.OpenReader(bytes.NewReader(b), ch)
		if lastErr == nil && wb != nil {
			break
		}
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("failed to open workbook")
		}
		return nil, fmt.Errorf("xls: %w", lastErr)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	width := xlsWidth(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, width)
		if row != nil {
			for j := 0; j < width; j++ {
				cols[j] = normalizeCell(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowsToMaps(rows, pickHeader(rows, headerRow), headerRow), nil
}
