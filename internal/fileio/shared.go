package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Format by file extension.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".xls":
		return FormatXLS, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file: %s", filename)
	}
}

// ReadTable — выберет табличный парсер по расширению и вернёт строки как
// срез map[header]value. headerRow — номер строки заголовков (1-based).
func ReadTable(r io.Reader, filename string, headerRow int) ([]map[string]string, error) {
	f, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatXLSX:
		return readXLSX(r, headerRow)
	case FormatXLS:
		return readXLS(r, headerRow)
	case FormatCSV:
		return readCSV(r, headerRow)
	default:
		return nil, fmt.Errorf("%s is not a table format", filename)
	}
}

// pickHeader — берёт строку заголовков и подставляет Column N для пустых.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToMaps — AoA в []map по заголовкам, полностью пустые строки пропускаются.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	start := headerRow
	if start < 1 {
		start = 1
	}
	var out []map[string]string
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[headers[c]] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// NBSP/NNBSP → пробел, BOM и края строки убираем
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\uFEFF", "").Replace(s)
	return strings.TrimSpace(s)
}
