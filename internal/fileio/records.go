package fileio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"shade-resolver/internal/resolve/model"
)

// Допустимые заголовки записей; найденные колонки переименовываются в
// канонические имена, остальные идут как есть.
var recordCols = []struct {
	canonical string
	want      []string
}{
	{model.FieldBrand, []string{model.FieldBrand, "brand standardized", "brand"}},
	{model.FieldProductLine, []string{model.FieldProductLine, "product_line_raw_examples", "product line", "product"}},
	{model.FieldShade, []string{model.FieldShade, "shade_raw_examples", "shade"}},
}

func ReadRecordsFile(path string, headerRow int) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRecords(f, path, headerRow)
}

// ReadRecords returns raw rows; validation happens per row during
// resolution so one bad row cannot fail the file.
func ReadRecords(r io.Reader, filename string, headerRow int) ([]map[string]any, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	if format == FormatJSON {
		var rows []map[string]any
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("records %s: %w", filename, err)
		}
		return rows, nil
	}

	table, err := ReadTable(r, filename, headerRow)
	if err != nil {
		return nil, fmt.Errorf("records %s: %w", filename, err)
	}
	headers := headersOf(table)
	rename := make(map[string]string, len(recordCols))
	for _, rc := range recordCols {
		if h := resolveKey(headers, rc.want); h != "" {
			if _, taken := rename[h]; !taken {
				rename[h] = rc.canonical
			}
		}
	}

	out := make([]map[string]any, 0, len(table))
	for _, row := range table {
		m := make(map[string]any, len(row))
		for k, v := range row {
			if c, ok := rename[k]; ok {
				k = c
			}
			m[k] = v
		}
		out = append(out, m)
	}
	return out, nil
}

// WriteJSON пишет v с отступами, как отдаёт HTTP-API.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
