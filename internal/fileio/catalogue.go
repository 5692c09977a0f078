package fileio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"shade-resolver/internal/resolve/model"
)

// Допустимые заголовки каталога в табличных выгрузках.
var (
	catBrandCols = []string{"brand", "brand_name", "бренд"}
	catLineCols  = []string{"product_line", "product line", "product", "линейка"}
	catShadeCols = []string{"shade", "shades", "shade_name", "оттенок"}
)

type catalogueFile struct {
	Products []model.CatalogueEntry `json:"products"`
}

// ReadCatalogueFile opens path and reads the catalogue. Content errors wrap
// model.ErrMalformedCatalogue; I/O errors are returned as is.
func ReadCatalogueFile(path string) ([]model.CatalogueEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalogue: %w", err)
	}
	defer f.Close()
	return ReadCatalogue(f, path)
}

// ReadCatalogue reads JSON ({"products":[...]} or a bare array) or a table
// with brand / product_line / shade columns. Table rows are grouped into
// entries by (brand, product_line) in first-seen order; a shade cell may
// hold several shades separated by "|".
func ReadCatalogue(r io.Reader, filename string) ([]model.CatalogueEntry, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedCatalogue, err)
	}
	var entries []model.CatalogueEntry
	if format == FormatJSON {
		entries, err = readCatalogueJSON(r)
	} else {
		entries, err = readCatalogueTable(r, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrMalformedCatalogue, filename, err)
	}
	return entries, nil
}

func readCatalogueJSON(r io.Reader) ([]model.CatalogueEntry, error) {
	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(br)
	switch first {
	case '[':
		var list []model.CatalogueEntry
		if err := dec.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	case '{':
		var cf catalogueFile
		if err := dec.Decode(&cf); err != nil {
			return nil, err
		}
		if cf.Products == nil {
			return nil, fmt.Errorf(`missing "products"`)
		}
		return cf.Products, nil
	default:
		return nil, fmt.Errorf("unexpected %q at start of catalogue", first)
	}
}

func readCatalogueTable(r io.Reader, filename string) ([]model.CatalogueEntry, error) {
	rows, err := ReadTable(r, filename, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	headers := headersOf(rows)
	brandCol := resolveKey(headers, catBrandCols)
	lineCol := resolveKey(headers, catLineCols)
	shadeCol := resolveKey(headers, catShadeCols)
	if brandCol == "" || lineCol == "" || shadeCol == "" {
		return nil, fmt.Errorf("need brand, product_line and shade columns, got %v", headers)
	}

	type lineKey struct{ brand, line string }
	pos := make(map[lineKey]int)
	var out []model.CatalogueEntry
	for _, row := range rows {
		k := lineKey{row[brandCol], row[lineCol]}
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, model.CatalogueEntry{Brand: k.brand, ProductLine: k.line})
		}
		for _, s := range strings.Split(row[shadeCol], "|") {
			if s = strings.TrimSpace(s); s != "" {
				out[i].Shades = append(out[i].Shades, s)
			}
		}
	}
	return out, nil
}

// смотрит первый значимый байт, не съедая его
func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case 0xEF: // UTF-8 BOM
			_, _ = br.Discard(2)
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
