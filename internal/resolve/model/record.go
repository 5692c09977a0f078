package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Канонические имена полей записи и их синонимы из выгрузок.
const (
	FieldBrand       = "brand_standardized"
	FieldProductLine = "product_line_raw"
	FieldShade       = "shade_raw"
	FieldVideoID     = "canonical_video_id"
)

var fieldAliases = map[string][]string{
	FieldBrand:       {FieldBrand},
	FieldProductLine: {FieldProductLine, "product_line_raw_examples"},
	FieldShade:       {FieldShade, "shade_raw_examples"},
}

// ParseRecord validates the required fields of a raw row. The returned
// record keeps fields as-is for pass-through.
func ParseRecord(index int, fields map[string]any) (InputRecord, error) {
	rec := InputRecord{Fields: fields}

	brand, present, ok := lookupText(fields, FieldBrand)
	switch {
	case !present:
		return rec, &MalformedRecordError{Index: index, Field: FieldBrand, Cause: "missing"}
	case !ok:
		return rec, &MalformedRecordError{Index: index, Field: FieldBrand, Cause: "not a string"}
	case strings.TrimSpace(brand) == "":
		return rec, &MalformedRecordError{Index: index, Field: FieldBrand, Cause: "empty"}
	}
	rec.BrandStandardized = strings.TrimSpace(brand)

	pl, present, ok := lookupText(fields, FieldProductLine)
	if present && !ok {
		return rec, &MalformedRecordError{Index: index, Field: FieldProductLine, Cause: "not a string"}
	}
	rec.ProductLineRaw = strings.TrimSpace(pl)

	shade, present, ok := lookupText(fields, FieldShade)
	if present && !ok {
		return rec, &MalformedRecordError{Index: index, Field: FieldShade, Cause: "not a string"}
	}
	if present {
		s := strings.TrimSpace(shade)
		rec.ShadeRaw = &s
	}
	return rec, nil
}

// lookupText: present=false если поля нет (или оно null), ok=false если тип не строковый.
func lookupText(fields map[string]any, canonical string) (val string, present, ok bool) {
	for _, name := range fieldAliases[canonical] {
		v, exists := fields[name]
		if !exists || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return t, true, true
		case json.Number:
			return t.String(), true, true
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), true, true
		case int:
			return strconv.Itoa(t), true, true
		case int64:
			return strconv.FormatInt(t, 10), true, true
		default:
			return "", true, false
		}
	}
	return "", false, false
}

// Key identifies a record across resumed runs: video|brand|product|shade.
func (r InputRecord) Key() string {
	video := ""
	if v, ok := r.Fields[FieldVideoID]; ok && v != nil {
		if s, isStr := v.(string); isStr {
			video = s
		} else {
			b, _ := json.Marshal(v)
			video = string(b)
		}
	}
	shade := ""
	if r.ShadeRaw != nil {
		shade = *r.ShadeRaw
	}
	return strings.Join([]string{video, r.BrandStandardized, r.ProductLineRaw, shade}, "|")
}

// Output flattens the pass-through fields and the resolution into one row.
func (it BatchItem) Output() map[string]any {
	out := make(map[string]any, len(it.Record.Fields)+6)
	for k, v := range it.Record.Fields {
		out[k] = v
	}
	if it.Err != nil {
		out["error"] = it.Err.Error()
		return out
	}
	if it.Resolved == nil {
		return out
	}
	rr := it.Resolved
	out["product_line_standardized"] = rr.ProductLineStandardized
	out["shade_standardized"] = rr.ShadeStandardized
	out["match_status"] = rr.MatchStatus
	out["disambiguation_score"] = rr.DisambiguationScore
	if rr.ShadeMatch != "" {
		out["shade_match"] = rr.ShadeMatch
	}
	if len(rr.ReviewProductLines) > 0 {
		out["review_product_lines"] = rr.ReviewProductLines
	}
	return out
}
