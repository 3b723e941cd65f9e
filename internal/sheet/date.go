package sheet

import (
	"regexp"
	"strings"
)

// Date normalization accepts three shapes, tried in this order:
//
//  1. YYYY-M-D with '-', '.' or '/' separators, whitespace tolerated around
//     the separators (what the study-plan titles and 행사 tab contain),
//  2. a bare 8-digit YYYYMMDD, passed through,
//  3. M/D/YYYY, the form Google Sheets emits for unformatted date cells in
//     a US-locale document.
//
// Anything else normalizes to "" and the caller skips the record; a guessed
// date is never substituted.
var (
	dateSepRe  = regexp.MustCompile(`^(\d{4})\s*[-./]\s*(\d{1,2})\s*[-./]\s*(\d{1,2})`)
	dateBareRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})$`)
	dateUSRe   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// NormalizeDate converts a raw date string into canonical "YYYYMMDD".
// It returns "" when the input matches none of the supported shapes.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if m := dateSepRe.FindStringSubmatch(raw); m != nil {
		return m[1] + pad2(m[2]) + pad2(m[3])
	}
	if m := dateBareRe.FindStringSubmatch(raw); m != nil {
		return m[1] + m[2] + m[3]
	}
	if m := dateUSRe.FindStringSubmatch(raw); m != nil {
		return m[3] + pad2(m[1]) + pad2(m[2])
	}

	return ""
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
