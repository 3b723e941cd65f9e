package sheet

import "strings"

// ParseCSV tokenizes a raw CSV blob into rows of fields.
//
// The Google Sheets gviz export is close to RFC 4180 but not strict, so this
// parser is deliberately tolerant:
//
//   - fields are separated by ',' and records by '\n' or "\r\n"; both record
//     separators may appear within one input,
//   - a '"' outside quote state enters quote state; inside it, ',' and
//     newlines are literal and "" is one literal '"',
//   - a trailing field or row without a final terminator is still emitted,
//   - empty input yields zero rows.
//
// No header semantics live here; callers interpret row 0 themselves.
func ParseCSV(csvText string) [][]string {
	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	for i := 0; i < len(csvText); i++ {
		ch := csvText[i]

		if inQuotes {
			switch {
			case ch == '"' && i+1 < len(csvText) && csvText[i+1] == '"':
				field.WriteByte('"')
				i++
			case ch == '"':
				inQuotes = false
			default:
				field.WriteByte(ch)
			}
			continue
		}

		switch {
		case ch == '"':
			inQuotes = true
		case ch == ',':
			row = append(row, field.String())
			field.Reset()
		case ch == '\r' && i+1 < len(csvText) && csvText[i+1] == '\n':
			row = append(row, field.String())
			field.Reset()
			rows = append(rows, row)
			row = nil
			i++
		case ch == '\n':
			row = append(row, field.String())
			field.Reset()
			rows = append(rows, row)
			row = nil
		default:
			field.WriteByte(ch)
		}
	}

	// Last record may lack a terminator.
	if field.Len() > 0 || len(row) > 0 {
		row = append(row, field.String())
		rows = append(rows, row)
	}

	return rows
}
