package sheet

import (
	"regexp"
	"strings"

	"classdash/internal/model"
)

// The 주학습계획안 tab is a stream of heterogeneous row kinds that repeats
// per week:
//
//	"1학기 1주차 (2026.03.01.~2026.03.08.)", "", "", ...   <- title row
//	"", "월요일", "화요일", ...                             <- header row
//	"1교시", "국어", "수학", ...                            <- data row
//	"", "추가 내용", "", ...                                <- continuation row
//
// Rows are classified by which columns are empty, then fed to an explicit
// block state machine; inline branching on cell shapes is avoided so the
// segmentation rules stay in one place.
type rowKind int

const (
	rowUnknown rowKind = iota
	rowTitle
	rowHeader
	rowData
	rowContinuation
)

// parenRe captures the parenthesized date range inside a block title.
var parenRe = regexp.MustCompile(`\(([^)]+)\)`)

// classifyRow tags a tokenized spreadsheet row.
//
//   - title: column 0 non-empty, every other column empty
//   - header: column 0 empty and some column carries a day-name token
//     ("요일" substring or a bare 월/화/수/목/금)
//   - data: column 0 non-empty (new period-label row)
//   - continuation: column 0 empty with at least one non-empty cell
//   - unknown: entirely empty
func classifyRow(row []string) rowKind {
	if len(row) == 0 {
		return rowUnknown
	}

	col0 := strings.TrimSpace(row[0])
	rest := false
	day := false
	for i := 1; i < len(row); i++ {
		v := strings.TrimSpace(row[i])
		if v == "" {
			continue
		}
		rest = true
		if strings.Contains(v, "요일") || isDayName(v) {
			day = true
		}
	}

	switch {
	case col0 != "" && !rest:
		return rowTitle
	case col0 == "" && day:
		return rowHeader
	case col0 != "":
		return rowData
	case rest:
		return rowContinuation
	default:
		return rowUnknown
	}
}

func isDayName(v string) bool {
	switch v {
	case "월", "화", "수", "목", "금":
		return true
	}
	return false
}

// extractDateRange pulls the start/end YYYYMMDD pair out of a block title
// like "1학기 1주차 (2026.03.01.~2026.03.08.)". A single date inside the
// parentheses counts as both ends. Returns ("", "") when no usable pair is
// present; such a block still parses but can never match today.
func extractDateRange(title string) (string, string) {
	m := parenRe.FindStringSubmatch(title)
	if len(m) < 2 {
		return "", ""
	}

	parts := strings.SplitN(m[1], "~", 2)
	if len(parts) != 2 {
		d := NormalizeDate(strings.TrimSpace(parts[0]))
		return d, d
	}

	start := NormalizeDate(strings.TrimSpace(parts[0]))
	end := NormalizeDate(strings.TrimSpace(parts[1]))
	if start == "" || end == "" {
		return "", ""
	}
	return start, end
}

// rawBlock is a title plus the rows collected until the next title.
type rawBlock struct {
	title     string
	startDate string
	endDate   string
	rows      [][]string
}

// BuildStudyPlan segments tokenized rows into weekly blocks and resolves
// which block contains today (a YYYYMMDD string, injected for testability).
//
// Blocks lacking a header row or ending with zero period rows are discarded.
// When no block's date range contains today, the last block is current.
// Returns nil when no valid block survives.
func BuildStudyPlan(rows [][]string, today string) *model.StudyPlanResult {
	if len(rows) < 3 {
		return nil
	}

	var rawBlocks []rawBlock
	for _, row := range rows {
		switch classifyRow(row) {
		case rowTitle:
			title := strings.TrimSpace(row[0])
			start, end := extractDateRange(title)
			rawBlocks = append(rawBlocks, rawBlock{title: title, startDate: start, endDate: end})
		case rowUnknown:
			// Fully empty rows separate nothing; drop them.
		default:
			if len(rawBlocks) > 0 {
				last := &rawBlocks[len(rawBlocks)-1]
				last.rows = append(last.rows, row)
			}
		}
	}

	if len(rawBlocks) == 0 {
		return nil
	}

	var blocks []model.StudyPlanBlock
	currentIndex := -1

	for _, rb := range rawBlocks {
		parsed := parseBlock(rb.title, rb.rows)
		if parsed == nil {
			continue
		}
		idx := len(blocks)
		blocks = append(blocks, *parsed)

		if currentIndex < 0 && rb.startDate != "" && rb.endDate != "" {
			if today >= rb.startDate && today <= rb.endDate {
				currentIndex = idx
			}
		}
	}

	if len(blocks) == 0 {
		return nil
	}
	if currentIndex < 0 {
		currentIndex = len(blocks) - 1
	}

	return &model.StudyPlanResult{Blocks: blocks, CurrentIndex: currentIndex}
}

// parseBlock builds one StudyPlanBlock from the rows between two titles.
// The first header row fixes the day headers and column count; data rows
// after it become period rows, and continuation rows newline-join their
// cells into the previous period row.
func parseBlock(title string, rows [][]string) *model.StudyPlanBlock {
	if len(rows) < 2 {
		return nil
	}

	headerIdx := -1
	for i, row := range rows {
		if classifyRow(row) == rowHeader {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	headerRow := rows[headerIdx]
	var headers []string
	for i := 1; i < len(headerRow); i++ {
		if h := strings.TrimSpace(headerRow[i]); h != "" {
			headers = append(headers, h)
		}
	}
	if len(headers) == 0 {
		return nil
	}
	numCols := len(headers)

	type periodRow struct {
		label string
		cells []string
	}

	var periods []periodRow
	for _, row := range rows[headerIdx+1:] {
		col0 := strings.TrimSpace(row[0])

		cells := make([]string, numCols)
		for j := 0; j < numCols; j++ {
			if j+1 < len(row) {
				cells[j] = strings.TrimSpace(row[j+1])
			}
		}

		if col0 != "" {
			periods = append(periods, periodRow{label: col0, cells: cells})
			continue
		}

		// Continuation: extend the previous period row cell-by-cell.
		if len(periods) == 0 {
			continue
		}
		last := &periods[len(periods)-1]
		for j := 0; j < numCols; j++ {
			if cells[j] == "" {
				continue
			}
			if last.cells[j] != "" {
				last.cells[j] += "\n" + cells[j]
			} else {
				last.cells[j] = cells[j]
			}
		}
	}

	if len(periods) == 0 {
		return nil
	}

	var dataRows [][]string
	for _, p := range periods {
		row := make([]string, numCols+1)
		row[0] = p.label
		copy(row[1:], p.cells)
		dataRows = append(dataRows, row)
	}

	return &model.StudyPlanBlock{Title: title, Headers: headers, Rows: dataRows}
}
