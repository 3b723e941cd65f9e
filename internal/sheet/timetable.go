package sheet

import (
	"regexp"
	"strconv"
	"strings"

	"classdash/internal/model"
)

// timeRe matches H:MM or HH:MM class-period boundaries.
var timeRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// defaultDayHeaders is the Mon-Fri fallback when the header row carries no
// day columns.
var defaultDayHeaders = []string{"월", "화", "수", "목", "금"}

// BuildTimetable turns tokenized CSV rows into a timetable.
//
// Row 0 is the header; columns from index 3 on are day names. Each data row
// is (period number, start, end, subjects...). A row with a non-numeric
// period or a malformed time is skipped whole, never repaired. Short subject
// rows are right-padded with empty strings so every row has one cell per
// day header.
//
// Returns nil when the input has fewer than two rows or when no data row
// survives filtering; nil means "no usable timetable", which callers treat
// differently from an intentionally empty one.
func BuildTimetable(rows [][]string) *model.TimetableData {
	if len(rows) < 2 {
		return nil
	}

	headerRow := rows[0]
	var headers []string
	for i := 3; i < len(headerRow); i++ {
		headers = append(headers, strings.TrimSpace(headerRow[i]))
	}
	if len(headers) == 0 {
		headers = append([]string(nil), defaultDayHeaders...)
	}
	numDayCols := len(headers)

	var periods []model.Period
	var subjects [][]string

	for _, cols := range rows[1:] {
		if len(cols) < 3 {
			continue
		}

		periodNum, err := strconv.Atoi(strings.TrimSpace(cols[0]))
		if err != nil || periodNum < 1 {
			continue
		}

		start := strings.TrimSpace(cols[1])
		end := strings.TrimSpace(cols[2])
		if !timeRe.MatchString(start) || !timeRe.MatchString(end) {
			continue
		}
		start = padTime(start)
		end = padTime(end)

		periods = append(periods, model.Period{Period: periodNum, Start: start, End: end})

		daySubjects := make([]string, numDayCols)
		for d := 0; d < numDayCols; d++ {
			if 3+d < len(cols) {
				daySubjects[d] = strings.TrimSpace(cols[3+d])
			}
		}
		subjects = append(subjects, daySubjects)
	}

	if len(periods) == 0 {
		return nil
	}

	return &model.TimetableData{Headers: headers, Periods: periods, Subjects: subjects}
}

// padTime zero-pads "H:MM" to "HH:MM".
func padTime(t string) string {
	if len(t) == 4 {
		return "0" + t
	}
	return t
}
