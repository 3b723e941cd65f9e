package sheet

import (
	"strconv"
	"strings"
	"time"

	"classdash/internal/model"
)

// BuildEvents turns tokenized 행사-tab rows into schedule events.
//
// Row 0 is a header and is skipped. Each data row is (date, name, detail?);
// rows with a blank date or name, or a date that does not normalize, are
// dropped. Only events from now's calendar day through two calendar months
// ahead (boundary inclusive) survive; the merger downstream assumes its
// inputs are already windowed.
func BuildEvents(rows [][]string, now time.Time) []model.ScheduleEvent {
	if len(rows) < 2 {
		return nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 2, 0)

	var events []model.ScheduleEvent
	for _, cols := range rows[1:] {
		if len(cols) < 2 {
			continue
		}
		rawDate := strings.TrimSpace(cols[0])
		name := strings.TrimSpace(cols[1])
		if rawDate == "" || name == "" {
			continue
		}

		dateStr := NormalizeDate(rawDate)
		if dateStr == "" {
			continue
		}

		y, _ := strconv.Atoi(dateStr[:4])
		m, _ := strconv.Atoi(dateStr[4:6])
		d, _ := strconv.Atoi(dateStr[6:8])
		eventDate := time.Date(y, time.Month(m), d, 0, 0, 0, 0, now.Location())
		if eventDate.Before(today) || eventDate.After(cutoff) {
			continue
		}

		ev := model.ScheduleEvent{Date: dateStr, Name: name}
		if len(cols) > 2 {
			if detail := strings.TrimSpace(cols[2]); detail != "" {
				ev.Detail = detail
			}
		}
		events = append(events, ev)
	}

	return events
}
