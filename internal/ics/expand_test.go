package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expandRange() (time.Time, time.Time) {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
}

func TestToScheduleEvents_SingleEvent(t *testing.T) {
	start, end := expandRange()
	parsed := []ParsedEvent{{
		UID:         "one@example.com",
		Summary:     "현장학습",
		Description: "과학관",
		Start:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
	}}

	events := ToScheduleEvents(parsed, time.UTC, start, end)
	require.Len(t, events, 1)
	assert.Equal(t, "20260310", events[0].Date)
	assert.Equal(t, "현장학습", events[0].Name)
	assert.Equal(t, "과학관", events[0].Detail)
}

func TestToScheduleEvents_OutsideRange(t *testing.T) {
	start, end := expandRange()
	parsed := []ParsedEvent{{
		UID:     "past@example.com",
		Summary: "지난 일정",
		Start:   time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}}

	assert.Empty(t, ToScheduleEvents(parsed, time.UTC, start, end))
}

func TestToScheduleEvents_WeeklyRecurrence(t *testing.T) {
	start, end := expandRange()
	parsed := []ParsedEvent{{
		UID:      "weekly@example.com",
		Summary:  "방과후 수업",
		Start:    time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), // Monday
		RawRRule: "FREQ=WEEKLY;BYDAY=MO",
		ExDates:  []time.Time{time.Date(2026, 3, 16, 14, 0, 0, 0, time.UTC)},
	}}

	events := ToScheduleEvents(parsed, time.UTC, start, end)

	var dates []string
	for _, e := range events {
		dates = append(dates, e.Date)
	}
	// Mondays in March 2026 minus the excluded 16th.
	assert.ElementsMatch(t, []string{"20260302", "20260309", "20260323", "20260330"}, dates)
}

func TestToScheduleEvents_RecurrenceOverride(t *testing.T) {
	start, end := expandRange()
	base := ParsedEvent{
		UID:      "weekly@example.com",
		Summary:  "방과후 수업",
		Start:    time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=WEEKLY;BYDAY=MO;COUNT=2",
	}
	recID := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	override := ParsedEvent{
		UID:          "weekly@example.com",
		Summary:      "방과후 수업 (보강)",
		Start:        time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC),
		RecurrenceID: &recID,
	}

	events := ToScheduleEvents([]ParsedEvent{base, override}, time.UTC, start, end)
	require.Len(t, events, 2)

	byDate := map[string]string{}
	for _, e := range events {
		byDate[e.Date] = e.Name
	}
	assert.Equal(t, "방과후 수업", byDate["20260302"])
	// The overridden instance moves to the 11th with its own summary.
	assert.Equal(t, "방과후 수업 (보강)", byDate["20260311"])
}

func TestToScheduleEvents_InvalidRange(t *testing.T) {
	start, _ := expandRange()
	assert.Nil(t, ToScheduleEvents(nil, time.UTC, start, start.AddDate(0, 0, -1)))
}

func TestToScheduleEvents_BadRRuleSkipped(t *testing.T) {
	start, end := expandRange()
	parsed := []ParsedEvent{{
		UID:      "bad@example.com",
		Summary:  "불량 반복 규칙",
		Start:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		RawRRule: "FREQ=NOPE",
	}}

	assert.Empty(t, ToScheduleEvents(parsed, time.UTC, start, end))
}
