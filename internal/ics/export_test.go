package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"classdash/internal/model"
)

func TestExport(t *testing.T) {
	events := []model.ScheduleEvent{
		{Date: "20260302", Name: "개학식", Detail: "강당"},
		{Date: "20260415", Name: "체험학습"},
	}

	out := Export(events, "우리 반 일정", time.UTC)

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "X-WR-CALNAME:우리 반 일정")
	assert.Contains(t, out, "SUMMARY:개학식")
	assert.Contains(t, out, "DESCRIPTION:강당")
	assert.Contains(t, out, "SUMMARY:체험학습")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20260302")
}

func TestExport_StableUIDs(t *testing.T) {
	events := []model.ScheduleEvent{{Date: "20260302", Name: "개학식"}}

	first := Export(events, "", time.UTC)
	second := Export(append([]model.ScheduleEvent{{Date: "20260301", Name: "다른 행사"}}, events...), "", time.UTC)

	uid := extractLine(first, "UID:")
	assert.NotEmpty(t, uid)
	assert.Contains(t, second, uid)
}

func TestExport_SkipsUnparseableDate(t *testing.T) {
	events := []model.ScheduleEvent{
		{Date: "미정", Name: "날짜 없는 행사"},
		{Date: "20260302", Name: "개학식"},
	}

	out := Export(events, "", time.UTC)
	assert.NotContains(t, out, "날짜 없는 행사")
	assert.Contains(t, out, "개학식")
}

func extractLine(s, prefix string) string {
	for _, line := range strings.Split(s, "\r\n") {
		if strings.HasPrefix(line, prefix) {
			return line
		}
	}
	return ""
}
