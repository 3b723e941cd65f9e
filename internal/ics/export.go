package ics

import (
	"fmt"
	"hash/fnv"
	"time"

	ical "github.com/arran4/golang-ical"

	"classdash/internal/model"
)

// Export serializes the merged schedule as an ICS calendar of all-day
// events, so the dashboard's schedule can be subscribed to from a phone or
// family calendar. Events whose date fails to parse are skipped.
func Export(events []model.ScheduleEvent, calName string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//classdash//school schedule//KO")
	if calName != "" {
		cal.SetXWRCalName(calName)
	}

	now := time.Now().In(loc)
	for _, e := range events {
		day, err := time.ParseInLocation("20060102", e.Date, loc)
		if err != nil {
			continue
		}

		// UID must be stable per event so re-imports update in place.
		h := fnv.New32a()
		h.Write([]byte(e.Name))
		uid := fmt.Sprintf("%s-%08x@classdash", e.Date, h.Sum32())
		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(now)
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ve.SetSummary(e.Name)
		if e.Detail != "" {
			ve.SetDescription(e.Detail)
		}
	}

	return cal.Serialize()
}
