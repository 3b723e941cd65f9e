package ics

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "classdash/internal/log"
	"classdash/internal/model"
)

// maxOccurrencesPerEvent caps recurrence expansion so a pathological RRULE
// cannot flood the schedule.
const maxOccurrencesPerEvent = 500

// ToScheduleEvents expands parsed VEVENTs into dated schedule events within
// [rangeStart, rangeEnd], applying RRULE recurrence, EXDATE exceptions and
// RECURRENCE-ID overrides. Each occurrence becomes one event dated by its
// local start day in loc.
func ToScheduleEvents(parsed []ParsedEvent, loc *time.Location, rangeStart, rangeEnd time.Time) []model.ScheduleEvent {
	if loc == nil {
		loc = time.Local
	}
	if rangeEnd.Before(rangeStart) {
		return nil
	}

	// Split base events from per-instance overrides, keyed by UID.
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range parsed {
		if ev.RecurrenceID != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	var events []model.ScheduleEvent
	for uid, bases := range baseByUID {
		overrides := overridesByUID[uid]
		for _, ev := range bases {
			for _, start := range occurrenceStarts(ev, rangeStart, rangeEnd) {
				eff := ev
				if o, ok := overrideFor(overrides, start); ok {
					eff = o
					start = o.Start
				}
				events = append(events, model.ScheduleEvent{
					Date:   start.In(loc).Format("20060102"),
					Name:   eff.Summary,
					Detail: eff.Description,
				})
			}
		}
	}
	return events
}

// occurrenceStarts lists the start instants of ev within the range.
func occurrenceStarts(ev ParsedEvent, rangeStart, rangeEnd time.Time) []time.Time {
	if ev.RawRRule == "" {
		if ev.Start.Before(rangeStart) || ev.Start.After(rangeEnd) {
			return nil
		}
		return []time.Time{ev.Start}
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Warn("ics rrule skipped", "uid", ev.UID, "rrule", ev.RawRRule, "reason", err.Error())
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	starts := set.Between(
		rangeStart.In(ev.Start.Location()),
		rangeEnd.In(ev.Start.Location()),
		true,
	)
	if len(starts) > maxOccurrencesPerEvent {
		appLog.Warn("ics recurrence truncated", "uid", ev.UID, "cap", maxOccurrencesPerEvent)
		starts = starts[:maxOccurrencesPerEvent]
	}
	return starts
}

// overrideFor finds the override whose RECURRENCE-ID matches start exactly.
func overrideFor(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.RecurrenceID == nil {
			continue
		}
		if ov.RecurrenceID.In(start.Location()).Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}
