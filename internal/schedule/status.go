package schedule

import (
	"fmt"
	"strconv"
	"time"

	"classdash/internal/model"
)

// prepWindowMinutes is how long before the first period the day switches
// from before-school to prep.
const prepWindowMinutes = 10

// lunchGapMinutes is the minimum gap between periods that counts as lunch
// rather than a short break.
const lunchGapMinutes = 30

// Status computes where now sits in the school day. It is a pure function
// of the period list and the wall clock; the tick loop calls it every
// second and nothing is persisted between calls.
//
// All comparisons are done in whole minutes since midnight; seconds never
// influence state selection.
func Status(periods []model.Period, now time.Time) model.PeriodStatus {
	wd := now.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return model.PeriodStatus{Type: model.StatusAfterSchool, Message: "주말", MinutesLeft: -1}
	}

	if len(periods) == 0 {
		return model.PeriodStatus{Type: model.StatusBeforeSchool, Message: "시간표 없음", MinutesLeft: -1}
	}

	nowMin := now.Hour()*60 + now.Minute()
	firstStart := toMinutes(periods[0].Start)
	lastEnd := toMinutes(periods[len(periods)-1].End)

	if nowMin < firstStart-prepWindowMinutes {
		return model.PeriodStatus{
			Type:        model.StatusBeforeSchool,
			Message:     "등교 전",
			NextPeriod:  periods[0].Period,
			MinutesLeft: firstStart - nowMin,
		}
	}

	if nowMin < firstStart {
		return model.PeriodStatus{
			Type:        model.StatusPrep,
			Message:     "수업 준비",
			NextPeriod:  periods[0].Period,
			MinutesLeft: firstStart - nowMin,
		}
	}

	if nowMin >= lastEnd {
		return model.PeriodStatus{Type: model.StatusAfterSchool, Message: "하교 후", MinutesLeft: -1}
	}

	for i, p := range periods {
		start := toMinutes(p.Start)
		end := toMinutes(p.End)

		if nowMin >= start && nowMin < end {
			next := 0
			if i+1 < len(periods) {
				next = periods[i+1].Period
			}
			return model.PeriodStatus{
				Type:          model.StatusInClass,
				CurrentPeriod: p.Period,
				NextPeriod:    next,
				Message:       fmt.Sprintf("%d교시 수업 중", p.Period),
				MinutesLeft:   end - nowMin,
			}
		}

		if i+1 < len(periods) {
			nextStart := toMinutes(periods[i+1].Start)
			if nowMin >= end && nowMin < nextStart {
				st := model.StatusBreak
				msg := "쉬는 시간"
				if nextStart-end >= lunchGapMinutes {
					st = model.StatusLunch
					msg = "점심시간"
				}
				return model.PeriodStatus{
					Type:        st,
					NextPeriod:  periods[i+1].Period,
					Message:     msg,
					MinutesLeft: nextStart - nowMin,
				}
			}
		}
	}

	// Unreachable with well-formed periods; treat as a generic break.
	return model.PeriodStatus{Type: model.StatusBreak, Message: "쉬는 시간", MinutesLeft: -1}
}

// toMinutes converts a zero-padded "HH:MM" string to minutes since
// midnight. Period times are validated by the timetable builder, so a
// malformed string here simply maps to 0.
func toMinutes(hhmm string) int {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0
	}
	h, err1 := strconv.Atoi(hhmm[:2])
	m, err2 := strconv.Atoi(hhmm[3:])
	if err1 != nil || err2 != nil {
		return 0
	}
	return h*60 + m
}
