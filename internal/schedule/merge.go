// Package schedule holds the timing core of the dashboard: event merging,
// the period-status engine and the class alarm scheduler.
package schedule

import (
	"sort"

	"classdash/internal/model"
)

// MaxMergedEvents caps the merged schedule shown on the dashboard.
const MaxMergedEvents = 30

// Merge combines two event lists into one deduplicated, date-sorted list of
// at most MaxMergedEvents entries.
//
// Argument order is the tie-break: when both lists carry the same
// date+name, the primary list's entry (and its detail text) wins. Call
// sites pass the official NEIS list as primary and locally-sourced events
// (spreadsheet, ICS) as secondary. Nil inputs are valid.
//
// Truncation happens after sorting, so the 30 earliest events survive
// rather than the 30 first seen.
func Merge(primary, secondary []model.ScheduleEvent) []model.ScheduleEvent {
	seen := make(map[string]bool, len(primary)+len(secondary))
	var result []model.ScheduleEvent

	for _, list := range [][]model.ScheduleEvent{primary, secondary} {
		for _, e := range list {
			key := e.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, e)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})

	if len(result) > MaxMergedEvents {
		result = result[:MaxMergedEvents]
	}
	return result
}
