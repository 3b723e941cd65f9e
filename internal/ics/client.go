package ics

import (
	"context"
	"time"

	"classdash/internal/config"
	"classdash/internal/fetchcache"
	appLog "classdash/internal/log"
	"classdash/internal/model"
)

// Client fetches all configured ICS feeds and flattens them into schedule
// events within the dashboard's event window.
type Client struct {
	fetcher *fetchcache.Fetcher
}

// NewClient creates an ICS client backed by the given cached fetcher.
func NewClient(fetcher *fetchcache.Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// FetchEvents loads every configured source and returns the combined event
// list for now's day through two calendar months ahead. Per-source failures
// are logged and skipped; the remaining sources still contribute.
func (c *Client) FetchEvents(ctx context.Context, sources []config.ICSSource, now time.Time, loc *time.Location) []model.ScheduleEvent {
	if loc == nil {
		loc = time.Local
	}
	rangeStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	rangeEnd := rangeStart.AddDate(0, 2, 1).Add(-time.Second)

	var events []model.ScheduleEvent
	for _, src := range sources {
		if src.URL == "" {
			continue
		}
		id := src.ID
		if id == "" {
			if src.Name != "" {
				id = src.Name
			} else {
				id = src.URL
			}
		}

		res, err := c.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			appLog.Error("ics fetch failed", err, "id", id, "url", fetchcache.RedactURL(src.URL))
			continue
		}

		parsed, err := Parse(Source{ID: id, URL: src.URL}, res.Body)
		if err != nil {
			continue
		}
		events = append(events, ToScheduleEvents(parsed, loc, rangeStart, rangeEnd)...)
	}
	return events
}
