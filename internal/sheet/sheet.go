package sheet

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"classdash/internal/fetchcache"
	appLog "classdash/internal/log"
	"classdash/internal/model"
)

// Tab names of the two secondary sheets. The timetable lives on the
// default (first) tab.
const (
	eventsTab    = "행사"
	studyPlanTab = "주학습계획안"
)

var (
	sheetPathRe = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	sheetBareRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{10,}$`)
)

// ExtractSpreadsheetID pulls the document ID out of either a full Google
// Sheets sharing URL or a bare ID token (>= 10 chars of [A-Za-z0-9_-]).
// Returns "" when the input is neither.
func ExtractSpreadsheetID(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if m := sheetPathRe.FindStringSubmatch(input); len(m) > 1 {
		return m[1]
	}
	if sheetBareRe.MatchString(input) {
		return input
	}
	return ""
}

// csvExportURL builds the gviz CSV export URL for a tab. An empty tab name
// means the default tab.
func csvExportURL(sheetID, tab string) string {
	u := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/gviz/tq?tqx=out:csv", sheetID)
	if tab != "" {
		u += "&sheet=" + url.QueryEscape(tab)
	}
	return u
}

// Client fetches and parses the three logical spreadsheet tabs.
type Client struct {
	fetcher *fetchcache.Fetcher
}

// NewClient creates a spreadsheet client backed by the given cached fetcher.
func NewClient(fetcher *fetchcache.Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// FetchTimetable loads and parses the default (timetable) tab.
// A missing/invalid spreadsheet reference yields (nil, nil).
func (c *Client) FetchTimetable(ctx context.Context, spreadsheetURL string) (*model.TimetableData, error) {
	rows, err := c.fetchTab(ctx, spreadsheetURL, "")
	if err != nil || rows == nil {
		return nil, err
	}
	return BuildTimetable(rows), nil
}

// FetchEvents loads and parses the 행사 tab, windowed to now..+2 months.
func (c *Client) FetchEvents(ctx context.Context, spreadsheetURL string, now time.Time) ([]model.ScheduleEvent, error) {
	rows, err := c.fetchTab(ctx, spreadsheetURL, eventsTab)
	if err != nil || rows == nil {
		return nil, err
	}
	return BuildEvents(rows, now), nil
}

// FetchStudyPlan loads and parses the 주학습계획안 tab. today is the
// YYYYMMDD string used to resolve the current block.
func (c *Client) FetchStudyPlan(ctx context.Context, spreadsheetURL, today string) (*model.StudyPlanResult, error) {
	rows, err := c.fetchTab(ctx, spreadsheetURL, studyPlanTab)
	if err != nil || rows == nil {
		return nil, err
	}
	return BuildStudyPlan(rows, today), nil
}

func (c *Client) fetchTab(ctx context.Context, spreadsheetURL, tab string) ([][]string, error) {
	sheetID := ExtractSpreadsheetID(spreadsheetURL)
	if sheetID == "" {
		return nil, nil
	}

	res, err := c.fetcher.Fetch(ctx, csvExportURL(sheetID, tab))
	if err != nil {
		return nil, err
	}
	if res.FromCache {
		appLog.Debug("sheet tab served from cache", "tab", tab)
	}
	return ParseCSV(string(res.Body)), nil
}
