// Package neis talks to the NEIS open-data hub (open.neis.go.kr): school
// meals, the official school schedule, and school search.
//
// NEIS wraps every result set in a two-element array whose second element
// carries the rows; fewer than two elements means "no data" and is not an
// error.
package neis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"classdash/internal/model"
)

// DefaultBaseURL is the production NEIS hub endpoint.
const DefaultBaseURL = "https://open.neis.go.kr/hub"

const (
	searchCacheTTL     = 10 * time.Minute
	searchCacheCleanup = 30 * time.Minute
)

// Client is a NEIS hub client. BaseURL is overridable for tests.
type Client struct {
	BaseURL string

	httpClient  *http.Client
	searchCache *gocache.Cache
}

// NewClient creates a NEIS client with a bounded request timeout and a TTL
// cache in front of school search (the settings UI fires a search per
// keystroke).
func NewClient() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		searchCache: gocache.New(searchCacheTTL, searchCacheCleanup),
	}
}

// FetchMeals returns the meal menus between fromDate and toDate (YYYYMMDD,
// inclusive). No data yields (nil, nil).
func (c *Client) FetchMeals(ctx context.Context, apiKey, officeCode, schoolCode, fromDate, toDate string) ([]model.MealData, error) {
	u := fmt.Sprintf(
		"%s/mealServiceDietInfo?KEY=%s&ATPT_OFCDC_SC_CODE=%s&SD_SCHUL_CODE=%s&MLSV_FROM_YMD=%s&MLSV_TO_YMD=%s&Type=json",
		c.BaseURL, apiKey, officeCode, schoolCode, fromDate, toDate,
	)

	var raw struct {
		MealServiceDietInfo []json.RawMessage `json:"mealServiceDietInfo"`
	}
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}
	if len(raw.MealServiceDietInfo) < 2 {
		return nil, nil
	}

	var rowData struct {
		Row []struct {
			MLSV_YMD string `json:"MLSV_YMD"`
			DDISH_NM string `json:"DDISH_NM"`
			CAL_INFO string `json:"CAL_INFO"`
		} `json:"row"`
	}
	if err := json.Unmarshal(raw.MealServiceDietInfo[1], &rowData); err != nil {
		return nil, err
	}

	var meals []model.MealData
	for _, row := range rowData.Row {
		// Menu entries arrive as one "<br/>"-separated string.
		var menu []string
		for _, item := range strings.Split(row.DDISH_NM, "<br/>") {
			if item = strings.TrimSpace(item); item != "" {
				menu = append(menu, item)
			}
		}
		meals = append(meals, model.MealData{
			Date:     row.MLSV_YMD,
			Menu:     menu,
			Calories: row.CAL_INFO,
		})
	}
	return meals, nil
}

// FetchSchoolEvents returns the official school schedule between fromDate
// and toDate (YYYYMMDD, inclusive).
func (c *Client) FetchSchoolEvents(ctx context.Context, apiKey, officeCode, schoolCode, fromDate, toDate string) ([]model.ScheduleEvent, error) {
	u := fmt.Sprintf(
		"%s/SchoolSchedule?KEY=%s&ATPT_OFCDC_SC_CODE=%s&SD_SCHUL_CODE=%s&AA_FROM_YMD=%s&AA_TO_YMD=%s&Type=json",
		c.BaseURL, apiKey, officeCode, schoolCode, fromDate, toDate,
	)

	var raw struct {
		SchoolSchedule []json.RawMessage `json:"SchoolSchedule"`
	}
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}
	if len(raw.SchoolSchedule) < 2 {
		return nil, nil
	}

	var rowData struct {
		Row []struct {
			AA_YMD      string `json:"AA_YMD"`
			EVENT_NM    string `json:"EVENT_NM"`
			EVENT_CNTNT string `json:"EVENT_CNTNT"`
		} `json:"row"`
	}
	if err := json.Unmarshal(raw.SchoolSchedule[1], &rowData); err != nil {
		return nil, err
	}

	var events []model.ScheduleEvent
	for _, row := range rowData.Row {
		events = append(events, model.ScheduleEvent{
			Date:   row.AA_YMD,
			Name:   row.EVENT_NM,
			Detail: row.EVENT_CNTNT,
		})
	}
	return events, nil
}

// SearchSchools looks schools up by name. Results are cached per name for
// a short TTL.
func (c *Client) SearchSchools(ctx context.Context, apiKey, name string) ([]model.SchoolInfo, error) {
	if name == "" {
		return nil, nil
	}

	if cached, ok := c.searchCache.Get(name); ok {
		return cached.([]model.SchoolInfo), nil
	}

	u := fmt.Sprintf(
		"%s/schoolInfo?KEY=%s&SCHUL_NM=%s&Type=json",
		c.BaseURL, apiKey, url.QueryEscape(name),
	)

	var raw struct {
		SchoolInfo []json.RawMessage `json:"schoolInfo"`
	}
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return nil, err
	}
	if len(raw.SchoolInfo) < 2 {
		return nil, nil
	}

	var rowData struct {
		Row []struct {
			SD_SCHUL_CODE      string `json:"SD_SCHUL_CODE"`
			ATPT_OFCDC_SC_CODE string `json:"ATPT_OFCDC_SC_CODE"`
			SCHUL_NM           string `json:"SCHUL_NM"`
			ORG_RDNMA          string `json:"ORG_RDNMA"`
		} `json:"row"`
	}
	if err := json.Unmarshal(raw.SchoolInfo[1], &rowData); err != nil {
		return nil, err
	}

	var results []model.SchoolInfo
	for _, row := range rowData.Row {
		results = append(results, model.SchoolInfo{
			SchoolCode: row.SD_SCHUL_CODE,
			OfficeCode: row.ATPT_OFCDC_SC_CODE,
			SchoolName: row.SCHUL_NM,
			Address:    row.ORG_RDNMA,
		})
	}

	c.searchCache.Set(name, results, gocache.DefaultExpiration)
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("neis: API returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
