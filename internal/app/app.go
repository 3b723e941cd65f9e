// Package app owns the dashboard engine: the periodic full refresh, the
// in-memory snapshot, and the 1-second tick that drives the period status
// and the class alarm.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"classdash/internal/config"
	"classdash/internal/fetchcache"
	"classdash/internal/ics"
	appLog "classdash/internal/log"
	"classdash/internal/model"
	"classdash/internal/neis"
	"classdash/internal/schedule"
	"classdash/internal/sheet"
	"classdash/internal/weather"
)

// App is the long-running dashboard engine.
//
// Two periodic drivers run concurrently: a cron-scheduled full refresh that
// replaces the snapshot wholesale, and a 1-second ticker that recomputes
// the period status and evaluates alarms. The ticker always reads a
// consistent copy of the periods list; the refresh swaps the snapshot in
// one assignment under the write lock, so a status computation never
// observes a half-replaced timetable.
type App struct {
	cfgPath string

	cfgMu sync.RWMutex
	cfg   *config.Config

	loc *time.Location

	sheets   *sheet.Client
	neis     *neis.Client
	weather  *weather.Client
	geocoder *weather.Geocoder
	icsCli   *ics.Client

	snapMu   sync.RWMutex
	snapshot model.DashboardData
	periods  []model.Period

	alarm   *schedule.Alarm
	alarmCh chan model.AlarmEvent

	cron *cron.Cron
	wg   sync.WaitGroup
}

// New creates the engine. player handles alarm playback; pass nil to use
// the logging default.
func New(cfg *config.Config, cfgPath string, player schedule.Player) (*App, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		appLog.Error("invalid timezone, falling back to local", err, "timezone", cfg.Timezone)
		loc = time.Local
	}

	if player == nil {
		player = LogPlayer{}
	}

	fetcher := fetchcache.New(cfg.CacheDir + "/fetch")

	return &App{
		cfgPath:  cfgPath,
		cfg:      cfg,
		loc:      loc,
		sheets:   sheet.NewClient(fetcher),
		neis:     neis.NewClient(),
		weather:  weather.NewClient(),
		geocoder: weather.NewGeocoder(),
		icsCli:   ics.NewClient(fetcher),
		alarm:    schedule.NewAlarm(player),
		alarmCh:  make(chan model.AlarmEvent, 8),
		cron:     cron.New(),
	}, nil
}

// Run blocks until ctx is canceled. It performs one immediate refresh,
// then schedules refreshes per the configured cron expression and runs the
// 1-second tick loop.
func (a *App) Run(ctx context.Context) error {
	a.Refresh(ctx)

	refreshSpec := a.Config().RefreshCron
	if _, err := a.cron.AddFunc(refreshSpec, func() {
		refreshCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		a.Refresh(refreshCtx)
	}); err != nil {
		return err
	}
	a.cron.Start()
	appLog.Info("refresh scheduled", "cron", refreshSpec)

	a.wg.Add(1)
	go a.tickLoop(ctx)

	<-ctx.Done()

	stopCtx := a.cron.Stop()
	<-stopCtx.Done()
	a.wg.Wait()
	return nil
}

// tickLoop drives the per-second status/alarm evaluation.
func (a *App) tickLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(time.Now().In(a.loc))
		}
	}
}

func (a *App) tick(now time.Time) {
	periods := a.Periods()

	cfg := a.Config()
	settings := schedule.AlarmSettings{
		Enabled:   cfg.Alarm.Enabled,
		Sound:     cfg.Alarm.Sound,
		CustomURL: cfg.Alarm.CustomSound,
	}

	ev := a.alarm.Check(periods, now, settings)
	if ev == nil {
		return
	}

	appLog.Info("alarm fired", "period", ev.Period, "phase", ev.Phase)
	select {
	case a.alarmCh <- *ev:
	default:
		// A stalled consumer must not block the tick.
	}
}

// AlarmEvents exposes fired alarms to the API layer for the UI banner.
func (a *App) AlarmEvents() <-chan model.AlarmEvent {
	return a.alarmCh
}

// Refresh fetches every configured source concurrently and replaces the
// snapshot wholesale. Each source is independent: one failure leaves that
// field nil/empty without touching the others.
func (a *App) Refresh(ctx context.Context) {
	cfg := a.Config()
	now := time.Now().In(a.loc)
	start := time.Now()

	var result model.DashboardData
	var neisEvents, sheetEvents, icsEvents []model.ScheduleEvent

	var wg sync.WaitGroup
	var mu sync.Mutex

	hasCoords := cfg.Latitude != 0 || cfg.Longitude != 0
	hasSchool := cfg.NEISAPIKey != "" && cfg.School.SchoolCode != "" && cfg.School.OfficeCode != ""

	if hasCoords {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := a.weather.FetchWeather(ctx, cfg.Latitude, cfg.Longitude)
			if err != nil {
				appLog.Error("weather fetch failed", err)
				return
			}
			mu.Lock()
			result.Weather = w
			mu.Unlock()
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			aq, err := a.weather.FetchAirQuality(ctx, cfg.Latitude, cfg.Longitude)
			if err != nil {
				appLog.Error("air quality fetch failed", err)
				return
			}
			mu.Lock()
			result.AirQuality = aq
			mu.Unlock()
		}()
	} else {
		appLog.Warn("weather skipped: no coordinates configured")
	}

	if hasSchool {
		wg.Add(1)
		go func() {
			defer wg.Done()
			meals, err := a.neis.FetchMeals(ctx, cfg.NEISAPIKey, cfg.School.OfficeCode, cfg.School.SchoolCode,
				ymd(now), ymd(now.AddDate(0, 0, mealsHorizonDays)))
			if err != nil {
				appLog.Error("meals fetch failed", err)
				return
			}
			mu.Lock()
			result.Meals = meals
			mu.Unlock()
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			evts, err := a.neis.FetchSchoolEvents(ctx, cfg.NEISAPIKey, cfg.School.OfficeCode, cfg.School.SchoolCode,
				ymd(now), ymd(endOfMonthPlus2(now)))
			if err != nil {
				appLog.Error("school events fetch failed", err)
				return
			}
			mu.Lock()
			neisEvents = evts
			mu.Unlock()
		}()
	} else {
		appLog.Warn("NEIS skipped: api key or school codes missing")
	}

	if cfg.SpreadsheetURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tt, err := a.sheets.FetchTimetable(ctx, cfg.SpreadsheetURL)
			if err != nil {
				appLog.Error("timetable fetch failed", err)
				return
			}
			mu.Lock()
			result.Timetable = tt
			mu.Unlock()
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			evts, err := a.sheets.FetchEvents(ctx, cfg.SpreadsheetURL, now)
			if err != nil {
				appLog.Error("sheet events fetch failed", err)
				return
			}
			mu.Lock()
			sheetEvents = evts
			mu.Unlock()
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			sp, err := a.sheets.FetchStudyPlan(ctx, cfg.SpreadsheetURL, ymd(now))
			if err != nil {
				appLog.Error("study plan fetch failed", err)
				return
			}
			mu.Lock()
			result.StudyPlan = sp
			mu.Unlock()
		}()
	}

	if len(cfg.ICS) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			evts := a.icsCli.FetchEvents(ctx, cfg.ICS, now, a.loc)
			mu.Lock()
			icsEvents = evts
			mu.Unlock()
		}()
	}

	wg.Wait()

	// Official events win ties against locally-sourced ones.
	local := append(append([]model.ScheduleEvent(nil), sheetEvents...), icsEvents...)
	result.Events = schedule.Merge(neisEvents, local)

	if result.Meals == nil {
		result.Meals = []model.MealData{}
	}
	if result.Events == nil {
		result.Events = []model.ScheduleEvent{}
	}

	var periods []model.Period
	if result.Timetable != nil {
		periods = append(periods, result.Timetable.Periods...)
	}

	a.snapMu.Lock()
	a.snapshot = result
	a.periods = periods
	a.snapMu.Unlock()

	appLog.Info("dashboard refreshed",
		"took", time.Since(start).Round(time.Millisecond),
		"events", len(result.Events),
		"meals", len(result.Meals),
		"has_timetable", result.Timetable != nil,
		"has_study_plan", result.StudyPlan != nil,
	)
}

// Snapshot returns the current dashboard data.
func (a *App) Snapshot() model.DashboardData {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.snapshot
}

// Periods returns a copy of the current period list, safe to read while a
// refresh replaces the snapshot.
func (a *App) Periods() []model.Period {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return append([]model.Period(nil), a.periods...)
}

// Status computes the current period status.
func (a *App) Status() model.PeriodStatus {
	return schedule.Status(a.Periods(), time.Now().In(a.loc))
}

// Config returns a copy of the active configuration.
func (a *App) Config() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	c := *a.cfg
	return &c
}

// UpdateConfig persists and activates new settings, then refreshes in the
// background so the widget reflects them promptly. The refresh cron
// expression takes effect on next daemon start.
func (a *App) UpdateConfig(cfg *config.Config) error {
	cfg.Normalize()
	if err := config.Save(a.cfgPath, cfg); err != nil {
		return err
	}

	a.cfgMu.Lock()
	a.cfg = cfg
	a.cfgMu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		a.Refresh(ctx)
	}()
	return nil
}

// Location returns the display timezone.
func (a *App) Location() *time.Location {
	return a.loc
}

// SearchSchools proxies school search for the settings UI.
func (a *App) SearchSchools(ctx context.Context, name string) ([]model.SchoolInfo, error) {
	cfg := a.Config()
	return a.neis.SearchSchools(ctx, cfg.NEISAPIKey, name)
}

// Geocode proxies address lookup for the settings UI.
func (a *App) Geocode(ctx context.Context, address string) (*model.Coords, error) {
	return a.geocoder.Geocode(ctx, address)
}
