package model

// Period is one scheduled class slot. Start/End are zero-padded "HH:MM"
// wall-clock strings; ordering follows the source rows and is never
// re-sorted.
type Period struct {
	Period int    `json:"period"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// TimetableData is the parsed class timetable. Subjects is indexed
// [period-row][day-column] and every row has exactly len(Headers) cells.
type TimetableData struct {
	Headers  []string   `json:"headers"`
	Periods  []Period   `json:"periods"`
	Subjects [][]string `json:"subjects"`
}

// StudyPlanBlock is one week's worth of the repeating title/header/data
// spreadsheet structure. Rows hold the period label in column 0 and per-day
// cell text after it; multi-line cells are newline-joined.
type StudyPlanBlock struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// StudyPlanResult bundles all parsed blocks with the index of the block
// whose date range contains today (or the last block when none matches).
type StudyPlanResult struct {
	Blocks       []StudyPlanBlock `json:"blocks"`
	CurrentIndex int              `json:"currentIndex"`
}

// ScheduleEvent is a single dated school event. Date is "YYYYMMDD".
// The dedup identity of an event is Date + "-" + Name.
type ScheduleEvent struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// Key returns the dedup identity used by the event merger.
func (e ScheduleEvent) Key() string {
	return e.Date + "-" + e.Name
}

// MealData is one day's school meal menu from the NEIS meal service.
type MealData struct {
	Date     string   `json:"date"`
	Menu     []string `json:"menu"`
	Calories string   `json:"calories,omitempty"`
}

// SchoolInfo is a single school search result.
type SchoolInfo struct {
	SchoolCode string `json:"schoolCode"`
	OfficeCode string `json:"officeCode"`
	SchoolName string `json:"schoolName"`
	Address    string `json:"address,omitempty"`
}

// WeatherData is the current + daily forecast summary.
type WeatherData struct {
	Temperature              float64 `json:"temperature"`
	WeatherCode              int     `json:"weatherCode"`
	DailyMax                 float64 `json:"dailyMax"`
	DailyMin                 float64 `json:"dailyMin"`
	PrecipitationProbability float64 `json:"precipitationProbability"`
}

// AirQualityData holds current particulate readings.
type AirQualityData struct {
	PM10 float64 `json:"pm10"`
	PM25 float64 `json:"pm25"`
}

// Coords is a geocoded coordinate pair.
type Coords struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DashboardData is the full refreshed snapshot served to the widget UI.
// Any field may be nil/empty when its source was unavailable or
// unconfigured; a failed source never blocks the others.
type DashboardData struct {
	Weather    *WeatherData     `json:"weather"`
	AirQuality *AirQualityData  `json:"airQuality"`
	Meals      []MealData       `json:"meals"`
	Events     []ScheduleEvent  `json:"events"`
	Timetable  *TimetableData   `json:"timetable"`
	StudyPlan  *StudyPlanResult `json:"studyPlan"`
}

// StatusType enumerates where "now" sits in the school day.
type StatusType string

const (
	StatusBeforeSchool StatusType = "before-school"
	StatusPrep         StatusType = "prep"
	StatusInClass      StatusType = "in-class"
	StatusBreak        StatusType = "break"
	StatusLunch        StatusType = "lunch"
	StatusAfterSchool  StatusType = "after-school"
)

// PeriodStatus is the derived school-day state, recomputed every tick.
// CurrentPeriod/NextPeriod are period numbers, 0 when not applicable.
// MinutesLeft is -1 when not applicable.
type PeriodStatus struct {
	Type          StatusType `json:"type"`
	CurrentPeriod int        `json:"currentPeriod,omitempty"`
	NextPeriod    int        `json:"nextPeriod,omitempty"`
	Message       string     `json:"message"`
	MinutesLeft   int        `json:"minutesLeft"`
}

// AlarmPhase is one of the three trigger instants per period.
type AlarmPhase string

const (
	PhaseWarning AlarmPhase = "warning" // 1 minute before start
	PhaseStart   AlarmPhase = "start"
	PhaseEnd     AlarmPhase = "end"
)

// AlarmEvent is emitted at most once per (day, period, phase) for the UI
// banner; playback happens as a side effect when it is emitted.
type AlarmEvent struct {
	Period int        `json:"period"`
	Phase  AlarmPhase `json:"type"`
}
