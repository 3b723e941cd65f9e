package schedule

import (
	"fmt"
	"sync"
	"time"

	"classdash/internal/model"
)

// Player is the playback collaborator for alarm firings. The daemon plugs
// in whatever can actually make noise; tests plug in a recorder.
type Player interface {
	// PlayPreset plays a named built-in tone sequence.
	PlayPreset(name string)
	// PlayCustom plays a user-provided audio blob (data URL).
	PlayCustom(dataURL string)
}

// presetSounds are the selectable built-in tone sequences. An unknown
// choice falls back to DefaultSound.
var presetSounds = map[string]bool{
	"classic": true,
	"chime":   true,
	"soft":    true,
	"digital": true,
	"melody":  true,
}

// DefaultSound is used when the configured alarm sound is not recognized.
const DefaultSound = "classic"

// SoundCustom selects the user-provided audio blob instead of a preset.
const SoundCustom = "custom"

// AlarmSettings is the slice of configuration the scheduler needs per tick.
type AlarmSettings struct {
	Enabled   bool
	Sound     string // preset name or "custom"
	CustomURL string // data URL, used only when Sound == "custom"
}

// Alarm fires per-period class alarms with at-most-once semantics.
//
// Firing state is a set of "{date}-{period}-{phase}" keys that accumulates
// through the calendar day and is cleared when the wall clock crosses local
// midnight. The set is checked and marked before playback, so repeated or
// concurrent evaluation of the same trigger minute cannot double-fire.
type Alarm struct {
	mu     sync.Mutex
	player Player
	day    string // YYYYMMDD the fired set belongs to
	fired  map[string]bool
}

// NewAlarm creates an alarm scheduler with an empty firing record.
func NewAlarm(player Player) *Alarm {
	return &Alarm{
		player: player,
		fired:  make(map[string]bool),
	}
}

// Check evaluates one 1-second tick against the period list and fires at
// most one alarm. It returns the fired event, or nil.
//
// Triggers per period: one minute before start (warning), at start, and at
// end. Evaluation only happens in the first two seconds of a minute so a
// jittery tick source cannot walk past a trigger minute twice. A tick that
// never lands inside a trigger minute (process suspended) simply misses
// that alarm; there is no catch-up.
func (a *Alarm) Check(periods []model.Period, now time.Time, settings AlarmSettings) *model.AlarmEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.resetIfNewDay(now)

	if !settings.Enabled {
		return nil
	}
	if now.Second() >= 2 {
		return nil
	}

	hhmm := now.Format("15:04")

	for _, p := range periods {
		var phase model.AlarmPhase
		switch hhmm {
		case minuteBefore(p.Start):
			phase = model.PhaseWarning
		case p.Start:
			phase = model.PhaseStart
		case p.End:
			phase = model.PhaseEnd
		default:
			continue
		}

		key := fmt.Sprintf("%s-%d-%s", a.day, p.Period, phase)
		if a.fired[key] {
			continue
		}
		a.fired[key] = true

		a.play(settings)
		return &model.AlarmEvent{Period: p.Period, Phase: phase}
	}

	return nil
}

// resetIfNewDay clears the firing record when the calendar day changes.
// Callers must hold a.mu.
func (a *Alarm) resetIfNewDay(now time.Time) {
	day := now.Format("20060102")
	if day == a.day {
		return
	}
	a.day = day
	a.fired = make(map[string]bool)
}

// play routes a firing to exactly one playback path: the custom blob when
// configured, otherwise a preset tone.
func (a *Alarm) play(settings AlarmSettings) {
	if a.player == nil {
		return
	}
	if settings.Sound == SoundCustom && settings.CustomURL != "" {
		a.player.PlayCustom(settings.CustomURL)
		return
	}
	sound := settings.Sound
	if !presetSounds[sound] {
		sound = DefaultSound
	}
	a.player.PlayPreset(sound)
}

// minuteBefore returns the HH:MM one minute before t, or "" for midnight.
func minuteBefore(t string) string {
	min := toMinutes(t) - 1
	if min < 0 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}
