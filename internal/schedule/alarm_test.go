package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classdash/internal/model"
)

// recordPlayer captures playback calls instead of making noise.
type recordPlayer struct {
	presets []string
	customs []string
}

func (p *recordPlayer) PlayPreset(name string)    { p.presets = append(p.presets, name) }
func (p *recordPlayer) PlayCustom(dataURL string) { p.customs = append(p.customs, dataURL) }

func enabledSettings() AlarmSettings {
	return AlarmSettings{Enabled: true, Sound: "classic"}
}

func alarmPeriods() []model.Period {
	return []model.Period{{Period: 1, Start: "09:00", End: "09:40"}}
}

func TestAlarm_FiresEachPhaseOnce(t *testing.T) {
	player := &recordPlayer{}
	a := NewAlarm(player)

	// Tick once per second across the warning and start minutes, the way
	// the daemon's tick loop does.
	var fired []model.AlarmEvent
	from := time.Date(2026, 3, 2, 8, 58, 58, 0, time.UTC)
	for i := 0; i < 130; i++ {
		now := from.Add(time.Duration(i) * time.Second)
		if ev := a.Check(alarmPeriods(), now, enabledSettings()); ev != nil {
			fired = append(fired, *ev)
		}
	}

	require.Len(t, fired, 2)
	assert.Equal(t, model.AlarmEvent{Period: 1, Phase: model.PhaseWarning}, fired[0])
	assert.Equal(t, model.AlarmEvent{Period: 1, Phase: model.PhaseStart}, fired[1])
	assert.Equal(t, []string{"classic", "classic"}, player.presets)
}

func TestAlarm_EndPhase(t *testing.T) {
	a := NewAlarm(&recordPlayer{})
	now := time.Date(2026, 3, 2, 9, 40, 0, 0, time.UTC)

	ev := a.Check(alarmPeriods(), now, enabledSettings())
	require.NotNil(t, ev)
	assert.Equal(t, model.PhaseEnd, ev.Phase)

	// Same trigger minute again, one second later: already fired.
	assert.Nil(t, a.Check(alarmPeriods(), now.Add(time.Second), enabledSettings()))
}

func TestAlarm_SecondGuard(t *testing.T) {
	a := NewAlarm(&recordPlayer{})
	late := time.Date(2026, 3, 2, 9, 0, 2, 0, time.UTC)
	assert.Nil(t, a.Check(alarmPeriods(), late, enabledSettings()))

	// The guard skips evaluation without marking anything as fired.
	onTime := time.Date(2026, 3, 2, 9, 0, 1, 0, time.UTC)
	assert.NotNil(t, a.Check(alarmPeriods(), onTime, enabledSettings()))
}

func TestAlarm_Disabled(t *testing.T) {
	player := &recordPlayer{}
	a := NewAlarm(player)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	assert.Nil(t, a.Check(alarmPeriods(), now, AlarmSettings{Enabled: false}))
	assert.Empty(t, player.presets)

	// Disabling does not pre-mark; enabling within the trigger minute fires.
	assert.NotNil(t, a.Check(alarmPeriods(), now.Add(time.Second), enabledSettings()))
}

func TestAlarm_MidnightReset(t *testing.T) {
	a := NewAlarm(&recordPlayer{})

	day1 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NotNil(t, a.Check(alarmPeriods(), day1, enabledSettings()))
	assert.Nil(t, a.Check(alarmPeriods(), day1.Add(time.Second), enabledSettings()))

	day2 := day1.AddDate(0, 0, 1)
	assert.NotNil(t, a.Check(alarmPeriods(), day2, enabledSettings()))
}

func TestAlarm_SoundSelection(t *testing.T) {
	player := &recordPlayer{}
	a := NewAlarm(player)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	ev := a.Check(alarmPeriods(), now, AlarmSettings{
		Enabled:   true,
		Sound:     SoundCustom,
		CustomURL: "data:audio/mp3;base64,AAAA",
	})
	require.NotNil(t, ev)
	assert.Empty(t, player.presets)
	assert.Equal(t, []string{"data:audio/mp3;base64,AAAA"}, player.customs)

	// Unknown preset name falls back to the default tone.
	end := time.Date(2026, 3, 2, 9, 40, 0, 0, time.UTC)
	require.NotNil(t, a.Check(alarmPeriods(), end, AlarmSettings{Enabled: true, Sound: "vuvuzela"}))
	assert.Equal(t, []string{DefaultSound}, player.presets)
}

func TestAlarm_CustomSoundWithoutPayloadUsesPreset(t *testing.T) {
	player := &recordPlayer{}
	a := NewAlarm(player)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	require.NotNil(t, a.Check(alarmPeriods(), now, AlarmSettings{Enabled: true, Sound: SoundCustom}))
	assert.Empty(t, player.customs)
	assert.Equal(t, []string{DefaultSound}, player.presets)
}

func TestMinuteBefore(t *testing.T) {
	assert.Equal(t, "08:59", minuteBefore("09:00"))
	assert.Equal(t, "13:09", minuteBefore("13:10"))
	assert.Empty(t, minuteBefore("00:00"))
}
