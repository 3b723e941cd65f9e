package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classdash", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "127.0.0.1:8188", cfg.Listen)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	assert.Equal(t, "*/30 * * * *", cfg.RefreshCron)
	assert.True(t, cfg.Alarm.Enabled)
	assert.Equal(t, "classic", cfg.Alarm.Sound)

	// The file now exists with owner-only permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.NEISAPIKey = "test-key"
	cfg.School = SchoolConfig{
		Name:       "서울초등학교",
		SchoolCode: "7654321",
		OfficeCode: "B10",
		Grade:      3,
		Class:      2,
	}
	cfg.Latitude = 37.5665
	cfg.Longitude = 126.978
	cfg.SpreadsheetURL = "https://docs.google.com/spreadsheets/d/abc1234567/edit"
	cfg.ICS = []ICSSource{{URL: "https://example.com/cal.ics", ID: "shared", Name: "학년 공유"}}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	cfg := &Config{
		Alarm:  AlarmConfig{Sound: "vuvuzela"},
		School: SchoolConfig{Grade: -1, Class: -2},
	}
	cfg.Normalize()

	assert.Equal(t, "127.0.0.1:8188", cfg.Listen)
	assert.Equal(t, "Asia/Seoul", cfg.Timezone)
	assert.Equal(t, "*/30 * * * *", cfg.RefreshCron)
	assert.Equal(t, "./cache", cfg.CacheDir)
	assert.Equal(t, "classic", cfg.Alarm.Sound)
	assert.Zero(t, cfg.School.Grade)
	assert.Zero(t, cfg.School.Class)
	assert.NotNil(t, cfg.ICS)
}

func TestSave_EmptyPath(t *testing.T) {
	assert.Error(t, Save("", DefaultConfig()))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
	_, err := Load("")
	assert.Error(t, err)
}
