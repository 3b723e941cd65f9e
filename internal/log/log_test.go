package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatKVs(t *testing.T) {
	assert.Equal(t, " tab=행사 count=3", formatKVs("tab", "행사", "count", 3))
	assert.Empty(t, formatKVs())
	// An odd trailing value is dropped.
	assert.Equal(t, " a=1", formatKVs("a", 1, "dangling"))
	// Non-string keys are skipped.
	assert.Equal(t, " b=2", formatKVs(42, "x", "b", 2))
}

func TestSetLevel_RejectsUnknown(t *testing.T) {
	SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, minLevel)

	SetLevel(Level("TRACE"))
	assert.Equal(t, LevelDebug, minLevel)

	SetLevel(LevelInfo)
	assert.Equal(t, LevelInfo, minLevel)
}
