package app

import (
	appLog "classdash/internal/log"
)

// LogPlayer is the default alarm playback collaborator. Actual audio output
// belongs to the widget shell; the daemon announces firings over the API
// and logs them here.
type LogPlayer struct{}

func (LogPlayer) PlayPreset(name string) {
	appLog.Info("alarm tone", "sound", name)
}

func (LogPlayer) PlayCustom(dataURL string) {
	// Data URLs embed whole audio files; never log the payload.
	appLog.Info("alarm tone", "sound", "custom", "bytes", len(dataURL))
}
