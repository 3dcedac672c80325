package engine

import (
	"net/url"
	"strings"
)

// WatchThreshold is the playback fraction at which a video counts as
// watched.
const WatchThreshold = 0.90

// FallbackVideoID is substituted when no playable identifier can be
// extracted from a lesson's video source.
const FallbackVideoID = "unavailable"

// WatchSession tracks one playback session of one lesson. Crossing the
// watch threshold fires exactly once per session; re-watching past the
// threshold does not re-fire.
type WatchSession struct {
	LessonID        uint
	PositionSeconds float64
	DurationSeconds float64
	crossed         bool
}

func NewWatchSession(lessonID uint) *WatchSession {
	return &WatchSession{LessonID: lessonID}
}

// Update records a playback position and reports whether this update
// crossed the watch threshold for the first time in this session.
func (w *WatchSession) Update(position, duration float64) bool {
	w.PositionSeconds = position
	if duration > 0 {
		w.DurationSeconds = duration
	}
	if w.crossed || w.DurationSeconds <= 0 {
		return false
	}
	if w.PositionSeconds/w.DurationSeconds >= WatchThreshold {
		w.crossed = true
		return true
	}
	return false
}

// Crossed reports whether the threshold was already crossed this session.
func (w *WatchSession) Crossed() bool {
	return w.crossed
}

// WatchedPercent is the integer playback percentage, capped at 100.
func (w *WatchSession) WatchedPercent() int {
	if w.DurationSeconds <= 0 {
		return 0
	}
	p := int(100 * w.PositionSeconds / w.DurationSeconds)
	if p > 100 {
		p = 100
	}
	return p
}

// ExtractVideoID pulls a playable identifier out of a lesson's video
// source. It understands the usual YouTube forms (watch URLs, youtu.be
// short links, embed paths) and treats anything without a URL scheme as a
// bare identifier. Failures fall back to FallbackVideoID; the caller logs.
func ExtractVideoID(source string) (string, bool) {
	source = strings.TrimSpace(source)
	if source == "" {
		return FallbackVideoID, false
	}

	if !strings.Contains(source, "://") && !strings.Contains(source, "/") {
		return source, true
	}

	u, err := url.Parse(source)
	if err != nil {
		return FallbackVideoID, false
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, true
		}
	case "youtube.com", "youtube-nocookie.com", "m.youtube.com":
		if id := u.Query().Get("v"); id != "" {
			return id, true
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/v/"} {
			if strings.HasPrefix(u.Path, prefix) {
				if id := strings.Trim(strings.TrimPrefix(u.Path, prefix), "/"); id != "" {
					return id, true
				}
			}
		}
	}
	return FallbackVideoID, false
}
