package aichat

import (
	"regexp"
	"strings"

	"github.com/foundersportal/portal/backend/go-services/internal/sse"
)

var meetingIntent = regexp.MustCompile(`(?i)\b(schedule|meeting|call|appointment|book)\b`)

const maxTopicLen = 120

// WantsMeeting reports whether the user is asking to set up a meeting.
func WantsMeeting(msg string) bool {
	return meetingIntent.MatchString(msg)
}

// schedulerChunk is appended to the reply so the widget shows its meeting form.
func schedulerChunk(msg string) sse.Chunk {
	topic := strings.Join(strings.Fields(msg), " ")
	if r := []rune(topic); len(r) > maxTopicLen {
		topic = string(r[:maxTopicLen])
	}
	return sse.Chunk{ShowScheduler: true, MeetingDetails: map[string]any{"topic": topic}}
}
