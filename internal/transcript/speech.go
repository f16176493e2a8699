package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrWong99/reqsift/pkg/provider/stt"
)

// SpeechSpeaker is the speaker assigned to transcribed audio. Batch
// speech-to-text carries no diarization, so every utterance is attributed to
// one generic speaker.
const SpeechSpeaker = "Speaker"

// FromTranscription converts a speech-to-text result into the canonical
// message sequence. With segments present, each segment becomes one message
// timestamped with its start offset; without segments the whole text becomes
// a single untimestamped message. An empty transcript yields no messages.
func FromTranscription(t *stt.Transcript) []Message {
	if t == nil {
		return nil
	}

	if len(t.Segments) > 0 {
		msgs := make([]Message, 0, len(t.Segments))
		for _, seg := range t.Segments {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			msgs = append(msgs, Message{
				Speaker:   SpeechSpeaker,
				Text:      text,
				Timestamp: formatOffset(seg.Start),
			})
		}
		return msgs
	}

	text := strings.TrimSpace(t.Text)
	if text == "" {
		return nil
	}
	return []Message{{Speaker: SpeechSpeaker, Text: text}}
}

// formatOffset renders a recording offset as "MM:SS", growing to "H:MM:SS"
// past the first hour.
func formatOffset(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
