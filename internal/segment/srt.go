package segment

import (
	"fmt"
	"strings"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

// srtWindowSeconds is the fixed cue window for SRT export, counted from 0:00.
const srtWindowSeconds = 6.0

// formatSRTTime renders seconds as the SRT timestamp HH:MM:SS,mmm.
func formatSRTTime(seconds float64) string {
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	secs := int(seconds) % 60
	millis := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// cleanCJKForSRT strips spaces and terminal full stops from CJK cue text.
func cleanCJKForSRT(text string) string {
	if !isCJK(text) {
		return text
	}
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, "。", "")
	text = strings.ReplaceAll(text, ".", "")
	return text
}

// ToSRT renders word records as SRT subtitles in fixed 6-second windows
// starting at 0:00. Windows with no words are skipped and do not consume a
// cue index. The punctuated form is preferred for display.
func ToSRT(words []entities.WordRecord) string {
	if len(words) == 0 {
		return ""
	}

	totalDuration := words[len(words)-1].End

	var b strings.Builder
	index := 1
	for windowStart := 0.0; windowStart < totalDuration; windowStart += srtWindowSeconds {
		windowEnd := windowStart + srtWindowSeconds

		var parts []string
		for _, w := range words {
			if w.Start >= windowStart && w.Start < windowEnd {
				display := w.PunctuatedWord
				if display == "" {
					display = w.Word
				}
				parts = append(parts, display)
			}
		}
		if len(parts) == 0 {
			continue
		}

		text := cleanCJKForSRT(strings.Join(parts, " "))
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", index, formatSRTTime(windowStart), formatSRTTime(windowEnd), text)
		index++
	}

	return strings.TrimSpace(b.String())
}
