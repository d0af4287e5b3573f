// Package segment turns flat word-timing lists into display groupings:
// reading-view paragraphs, subtitle cues, and SRT exports.
package segment

import (
	"strings"
	"unicode"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

// maxParagraphWords caps paragraph length when no sentence boundary shows up.
const maxParagraphWords = 100

// Options bound the subtitle segment accumulation rule.
type Options struct {
	// MaxDuration is the target cue window in seconds.
	MaxDuration float64
	// MaxWords caps the number of words per cue.
	MaxWords int
}

// DefaultOptions match the player's 6-second, 8-word subtitle window.
func DefaultOptions() Options {
	return Options{MaxDuration: 6, MaxWords: 8}
}

// isCJK reports whether the text contains CJK unified ideographs.
func isCJK(text string) bool {
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}

// joinWords builds display text for a word group. CJK text is joined
// without separators and with internal spaces stripped.
func joinWords(words []entities.WordTiming) string {
	cjk := false
	for _, w := range words {
		if isCJK(w.Word) {
			cjk = true
			break
		}
	}

	parts := make([]string, len(words))
	for i, w := range words {
		if cjk {
			parts[i] = strings.ReplaceAll(w.Word, " ", "")
		} else {
			parts[i] = w.Word
		}
	}
	if cjk {
		return strings.Join(parts, "")
	}
	return strings.Join(parts, " ")
}

// endsSentence reports whether the word carries terminal punctuation.
func endsSentence(word string) bool {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// startsUppercase reports whether the word begins with an uppercase letter.
func startsUppercase(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// BuildParagraphs groups a time-ordered word list into paragraphs. A
// paragraph closes at 100 accumulated words, or when the current word ends
// a sentence and the next word starts a new one (uppercase heuristic), or
// at end of input. Every input word lands in exactly one paragraph.
// Unsorted input produces undefined grouping; it is not validated.
func BuildParagraphs(words []entities.WordTiming) []entities.Paragraph {
	if len(words) == 0 {
		return nil
	}

	var paragraphs []entities.Paragraph
	var current []entities.WordTiming

	flush := func() {
		if len(current) == 0 {
			return
		}
		paragraphs = append(paragraphs, entities.Paragraph{
			Text:      joinWords(current),
			Words:     current,
			StartTime: current[0].StartTime,
			EndTime:   current[len(current)-1].EndTime,
		})
		current = nil
	}

	for i, word := range words {
		current = append(current, word)

		isLast := i == len(words)-1
		sentenceBreak := endsSentence(word.Word) && (isLast || startsUppercase(words[i+1].Word))
		if len(current) >= maxParagraphWords || sentenceBreak {
			flush()
		}
	}
	flush()

	return paragraphs
}

// BuildSubtitleSegments slices a time-ordered word list into contiguous,
// non-overlapping subtitle cues. A cue closes when its covered duration
// reaches MaxDuration, its word count reaches MaxWords, the gap to the next
// word's start exceeds MaxDuration, or the input ends. The cues partition
// the input: every word belongs to exactly one cue.
func BuildSubtitleSegments(words []entities.WordTiming, opts Options) []entities.SubtitleSegment {
	if len(words) == 0 {
		return nil
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = DefaultOptions().MaxDuration
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = DefaultOptions().MaxWords
	}

	var segments []entities.SubtitleSegment
	var current []entities.WordTiming
	segmentStart := 0.0

	for i, word := range words {
		if len(current) == 0 {
			segmentStart = word.StartTime
		}
		current = append(current, word)

		isLast := i == len(words)-1
		closeSegment := word.EndTime-segmentStart >= opts.MaxDuration ||
			len(current) >= opts.MaxWords ||
			isLast ||
			(!isLast && words[i+1].StartTime-segmentStart > opts.MaxDuration)

		if closeSegment {
			segments = append(segments, entities.SubtitleSegment{
				Words:     current,
				StartTime: segmentStart,
				EndTime:   word.EndTime,
				Text:      joinWords(current),
			})
			current = nil
		}
	}

	return segments
}
