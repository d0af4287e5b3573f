// Package playback maps an audio clock onto word timings so a reader view
// can highlight the word being spoken and keep it on screen.
package playback

import (
	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

// Position identifies the active word and paragraph at a point in time.
// An index of -1 means the clock is in a gap with nothing active.
type Position struct {
	WordIndex      int
	ParagraphIndex int
}

// Locate finds the active word and paragraph for the given playback time.
func Locate(t float64, words []entities.WordTiming, paragraphs []entities.Paragraph) Position {
	pos := Position{WordIndex: -1, ParagraphIndex: -1}
	for i, w := range words {
		if t >= w.StartTime && t <= w.EndTime {
			pos.WordIndex = i
			break
		}
	}
	for i, p := range paragraphs {
		if t >= p.StartTime && t <= p.EndTime {
			pos.ParagraphIndex = i
			break
		}
	}
	return pos
}

// Synchronizer tracks the active word across clock updates and invokes a
// follow callback when it changes. The callback drives scroll-into-view, so
// it must fire only on word transitions, never on every tick; otherwise it
// would fight the user's own scrolling.
type Synchronizer struct {
	follow        bool
	lastWordIndex int
	onWordChange  func(Position)
}

// NewSynchronizer creates a synchronizer with follow mode enabled.
// onWordChange may be nil.
func NewSynchronizer(onWordChange func(Position)) *Synchronizer {
	return &Synchronizer{
		follow:        true,
		lastWordIndex: -1,
		onWordChange:  onWordChange,
	}
}

// SetFollow toggles follow mode. Turning it off suppresses the callback but
// position tracking continues, so re-enabling picks up from the current word.
func (s *Synchronizer) SetFollow(enabled bool) {
	s.follow = enabled
}

// Following reports whether follow mode is on.
func (s *Synchronizer) Following() bool {
	return s.follow
}

// Update advances the synchronizer to the given playback time and returns
// the active position. The follow callback fires only when the active word
// index differs from the previous update and follow mode is on.
func (s *Synchronizer) Update(t float64, words []entities.WordTiming, paragraphs []entities.Paragraph) Position {
	pos := Locate(t, words, paragraphs)

	changed := pos.WordIndex != s.lastWordIndex
	s.lastWordIndex = pos.WordIndex

	if changed && s.follow && pos.WordIndex >= 0 && s.onWordChange != nil {
		s.onWordChange(pos)
	}
	return pos
}

// CurrentSegment returns the subtitle cue covering the given time, or nil
// when the clock is between cues.
func CurrentSegment(t float64, segments []entities.SubtitleSegment) *entities.SubtitleSegment {
	for i := range segments {
		if t >= segments[i].StartTime && t <= segments[i].EndTime {
			return &segments[i]
		}
	}
	return nil
}

// HighlightedWord is a word timing annotated with its state relative to the
// playback clock. IsActive and IsPast are mutually exclusive; a word that is
// neither is upcoming.
type HighlightedWord struct {
	entities.WordTiming
	IsActive bool
	IsPast   bool
}

// HighlightWords annotates every word of a cue with its highlight state at
// the given time.
func HighlightWords(segment *entities.SubtitleSegment, t float64) []HighlightedWord {
	if segment == nil {
		return nil
	}
	out := make([]HighlightedWord, len(segment.Words))
	for i, w := range segment.Words {
		out[i] = HighlightedWord{
			WordTiming: w,
			IsActive:   t >= w.StartTime && t <= w.EndTime,
			IsPast:     t > w.EndTime,
		}
	}
	return out
}
