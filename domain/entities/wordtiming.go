package entities

// WordTiming is one transcribed word with its playback offsets in seconds.
// Word lists are produced by the transcription source and are ordered by
// StartTime; individual records are only ever replaced through the explicit
// edit operations on Transcript.
type WordTiming struct {
	Word      string  `json:"word" bson:"word"`
	StartTime float64 `json:"start_time" bson:"start_time"`
	EndTime   float64 `json:"end_time" bson:"end_time"`
}

// Paragraph groups consecutive word timings for reading view display.
type Paragraph struct {
	Text      string       `json:"text"`
	Words     []WordTiming `json:"words"`
	StartTime float64      `json:"start_time"`
	EndTime   float64      `json:"end_time"`
}

// SubtitleSegment is a bounded-duration group of consecutive words shown
// together as one subtitle cue. Segments partition the word list: every
// word belongs to exactly one segment.
type SubtitleSegment struct {
	Words     []WordTiming `json:"words"`
	StartTime float64      `json:"start_time"`
	EndTime   float64      `json:"end_time"`
	Text      string       `json:"text"`
}

// Contains reports whether t falls within the segment's time bounds.
func (s SubtitleSegment) Contains(t float64) bool {
	return t >= s.StartTime && t <= s.EndTime
}

// Contains reports whether t falls within the paragraph's time bounds.
func (p Paragraph) Contains(t float64) bool {
	return t >= p.StartTime && t <= p.EndTime
}

// TranslatedWord is one word of a pre-computed translation, aligned to the
// source transcript by time range.
type TranslatedWord struct {
	OriginalWord   string  `json:"original_word" bson:"original_word"`
	Word           string  `json:"word" bson:"word"`
	PunctuatedWord string  `json:"punctuated_word" bson:"punctuated_word"`
	Start          float64 `json:"start" bson:"start"`
	End            float64 `json:"end" bson:"end"`
}

// TranslatedTranscript is a full pre-computed translation of a transcript.
type TranslatedTranscript struct {
	Transcription string           `json:"transcription" bson:"transcription"`
	Words         []TranslatedWord `json:"words" bson:"words"`
}

// TranslationTable maps a language code to its pre-computed translation.
// Read-only once loaded from the backend.
type TranslationTable map[string]TranslatedTranscript
