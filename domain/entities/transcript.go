package entities

import (
	"errors"
	"fmt"
	"strings"
)

// WordRecord is the raw word entry returned by the transcription backend.
// PunctuatedWord carries the display form; Word is the bare token.
type WordRecord struct {
	Word           string  `json:"word" bson:"word"`
	PunctuatedWord string  `json:"punctuated_word" bson:"punctuated_word"`
	Start          float64 `json:"start" bson:"start"`
	End            float64 `json:"end" bson:"end"`
	Confidence     float64 `json:"confidence" bson:"confidence"`
}

// Timing converts the record to its playback representation.
func (w WordRecord) Timing() WordTiming {
	word := w.PunctuatedWord
	if word == "" {
		word = w.Word
	}
	return WordTiming{Word: word, StartTime: w.Start, EndTime: w.End}
}

// Transcript is the full transcription of one audio file, together with any
// pre-computed translations and the optional mind-map document.
type Transcript struct {
	AudioID      string           `json:"audio_id" bson:"audio_id"`
	Text         string           `json:"transcription" bson:"transcription"`
	Words        []WordRecord     `json:"words_data" bson:"words_data"`
	Language     string           `json:"language" bson:"language"`
	Duration     float64          `json:"duration" bson:"duration"`
	AudioURL     string           `json:"audio_url" bson:"audio_url"`
	VideoURL     string           `json:"video_file,omitempty" bson:"video_file,omitempty"`
	Translations TranslationTable `json:"translated_data,omitempty" bson:"translated_data,omitempty"`
	MindMapXML   string           `json:"xml_data,omitempty" bson:"xml_data,omitempty"`
}

// WordTimings converts the raw word records to playback timings.
func (t *Transcript) WordTimings() []WordTiming {
	if len(t.Words) == 0 {
		return nil
	}
	timings := make([]WordTiming, len(t.Words))
	for i, w := range t.Words {
		timings[i] = w.Timing()
	}
	return timings
}

// Edit errors returned before any state is mutated.
var (
	ErrWordIndexOutOfRange = errors.New("word index out of range")
	ErrEmptyReplacement    = errors.New("replacement text is empty")
	ErrWordCountMismatch   = errors.New("replacement word count does not match")
)

// EditWord replaces the word at index i. The replacement must be exactly one
// whitespace-delimited token so the timing table keeps its shape; start and
// end offsets are never touched.
func (t *Transcript) EditWord(i int, replacement string) error {
	if i < 0 || i >= len(t.Words) {
		return fmt.Errorf("%w: %d of %d", ErrWordIndexOutOfRange, i, len(t.Words))
	}
	tokens := strings.Fields(replacement)
	if len(tokens) == 0 {
		return ErrEmptyReplacement
	}
	if len(tokens) != 1 {
		return fmt.Errorf("%w: got %d tokens, want 1", ErrWordCountMismatch, len(tokens))
	}
	t.Words[i].Word = tokens[0]
	t.Words[i].PunctuatedWord = tokens[0]
	return nil
}

// EditRange replaces the words in [from, to) with the tokens of text. The
// token count must equal the span length: edits preserve the word count so
// re-derived paragraphs and segments keep every timing unchanged.
func (t *Transcript) EditRange(from, to int, text string) error {
	if from < 0 || to > len(t.Words) || from >= to {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrWordIndexOutOfRange, from, to, len(t.Words))
	}
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return ErrEmptyReplacement
	}
	if len(tokens) != to-from {
		return fmt.Errorf("%w: got %d tokens, want %d", ErrWordCountMismatch, len(tokens), to-from)
	}
	for i, tok := range tokens {
		t.Words[from+i].Word = tok
		t.Words[from+i].PunctuatedWord = tok
	}
	return nil
}

// Validate validates the transcript data.
func (t *Transcript) Validate() error {
	if t.AudioID == "" {
		return errors.New("audio_id is required")
	}
	for i := 1; i < len(t.Words); i++ {
		if t.Words[i].Start < t.Words[i-1].Start {
			return fmt.Errorf("words_data out of order at index %d", i)
		}
	}
	return nil
}
