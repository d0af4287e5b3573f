package entities

import (
	"errors"
	"testing"
)

func testTranscript() *Transcript {
	return &Transcript{
		AudioID: "audio-1",
		Text:    "The cat sat.",
		Words: []WordRecord{
			{Word: "The", PunctuatedWord: "The", Start: 0, End: 0.5},
			{Word: "cat", PunctuatedWord: "cat", Start: 0.5, End: 1.0},
			{Word: "sat", PunctuatedWord: "sat.", Start: 1.0, End: 1.6},
		},
	}
}

func TestTranscript_EditWordPreservesTimings(t *testing.T) {
	tr := testTranscript()
	before := tr.WordTimings()

	if err := tr.EditWord(1, "dog"); err != nil {
		t.Fatalf("EditWord: %v", err)
	}

	after := tr.WordTimings()
	if after[1].Word != "dog" {
		t.Errorf("edited word = %q, want 'dog'", after[1].Word)
	}
	for i := range before {
		if after[i].StartTime != before[i].StartTime || after[i].EndTime != before[i].EndTime {
			t.Errorf("timing changed at index %d: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestTranscript_EditWordRejectsMultipleTokens(t *testing.T) {
	tr := testTranscript()
	err := tr.EditWord(1, "two words")
	if !errors.Is(err, ErrWordCountMismatch) {
		t.Fatalf("err = %v, want ErrWordCountMismatch", err)
	}
	// No state mutated on rejection.
	if tr.Words[1].Word != "cat" {
		t.Errorf("word mutated after rejected edit: %q", tr.Words[1].Word)
	}
}

func TestTranscript_EditWordRejectsEmptyAndOutOfRange(t *testing.T) {
	tr := testTranscript()
	if err := tr.EditWord(1, "   "); !errors.Is(err, ErrEmptyReplacement) {
		t.Errorf("empty replacement err = %v, want ErrEmptyReplacement", err)
	}
	if err := tr.EditWord(5, "x"); !errors.Is(err, ErrWordIndexOutOfRange) {
		t.Errorf("out of range err = %v, want ErrWordIndexOutOfRange", err)
	}
}

func TestTranscript_EditRangeEnforcesTokenParity(t *testing.T) {
	tr := testTranscript()

	if err := tr.EditRange(0, 2, "A dog"); err != nil {
		t.Fatalf("EditRange: %v", err)
	}
	if tr.Words[0].Word != "A" || tr.Words[1].Word != "dog" {
		t.Errorf("range edit result = %q %q", tr.Words[0].Word, tr.Words[1].Word)
	}

	err := tr.EditRange(0, 2, "only one token here extra")
	if !errors.Is(err, ErrWordCountMismatch) {
		t.Errorf("err = %v, want ErrWordCountMismatch", err)
	}
}

func TestTranscript_ValidateOrdering(t *testing.T) {
	tr := testTranscript()
	if err := tr.Validate(); err != nil {
		t.Fatalf("Validate on ordered transcript: %v", err)
	}

	tr.Words[2].Start = 0.1
	if err := tr.Validate(); err == nil {
		t.Error("expected validation error for out-of-order words")
	}
}

func TestWordRecord_TimingPrefersPunctuatedWord(t *testing.T) {
	w := WordRecord{Word: "sat", PunctuatedWord: "sat.", Start: 1, End: 1.6}
	if got := w.Timing().Word; got != "sat." {
		t.Errorf("Timing().Word = %q, want 'sat.'", got)
	}

	w.PunctuatedWord = ""
	if got := w.Timing().Word; got != "sat" {
		t.Errorf("Timing().Word = %q, want 'sat'", got)
	}
}
