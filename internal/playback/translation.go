package playback

import (
	"strings"

	"github.com/Aadiprofessional/matrixai-stream/domain/entities"
)

// isCJKText reports whether the text contains CJK unified ideographs.
func isCJKText(text string) bool {
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fff {
			return true
		}
	}
	return false
}

// joinTranslated concatenates translated words, preferring the punctuated
// form, with no separator when the translation is in a CJK script.
func joinTranslated(words []entities.TranslatedWord) string {
	if len(words) == 0 {
		return ""
	}

	parts := make([]string, len(words))
	cjk := false
	for i, w := range words {
		display := w.PunctuatedWord
		if display == "" {
			display = w.Word
		}
		parts[i] = display
		if isCJKText(display) {
			cjk = true
		}
	}
	if cjk {
		return strings.Join(parts, "")
	}
	return strings.Join(parts, " ")
}

// TranslateParagraph returns the translated text aligned to a paragraph's
// time span: every translated word fully contained in [start, end]. An
// unknown language code yields the empty string.
func TranslateParagraph(table entities.TranslationTable, language string, p entities.Paragraph) string {
	translation, ok := table[language]
	if !ok {
		return ""
	}

	var matched []entities.TranslatedWord
	for _, w := range translation.Words {
		if w.Start >= p.StartTime && w.End <= p.EndTime {
			matched = append(matched, w)
		}
	}
	return joinTranslated(matched)
}

// TranslateSegment returns the translated text for a subtitle cue. Cue
// alignment keys on word start only so words straddling the cue's end still
// display with the cue they began in.
func TranslateSegment(table entities.TranslationTable, language string, seg entities.SubtitleSegment) string {
	translation, ok := table[language]
	if !ok {
		return ""
	}

	var matched []entities.TranslatedWord
	for _, w := range translation.Words {
		if w.Start >= seg.StartTime && w.Start < seg.EndTime {
			matched = append(matched, w)
		}
	}
	return joinTranslated(matched)
}
