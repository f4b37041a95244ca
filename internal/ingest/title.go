package ingest

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English, cases.NoLower)

// QuestionTitle resolves the display title for a question, in preference
// order: the authored title, the label with the given filler word removed,
// or the first maxWords words of the question's own transcription. Returns
// an empty string when none apply.
func QuestionTitle(title, label, transcription, stripWord string, maxWords int) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	if label != "" {
		cleaned := strings.TrimSpace(strings.Replace(label, stripWord, "", 1))
		return normalizeCase(cleaned)
	}
	if transcription != "" {
		words := strings.Split(transcription, " ")
		if maxWords > 0 && len(words) >= maxWords {
			words = words[:maxWords]
		}
		return strings.Join(words, " ")
	}
	return ""
}

// normalizeCase rewrites shouting labels ("MEDICAL HISTORY") into title case.
// Mixed-case labels pass through untouched.
func normalizeCase(value string) string {
	if value == "" || value != strings.ToUpper(value) {
		return value
	}
	return titleCaser.String(strings.ToLower(value))
}
