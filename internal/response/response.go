// Package response models submitted answer clips and prepares them for
// session assembly: predicate filtering and storage URL derivation.
package response

import "strings"

// TypeVideo is the answer type processed by the assembly pipeline.
const TypeVideo = "video"

// Word is one transcribed word with its timing inside the clip.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AnswerClip is the normalized representation of one submitted video answer.
// Values are immutable once produced by ingestion; derivation steps return
// copies.
type AnswerClip struct {
	AnswerID          string  `json:"answerId"`
	QuestionID        string  `json:"questionId"`
	QuestionTitle     string  `json:"questionTitle"`
	MediaURL          string  `json:"mediaUrl"`
	MediaFilename     string  `json:"mediaFilename"`
	StorageURL        string  `json:"storageUrl,omitempty"`
	StorageObjectPath string  `json:"storageObjectPath,omitempty"`
	AnswerType        string  `json:"answerType"`
	Transcript        string  `json:"transcript"`
	TranscribedWords  []Word  `json:"transcribedWords,omitempty"`
	Confidence        float64 `json:"confidence"`
}

// Filter returns the clips matching keep, preserving input order.
func Filter(clips []AnswerClip, keep func(AnswerClip) bool) []AnswerClip {
	if keep == nil {
		return nil
	}
	filtered := make([]AnswerClip, 0, len(clips))
	for _, clip := range clips {
		if keep(clip) {
			filtered = append(filtered, clip)
		}
	}
	return filtered
}

// ByType builds a predicate matching clips of the given answer type.
func ByType(answerType string) func(AnswerClip) bool {
	return func(clip AnswerClip) bool {
		return strings.EqualFold(clip.AnswerType, answerType)
	}
}

// URLMapping describes how a clip's stored filename maps to its storage
// location: URLPrefix yields the externally addressable URL, ObjectPrefix
// the bucket-relative object path.
type URLMapping struct {
	URLPrefix    string
	ObjectPrefix string
}

// MapWithStorageURL returns copies of the clips with their storage URL and
// object path derived from the mapping and each clip's stored filename.
func MapWithStorageURL(clips []AnswerClip, mapping URLMapping) []AnswerClip {
	mapped := make([]AnswerClip, len(clips))
	for i, clip := range clips {
		clip.StorageURL = mapping.URLPrefix + clip.MediaFilename
		clip.StorageObjectPath = mapping.ObjectPrefix + clip.MediaFilename
		mapped[i] = clip
	}
	return mapped
}

// VideoClipsWithURL filters to video answers and derives their storage
// locations. The boolean reports whether any video answers were present;
// when it is false the mapping step is skipped entirely, letting callers
// distinguish "nothing to process" from a failure.
func VideoClipsWithURL(clips []AnswerClip, mapping URLMapping) ([]AnswerClip, bool) {
	filtered := Filter(clips, ByType(TypeVideo))
	if len(filtered) == 0 {
		return nil, false
	}
	return MapWithStorageURL(filtered, mapping), true
}
