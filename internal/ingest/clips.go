package ingest

import (
	"loom/internal/response"
	"loom/internal/session"
)

// TitlePolicy controls question-title resolution.
type TitlePolicy struct {
	StripWord string
	MaxWords  int
}

// MediaFilename derives the stored object name for an answer.
func MediaFilename(answerID string) string {
	return answerID + ".mp4"
}

// BuildClips pairs form questions with their answers, in form order, and
// produces one typed clip per pair. The clip carries the answer's type
// untouched; selecting video clips is the assembler's concern. Questions
// without a matching answer are skipped; answers without a question
// definition are likewise dropped.
func BuildClips(payload *Payload, policy TitlePolicy) []response.AnswerClip {
	answersByQuestion := make(map[string]Answer, len(payload.Contact.Answers))
	for _, answer := range payload.Contact.Answers {
		answersByQuestion[answer.QuestionID] = answer
	}

	var clips []response.AnswerClip
	for _, question := range payload.Form.Questions {
		answer, ok := answersByQuestion[question.QuestionID]
		if !ok {
			continue
		}

		transcription := Transcription{}
		if len(answer.TranscriptionData) > 0 {
			transcription = answer.TranscriptionData[0]
		}

		clips = append(clips, response.AnswerClip{
			AnswerID:         answer.AnswerID,
			QuestionID:       question.QuestionID,
			QuestionTitle:    QuestionTitle(question.Title, question.Label, question.Transcription, policy.StripWord, policy.MaxWords),
			MediaURL:         answer.MediaURL,
			MediaFilename:    MediaFilename(answer.AnswerID),
			AnswerType:       answer.Type,
			Transcript:       transcription.Transcript,
			TranscribedWords: transcription.Words,
			Confidence:       transcription.Confidence,
		})
	}
	return clips
}

// SectionMetadata extracts the assembler's section descriptor from a
// payload.
func SectionMetadata(payload *Payload) session.SectionMetadata {
	vars := payload.Contact.Variables
	return session.SectionMetadata{
		SectionID:   vars.SectionID,
		SectionName: vars.SectionName,
		Subtitle:    vars.Subtitle,
		Patient: session.Patient{
			Name:  payload.Contact.Name,
			Email: payload.Contact.Email,
			Phone: payload.Contact.PhoneNumber,
		},
	}
}

// SessionKey extracts the tenant/series identity the session is stored
// under.
func SessionKey(payload *Payload) session.Key {
	vars := payload.Contact.Variables
	return session.Key{TenantID: vars.TenantID, SeriesID: vars.SeriesID}
}
