package ingest

import (
	"errors"
	"testing"

	"loom/internal/services"
)

func validPayload() *Payload {
	return &Payload{
		InteractionID: "int-1",
		Contact: Contact{
			Name:        "Ada Quinn",
			Email:       "ada@example.com",
			Status:      "completed",
			PhoneNumber: "555-0101",
			Variables: Variables{
				ContactUserID: "user-1",
				SectionID:     "sec-1",
				SectionName:   "Intake",
				SeriesID:      "series-1",
				Subtitle:      "First visit",
				TenantID:      "clinic-1",
			},
			Answers: []Answer{
				{
					AnswerID:   "a1",
					MediaURL:   "http://provider/a1",
					QuestionID: "q1",
					Type:       "video",
					TranscriptionData: []Transcription{
						{Transcript: "hello there", Confidence: 0.92},
					},
				},
				{AnswerID: "a2", MediaURL: "http://provider/a2", QuestionID: "q2", Type: "text"},
				{AnswerID: "a3", MediaURL: "http://provider/a3", QuestionID: "q3", Type: "video"},
			},
		},
		Form: Form{Questions: []Question{
			{QuestionID: "q1", Title: "How are you feeling?"},
			{QuestionID: "q2", Title: "Consent"},
			{QuestionID: "q3", Label: "question MEDICAL HISTORY"},
			{QuestionID: "q4", Title: "Never answered"},
		}},
	}
}

func TestParsePayload(t *testing.T) {
	raw := []byte(`{"interaction_id":"int-1","contact":{"name":"Ada","variables":{"tenant_id":"clinic-1"}}}`)
	payload, err := ParsePayload(raw)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if payload.InteractionID != "int-1" || payload.Contact.Variables.TenantID != "clinic-1" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestParsePayloadMalformedIsValidationError(t *testing.T) {
	_, err := ParsePayload([]byte(`{not json`))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateAcceptsCompletePayload(t *testing.T) {
	if err := Validate(validPayload(), "completed"); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	payload := validPayload()
	payload.Contact.Email = ""
	payload.Contact.Variables.SeriesID = "  "

	err := Validate(payload, "completed")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateRejectsIncompleteStatus(t *testing.T) {
	payload := validPayload()
	payload.Contact.Status = "in_progress"
	if err := Validate(payload, "completed"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestQuestionTitlePreference(t *testing.T) {
	cases := []struct {
		name          string
		title         string
		label         string
		transcription string
		want          string
	}{
		{name: "authored title wins", title: "How are you?", label: "question ignored", want: "How are you?"},
		{name: "blank title falls to label", title: "   ", label: "question About Sleep", want: "About Sleep"},
		{name: "label strip removes first occurrence only", label: "question the question of pain", want: "the question of pain"},
		{name: "shouting label is title cased", label: "question MEDICAL HISTORY", want: "Medical History"},
		{name: "transcription truncated to five words", transcription: "tell me about your sleep habits lately", want: "tell me about your sleep"},
		{name: "short transcription kept whole", transcription: "any allergies", want: "any allergies"},
		{name: "nothing available", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := QuestionTitle(tc.title, tc.label, tc.transcription, "question ", 5)
			if got != tc.want {
				t.Fatalf("QuestionTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildClipsPairsQuestionsWithAnswers(t *testing.T) {
	clips := BuildClips(validPayload(), TitlePolicy{StripWord: "question ", MaxWords: 5})
	if len(clips) != 3 {
		t.Fatalf("clips = %d, want 3", len(clips))
	}

	first := clips[0]
	if first.AnswerID != "a1" || first.QuestionID != "q1" {
		t.Fatalf("first clip = %+v", first)
	}
	if first.MediaFilename != "a1.mp4" {
		t.Fatalf("media filename = %q", first.MediaFilename)
	}
	if first.QuestionTitle != "How are you feeling?" {
		t.Fatalf("question title = %q", first.QuestionTitle)
	}
	if first.Transcript != "hello there" || first.Confidence != 0.92 {
		t.Fatalf("transcription = %q / %v", first.Transcript, first.Confidence)
	}

	// Non-video answers still become clips; their type rides along so the
	// assembly filter can select video clips downstream.
	second := clips[1]
	if second.AnswerID != "a2" || second.AnswerType != "text" {
		t.Fatalf("second clip = %+v", second)
	}

	third := clips[2]
	if third.AnswerID != "a3" || third.AnswerType != "video" {
		t.Fatalf("third clip = %+v", third)
	}
	if third.QuestionTitle != "Medical History" {
		t.Fatalf("third title = %q", third.QuestionTitle)
	}
	if third.Transcript != "" {
		t.Fatalf("missing transcription should yield empty transcript, got %q", third.Transcript)
	}
}

func TestBuildClipsKeepsFormOrder(t *testing.T) {
	payload := validPayload()
	payload.Form.Questions = []Question{
		{QuestionID: "q3", Label: "question Third"},
		{QuestionID: "q1", Title: "First"},
	}
	clips := BuildClips(payload, TitlePolicy{StripWord: "question ", MaxWords: 5})
	if len(clips) != 2 || clips[0].AnswerID != "a3" || clips[1].AnswerID != "a1" {
		t.Fatalf("clips out of form order: %+v", clips)
	}
}

func TestSectionMetadataAndKey(t *testing.T) {
	payload := validPayload()
	meta := SectionMetadata(payload)
	if meta.SectionID != "sec-1" || meta.SectionName != "Intake" || meta.Subtitle != "First visit" {
		t.Fatalf("metadata = %+v", meta)
	}
	if meta.Patient.Name != "Ada Quinn" || meta.Patient.Phone != "555-0101" {
		t.Fatalf("patient = %+v", meta.Patient)
	}

	key := SessionKey(payload)
	if key.TenantID != "clinic-1" || key.SeriesID != "series-1" {
		t.Fatalf("key = %+v", key)
	}
}
