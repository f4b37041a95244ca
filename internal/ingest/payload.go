package ingest

import (
	"encoding/json"

	"loom/internal/response"
	"loom/internal/services"
)

// Payload is the webhook body delivered when a respondent completes a
// section.
type Payload struct {
	InteractionID string  `json:"interaction_id"`
	Contact       Contact `json:"contact"`
	Form          Form    `json:"form"`
}

// Contact carries the respondent's details and the per-delivery variables.
type Contact struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Status      string    `json:"status"`
	PhoneNumber string    `json:"phone_number"`
	Variables   Variables `json:"variables"`
	Answers     []Answer  `json:"answers"`
}

// Variables identify the session and section the delivery belongs to.
type Variables struct {
	ContactUserID string `json:"contact_user_id"`
	SectionID     string `json:"section_id"`
	SectionName   string `json:"section_name"`
	SeriesID      string `json:"series_id"`
	SectionStatus string `json:"section_status"`
	NextSectionID string `json:"next_section_id"`
	Subtitle      string `json:"subtitle"`
	TenantID      string `json:"tenant_id"`
}

// Answer is one raw answer in the delivery.
type Answer struct {
	AnswerID          string          `json:"answer_id"`
	MediaURL          string          `json:"media_url"`
	QuestionID        string          `json:"question_id"`
	Type              string          `json:"type"`
	TranscriptionData []Transcription `json:"transcription_data"`
}

// Transcription is one transcription result attached to an answer. Only the
// first entry is used.
type Transcription struct {
	Transcript string          `json:"transcript"`
	Confidence float64         `json:"confidence"`
	Words      []response.Word `json:"words"`
}

// Form holds the question definitions the answers refer to.
type Form struct {
	Questions []Question `json:"questions"`
}

// Question is one form question definition.
type Question struct {
	QuestionID    string `json:"question_id"`
	Title         string `json:"title"`
	Label         string `json:"label"`
	Transcription string `json:"transcription"`
}

// ParsePayload decodes a webhook body. Malformed JSON is a validation
// failure, not a transient one.
func ParsePayload(raw []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "parse", "decode webhook payload", err)
	}
	return &payload, nil
}
