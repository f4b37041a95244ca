package session

import "time"

// StatusNew is the status assigned to freshly created sessions.
const StatusNew = "New"

// ChapterTime bounds one chapter on the merged timeline, in seconds rounded
// to two decimals.
type ChapterTime struct {
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// Chapter is a timed segment of the merged session video corresponding to
// one answer clip. Chapters are derived once and never mutated.
type Chapter struct {
	AnswerID      string      `json:"answerId"`
	QuestionTitle string      `json:"questionTitle"`
	Transcript    string      `json:"transcript"`
	Time          ChapterTime `json:"time"`
}

// Section is one pipeline run's output: the section's chapters plus its
// merged media reference. Sections are append-only once attached to a
// session.
type Section struct {
	SectionID           string    `json:"sectionId"`
	SectionName         string    `json:"sectionName"`
	Subtitle            string    `json:"subtitle"`
	Chapters            []Chapter `json:"chapters"`
	MediaURL            string    `json:"mediaUrl"`
	StorageMediaURLPath string    `json:"storageMediaUrlPath"`
}

// Patient holds the contact details attached to a session on creation.
type Patient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Key identifies the session a section belongs to.
type Key struct {
	TenantID string
	SeriesID string
}

// Session accumulates sections across pipeline runs for one tenant/series
// key.
type Session struct {
	ID                        int64     `json:"-"`
	TenantID                  string    `json:"tenantId"`
	SeriesID                  string    `json:"seriesId"`
	Status                    string    `json:"status"`
	Patient                   Patient   `json:"patient"`
	Sections                  []Section `json:"sections"`
	IsDeleted                 bool      `json:"isDeleted"`
	ThumbnailImage            string    `json:"thumbnailImage"`
	StorageThumbnailImagePath string    `json:"storageThumbnailImagePath"`
	CreatedAt                 time.Time `json:"createdAt"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}
