package session

import (
	"context"
	"fmt"
	"math"

	"loom/internal/response"
	"loom/internal/services"
)

// chapterGap separates consecutive chapters on the merged timeline, in
// seconds.
const chapterGap = 0.5

// DurationProber measures the playable duration of a stored media object.
type DurationProber interface {
	Duration(ctx context.Context, objectPath string) (float64, error)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// GenerateChapters sequences clips into timed chapters. The first chapter
// starts at zero; each later chapter starts half a second after the previous
// one ends. Bounds are rounded to two decimals. A probe failure on any clip
// aborts the whole timeline, since every later bound would shift.
func GenerateChapters(ctx context.Context, prober DurationProber, clips []response.AnswerClip) ([]Chapter, error) {
	chapters := make([]Chapter, 0, len(clips))
	var prevEnd float64
	for i, clip := range clips {
		duration, err := prober.Duration(ctx, clip.StorageObjectPath)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "session", "generate_chapters",
				fmt.Sprintf("probe duration of clip %s", clip.AnswerID), err)
		}

		var start float64
		if i > 0 {
			start = prevEnd + chapterGap
		}
		end := start + duration
		chapter := Chapter{
			AnswerID:      clip.AnswerID,
			QuestionTitle: clip.QuestionTitle,
			Transcript:    clip.Transcript,
			Time: ChapterTime{
				StartTime: round2(start),
				EndTime:   round2(end),
			},
		}
		chapters = append(chapters, chapter)
		prevEnd = chapter.Time.EndTime
	}
	return chapters, nil
}
