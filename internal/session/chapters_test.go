package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"loom/internal/response"
)

type mapProber struct {
	durations map[string]float64
	failOn    string
}

func (p *mapProber) Duration(ctx context.Context, objectPath string) (float64, error) {
	if objectPath == p.failOn {
		return 0, errors.New("ffprobe exploded")
	}
	duration, ok := p.durations[objectPath]
	if !ok {
		return 0, fmt.Errorf("no duration for %s", objectPath)
	}
	return duration, nil
}

func clipsForDurations(durations []float64) ([]response.AnswerClip, *mapProber) {
	clips := make([]response.AnswerClip, len(durations))
	prober := &mapProber{durations: map[string]float64{}}
	for i, d := range durations {
		path := fmt.Sprintf("responses/a%d.mp4", i+1)
		clips[i] = response.AnswerClip{
			AnswerID:          fmt.Sprintf("a%d", i+1),
			QuestionTitle:     fmt.Sprintf("Question %d", i+1),
			Transcript:        fmt.Sprintf("transcript %d", i+1),
			StorageObjectPath: path,
		}
		prober.durations[path] = d
	}
	return clips, prober
}

func TestGenerateChaptersSpacing(t *testing.T) {
	clips, prober := clipsForDurations([]float64{2, 1.5, 1.5})
	chapters, err := GenerateChapters(context.Background(), prober, clips)
	if err != nil {
		t.Fatalf("GenerateChapters: %v", err)
	}
	want := []ChapterTime{
		{StartTime: 0, EndTime: 2},
		{StartTime: 2.5, EndTime: 4},
		{StartTime: 4.5, EndTime: 6},
	}
	if len(chapters) != len(want) {
		t.Fatalf("chapters = %d, want %d", len(chapters), len(want))
	}
	for i, chapter := range chapters {
		if chapter.Time != want[i] {
			t.Fatalf("chapter %d time = %+v, want %+v", i, chapter.Time, want[i])
		}
	}
}

func TestGenerateChaptersCarriesClipFields(t *testing.T) {
	clips, prober := clipsForDurations([]float64{3})
	chapters, err := GenerateChapters(context.Background(), prober, clips)
	if err != nil {
		t.Fatalf("GenerateChapters: %v", err)
	}
	if chapters[0].AnswerID != "a1" || chapters[0].QuestionTitle != "Question 1" || chapters[0].Transcript != "transcript 1" {
		t.Fatalf("chapter fields = %+v", chapters[0])
	}
}

func TestGenerateChaptersRoundsToTwoDecimals(t *testing.T) {
	clips, prober := clipsForDurations([]float64{1.2345, 0.9876})
	chapters, err := GenerateChapters(context.Background(), prober, clips)
	if err != nil {
		t.Fatalf("GenerateChapters: %v", err)
	}
	if chapters[0].Time.EndTime != 1.23 {
		t.Fatalf("first end = %v, want 1.23", chapters[0].Time.EndTime)
	}
	if chapters[1].Time.StartTime != 1.73 {
		t.Fatalf("second start = %v, want 1.73", chapters[1].Time.StartTime)
	}
	if chapters[1].Time.EndTime != 2.72 {
		t.Fatalf("second end = %v, want 2.72", chapters[1].Time.EndTime)
	}
}

func TestGenerateChaptersOrdering(t *testing.T) {
	clips, prober := clipsForDurations([]float64{0.5, 4, 0.25, 2})
	chapters, err := GenerateChapters(context.Background(), prober, clips)
	if err != nil {
		t.Fatalf("GenerateChapters: %v", err)
	}
	for i, chapter := range chapters {
		if chapter.Time.EndTime < chapter.Time.StartTime {
			t.Fatalf("chapter %d end before start: %+v", i, chapter.Time)
		}
		if i > 0 && chapter.Time.StartTime < chapters[i-1].Time.StartTime {
			t.Fatalf("chapter %d start decreased: %+v after %+v", i, chapter.Time, chapters[i-1].Time)
		}
	}
}

func TestGenerateChaptersAbortsOnProbeFailure(t *testing.T) {
	clips, prober := clipsForDurations([]float64{2, 3, 4})
	prober.failOn = "responses/a2.mp4"
	chapters, err := GenerateChapters(context.Background(), prober, clips)
	if err == nil {
		t.Fatal("expected probe failure to abort the timeline")
	}
	if chapters != nil {
		t.Fatalf("expected no partial chapters, got %d", len(chapters))
	}
}

func TestGenerateChaptersEmptyInput(t *testing.T) {
	chapters, err := GenerateChapters(context.Background(), &mapProber{}, nil)
	if err != nil {
		t.Fatalf("GenerateChapters: %v", err)
	}
	if len(chapters) != 0 {
		t.Fatalf("chapters = %d, want 0", len(chapters))
	}
}
