package transcoder

import (
	"fmt"
	"testing"

	"loom/internal/response"
)

func TestBuildInputsKeysSequentially(t *testing.T) {
	uris := []string{"http://store/a.mp4", "http://store/b.mp4", "http://store/c.mp4"}
	inputs := BuildInputs(uris)
	if len(inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %d", len(inputs))
	}
	for i, input := range inputs {
		wantKey := fmt.Sprintf("input%d", i+1)
		if input.Key != wantKey {
			t.Fatalf("input %d key = %q, want %q", i, input.Key, wantKey)
		}
		if input.URI != uris[i] {
			t.Fatalf("input %d uri = %q, want %q", i, input.URI, uris[i])
		}
	}
}

func TestBuildEditAtomsReferenceOwnInput(t *testing.T) {
	atoms := BuildEditAtoms(4)
	if len(atoms) != 4 {
		t.Fatalf("expected 4 atoms, got %d", len(atoms))
	}
	for i, atom := range atoms {
		wantKey := fmt.Sprintf("atom%d", i+1)
		if atom.Key != wantKey {
			t.Fatalf("atom %d key = %q, want %q", i, atom.Key, wantKey)
		}
		if len(atom.Inputs) != 1 || atom.Inputs[0] != fmt.Sprintf("input%d", i+1) {
			t.Fatalf("atom %d inputs = %v, want [input%d]", i, atom.Inputs, i+1)
		}
		if atom.StartTimeOffset != nil || atom.EndTimeOffset != nil {
			t.Fatalf("atom %d carries offsets, want none", i)
		}
	}
}

func TestBuildMergeRequestProfile(t *testing.T) {
	clips := []response.AnswerClip{
		{AnswerID: "a1", StorageURL: "http://store/a1.mp4"},
		{AnswerID: "a2", StorageURL: "http://store/a2.mp4"},
	}
	request := BuildMergeRequest("http://store/sessions/", "session.mp4", clips)

	if request.OutputURI != "http://store/sessions/" {
		t.Fatalf("output uri = %q", request.OutputURI)
	}
	if len(request.Inputs) != 2 || len(request.EditList) != 2 {
		t.Fatalf("inputs/atoms = %d/%d, want 2/2", len(request.Inputs), len(request.EditList))
	}
	if request.Inputs[0].URI != "http://store/a1.mp4" || request.Inputs[1].URI != "http://store/a2.mp4" {
		t.Fatalf("input order not preserved: %+v", request.Inputs)
	}

	if len(request.ElementaryStreams) != 2 {
		t.Fatalf("expected 2 elementary streams, got %d", len(request.ElementaryStreams))
	}
	video := request.ElementaryStreams[0].VideoStream
	if video == nil {
		t.Fatal("first elementary stream has no video profile")
	}
	if video.Codec != "h264" || video.WidthPixels != 640 || video.HeightPixels != 360 {
		t.Fatalf("video profile = %+v", video)
	}
	if video.FrameRate != 60 || video.BitrateBPS != 550000 {
		t.Fatalf("video rate/bitrate = %d/%d", video.FrameRate, video.BitrateBPS)
	}
	audio := request.ElementaryStreams[1].AudioStream
	if audio == nil || audio.Codec != "aac" || audio.BitrateBPS != 64000 {
		t.Fatalf("audio profile = %+v", audio)
	}

	if len(request.MuxStreams) != 1 {
		t.Fatalf("expected 1 mux stream, got %d", len(request.MuxStreams))
	}
	mux := request.MuxStreams[0]
	if mux.Key != "session.mp4" || mux.Container != "mp4" {
		t.Fatalf("mux stream = %+v", mux)
	}
	if len(mux.ElementaryStreams) != 2 {
		t.Fatalf("mux references %d streams, want 2", len(mux.ElementaryStreams))
	}
}

func TestParseState(t *testing.T) {
	if got := ParseState("succeeded"); got != StateSucceeded {
		t.Fatalf("ParseState(succeeded) = %q", got)
	}
	if got := ParseState(" RUNNING "); got != StateRunning {
		t.Fatalf("ParseState(RUNNING) = %q", got)
	}
	if got := ParseState("weird"); got != State("weird") {
		t.Fatalf("ParseState(weird) = %q", got)
	}
}
