package transcoder

import (
	"fmt"
	"strings"

	"loom/internal/response"
)

// State is the lifecycle state reported by the transcoding service for a job.
type State string

const (
	StatePending   State = "PENDING"
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
)

// Terminal reports whether the state ends a job's lifecycle.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// ParseState normalizes a service-reported state string. Unrecognized values
// are preserved verbatim so failure errors can name them.
func ParseState(value string) State {
	normalized := State(strings.ToUpper(strings.TrimSpace(value)))
	switch normalized {
	case StatePending, StateRunning, StateSucceeded, StateFailed:
		return normalized
	default:
		return State(strings.TrimSpace(value))
	}
}

// Input references one source clip for a job.
type Input struct {
	Key string `json:"key"`
	URI string `json:"uri"`
}

// EditAtom places one input on the output timeline. Offsets are optional;
// merge jobs concatenate whole clips and leave them unset.
type EditAtom struct {
	Key             string   `json:"key"`
	Inputs          []string `json:"inputs"`
	StartTimeOffset *float64 `json:"startTimeOffset,omitempty"`
	EndTimeOffset   *float64 `json:"endTimeOffset,omitempty"`
}

// VideoStream describes the encoded video elementary stream.
type VideoStream struct {
	Codec        string `json:"codec"`
	FrameRate    int    `json:"frameRate"`
	WidthPixels  int    `json:"widthPixels"`
	HeightPixels int    `json:"heightPixels"`
	BitrateBPS   int    `json:"bitrateBps"`
}

// AudioStream describes the encoded audio elementary stream.
type AudioStream struct {
	Codec      string `json:"codec"`
	BitrateBPS int    `json:"bitrateBps"`
}

// ElementaryStream is one encoded stream in the output.
type ElementaryStream struct {
	Key         string       `json:"key"`
	VideoStream *VideoStream `json:"videoStream,omitempty"`
	AudioStream *AudioStream `json:"audioStream,omitempty"`
}

// MuxStream is one muxed output container.
type MuxStream struct {
	Key               string   `json:"key"`
	Container         string   `json:"container"`
	ElementaryStreams []string `json:"elementaryStreams"`
}

// JobRequest is the full job submitted to the transcoding service.
type JobRequest struct {
	OutputURI         string             `json:"outputUri"`
	Inputs            []Input            `json:"inputs"`
	EditList          []EditAtom         `json:"editList"`
	ElementaryStreams []ElementaryStream `json:"elementaryStreams"`
	MuxStreams        []MuxStream        `json:"muxStreams"`
}

// Output profile for merged session videos. Fixed policy, not parameterized
// per call.
const (
	outputVideoCodec   = "h264"
	outputFrameRate    = 60
	outputWidthPixels  = 640
	outputHeightPixels = 360
	outputVideoBitrate = 550000
	outputAudioCodec   = "aac"
	outputAudioBitrate = 64000
	outputContainer    = "mp4"
	videoStreamKey     = "video-stream0"
	audioStreamKey     = "audio-stream0"
)

func inputKey(index int) string { return fmt.Sprintf("input%d", index+1) }

func atomKey(index int) string { return fmt.Sprintf("atom%d", index+1) }

// BuildInputs produces one job input per URI, keyed input1..inputN in order.
func BuildInputs(uris []string) []Input {
	inputs := make([]Input, len(uris))
	for i, uri := range uris {
		inputs[i] = Input{Key: inputKey(i), URI: uri}
	}
	return inputs
}

// BuildEditAtoms produces one edit atom per input, keyed atom1..atomN, each
// referencing exactly its same-indexed input. Pure concatenation; no trims.
func BuildEditAtoms(count int) []EditAtom {
	atoms := make([]EditAtom, count)
	for i := range atoms {
		atoms[i] = EditAtom{Key: atomKey(i), Inputs: []string{inputKey(i)}}
	}
	return atoms
}

func outputStreams(outputName string) ([]ElementaryStream, []MuxStream) {
	elementary := []ElementaryStream{
		{
			Key: videoStreamKey,
			VideoStream: &VideoStream{
				Codec:        outputVideoCodec,
				FrameRate:    outputFrameRate,
				WidthPixels:  outputWidthPixels,
				HeightPixels: outputHeightPixels,
				BitrateBPS:   outputVideoBitrate,
			},
		},
		{
			Key:         audioStreamKey,
			AudioStream: &AudioStream{Codec: outputAudioCodec, BitrateBPS: outputAudioBitrate},
		},
	}
	mux := []MuxStream{
		{
			Key:               outputName,
			Container:         outputContainer,
			ElementaryStreams: []string{videoStreamKey, audioStreamKey},
		},
	}
	return elementary, mux
}

// BuildMergeRequest assembles the concatenation job for the given clips in
// clip order. Clips must already carry their storage URLs.
func BuildMergeRequest(outputURI, outputName string, clips []response.AnswerClip) JobRequest {
	uris := make([]string, len(clips))
	for i, clip := range clips {
		uris[i] = clip.StorageURL
	}
	elementary, mux := outputStreams(outputName)
	return JobRequest{
		OutputURI:         outputURI,
		Inputs:            BuildInputs(uris),
		EditList:          BuildEditAtoms(len(uris)),
		ElementaryStreams: elementary,
		MuxStreams:        mux,
	}
}
