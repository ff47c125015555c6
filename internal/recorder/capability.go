package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrPermissionDenied is returned when the platform refuses microphone access.
var ErrPermissionDenied = errors.New("microphone permission denied")

// ErrMicrophoneUnavailable wraps every failure of Start to open the
// microphone, permission denied included.
var ErrMicrophoneUnavailable = errors.New("failed to access microphone")

// RecognitionError wraps a failure reported by the speech-to-text engine.
// It is never fatal: the transcript keeps its last good value.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech recognition: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// AudioHandle is an opaque, playable recording.
type AudioHandle interface {
	// Open returns a reader over the encoded audio.
	Open() (io.ReadCloser, error)
	// Size returns the encoded size in bytes.
	Size() int64
}

// Microphone acquires the capture device.
type Microphone interface {
	// Open requests access and starts capturing. It returns an error wrapping
	// ErrPermissionDenied when access is refused.
	Open(ctx context.Context) (Capture, error)
}

// Capture is a running microphone capture.
type Capture interface {
	// PCM returns a tap of raw S16LE mono packets for speech recognition,
	// or nil when the capture does not provide one.
	PCM() <-chan []byte
	// Finalize stops capturing, releases the device and returns the
	// recording as a playable handle.
	Finalize() (AudioHandle, error)
	// Release stops capturing and releases the device, discarding audio.
	Release()
}

// Segment is one recognized utterance fragment.
type Segment struct {
	Text  string
	Final bool
}

// RecognitionEvent carries either fresh results or an engine error.
type RecognitionEvent struct {
	Results []Segment
	Err     error
}

// SpeechRecognizer turns captured audio into incremental transcript events.
// emit may be called from any goroutine.
type SpeechRecognizer interface {
	Start(ctx context.Context, pcm <-chan []byte, emit func(RecognitionEvent)) (Recognition, error)
}

// Recognition is a running speech recognition session.
type Recognition interface {
	Stop()
}

// MergeSegments builds the current transcript from a batch of results.
// Final segments, concatenated, take precedence over interim ones.
func MergeSegments(segments []Segment) string {
	var final, interim strings.Builder

	for _, seg := range segments {
		if seg.Final {
			final.WriteString(seg.Text)
		} else {
			interim.WriteString(seg.Text)
		}
	}

	if final.Len() > 0 {
		return final.String()
	}

	return interim.String()
}
