// Package speech provides speech recognition for the recorder.
package speech

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNoAPIKey is returned when no OpenAI key is configured.
var ErrNoAPIKey = errors.New("API key required: set HEALTHVOICE_OPENAI_API_KEY or run 'healthvoice config set-key openai'")

// Transcriber turns a complete audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}

// Whisper transcribes WAV audio with the OpenAI Whisper API.
type Whisper struct {
	client openai.Client
	model  openai.AudioModel
}

// NewWhisper creates a Whisper client.
func NewWhisper(apiKey string, opts ...option.RequestOption) (*Whisper, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &Whisper{
		client: openai.NewClient(opts...),
		model:  openai.AudioModelWhisper1,
	}, nil
}

// Transcribe sends audio, which must be a WAV file, to Whisper.
func (w *Whisper) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	resp, err := w.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, "speech.wav", "audio/wav"),
		Model: w.model,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create transcription via Whisper API: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// EncodeWAV wraps S16LE mono PCM in a WAV container.
func EncodeWAV(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
		headerSize    = 44
	)

	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(pcm)))

	le := func(v any) {
		_ = binary.Write(buf, binary.LittleEndian, v) //nolint:errcheck // bytes.Buffer writes never fail
	}

	buf.WriteString("RIFF")
	le(uint32(36 + len(pcm))) //nolint:gosec // recordings are far below 4GiB
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	le(uint32(16))
	le(uint16(1)) // PCM
	le(uint16(channels))
	le(uint32(sampleRate)) //nolint:gosec // small config value
	le(uint32(byteRate))   //nolint:gosec // small config value
	le(uint16(blockAlign)) //nolint:gosec // small config value
	le(uint16(bitsPerSample))

	buf.WriteString("data")
	le(uint32(len(pcm))) //nolint:gosec // recordings are far below 4GiB
	buf.Write(pcm)

	return buf.Bytes()
}
