package stt

import "context"

// Request holds the parameters for one transcription. Language empty means
// auto-detect, which is required for mixed Hindi/English call recordings.
type Request struct {
	FilePath string `json:"file_path"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// Result holds the transcription output.
type Result struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Transcriber is the interface for speech-to-text backends. Implementations
// must be safe for concurrent use.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (*Result, error)
	Name() string
}
