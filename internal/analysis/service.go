package analysis

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/callshield/backend/internal/models"
	"github.com/callshield/backend/internal/stt"
)

// Context prompt handed to the transcriber; mixed Hindi/English call audio
// transcribes noticeably better with a bilingual hint.
const transcriptionPrompt = "यह एक फोन कॉल रिकॉर्डिंग है। This is a phone call recording with Hindi and English conversation."

// Classifier produces a fraud verdict for a transcript. Implementations
// must not fail: undetermined calls come back as the fallback verdict.
type Classifier interface {
	Classify(ctx context.Context, transcript, phoneNumber string) models.FraudVerdict
}

// RecordStore appends analyzed call records.
type RecordStore interface {
	Create(ctx context.Context, rec *models.CallRecord) error
}

// AlertNotifier is told about calls classified FRAUD. Notification is
// fire-and-forget; it never affects the analyze request.
type AlertNotifier interface {
	NotifyFraud(ctx context.Context, rec models.CallRecord)
}

// Service runs the analyze pipeline for one uploaded recording:
// stage to disk, transcribe, classify, persist, alert. Stages are strictly
// sequential; each one's output is the next one's input.
type Service struct {
	transcriber stt.Transcriber
	classifier  Classifier
	records     RecordStore
	alerts      AlertNotifier
}

func NewService(transcriber stt.Transcriber, classifier Classifier, records RecordStore, alerts AlertNotifier) *Service {
	return &Service{
		transcriber: transcriber,
		classifier:  classifier,
		records:     records,
		alerts:      alerts,
	}
}

// Analyze screens one call recording. Transcription and persistence failures
// abort the request; classification failures are absorbed by the classifier's
// fallback verdict. The staged audio file is removed on every exit path.
func (s *Service) Analyze(ctx context.Context, audio io.Reader, filename, phoneNumber string) (*models.CallRecord, error) {
	tmpPath, err := stageAudio(audio, filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			slog.Warn("failed to remove staged audio", "path", tmpPath, "error", err)
		}
	}()

	slog.Info("transcribing audio", "phone_number", phoneNumber)
	transcription, err := s.transcriber.Transcribe(ctx, stt.Request{
		FilePath: tmpPath,
		Prompt:   transcriptionPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe call: %w", err)
	}
	slog.Info("transcription completed", "phone_number", phoneNumber, "chars", len(transcription.Text))

	verdict := s.classifier.Classify(ctx, transcription.Text, phoneNumber)

	rec := models.NewCallRecord(phoneNumber, verdict, transcription.Text)
	if err := s.records.Create(ctx, &rec); err != nil {
		return nil, fmt.Errorf("save call record: %w", err)
	}

	if rec.RiskCategory == models.RiskFraud && s.alerts != nil {
		s.alerts.NotifyFraud(ctx, rec)
	}

	return &rec, nil
}

// stageAudio copies the upload to a request-owned temp file so the
// transcriber can re-read it as a regular file.
func stageAudio(audio io.Reader, filename string) (string, error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".m4a"
	}

	tmp, err := os.CreateTemp("", "call-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp audio file: %w", err)
	}

	if _, err := io.Copy(tmp, audio); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage audio upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close staged audio: %w", err)
	}

	return tmp.Name(), nil
}
