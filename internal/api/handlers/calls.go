package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/callshield/backend/internal/models"
)

// Analyzer runs the full screening pipeline for one uploaded recording.
type Analyzer interface {
	Analyze(ctx context.Context, audio io.Reader, filename, phoneNumber string) (*models.CallRecord, error)
}

// HistorySource serves the read-only history query.
type HistorySource interface {
	History(ctx context.Context) ([]models.CallRecord, error)
}

type CallsHandler struct {
	analyzer       Analyzer
	history        HistorySource
	maxUploadBytes int64
}

func NewCallsHandler(analyzer Analyzer, history HistorySource, maxUploadBytes int64) *CallsHandler {
	return &CallsHandler{
		analyzer:       analyzer,
		history:        history,
		maxUploadBytes: maxUploadBytes,
	}
}

// AnalyzeCall accepts a multipart upload (audio file + phone_number) and
// returns the persisted CallRecord. Transcription or persistence failures
// are server errors; classification failures surface as a SUSPICIOUS
// fallback verdict, not an error.
func (h *CallsHandler) AnalyzeCall(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	phoneNumber := r.FormValue("phone_number")
	if phoneNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "phone_number required"})
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "audio file required"})
		return
	}
	defer file.Close()

	rec, err := h.analyzer.Analyze(r.Context(), file, header.Filename, phoneNumber)
	if err != nil {
		slog.Error("call analysis failed", "phone_number", phoneNumber, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Analysis failed: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// CallHistory returns the most recent records, newest first. A store error
// degrades to an empty list: history is informational and a transient
// hiccup must not break the client.
func (h *CallsHandler) CallHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := h.history.History(r.Context())
	if err != nil {
		slog.Error("failed to fetch call history", "error", err)
		recs = nil
	}
	if recs == nil {
		recs = []models.CallRecord{}
	}

	writeJSON(w, http.StatusOK, recs)
}
