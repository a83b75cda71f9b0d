package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/campaign-intel/internal/archive"
	"github.com/fpang/campaign-intel/internal/assistant"
	"github.com/fpang/campaign-intel/internal/campaign"
)

// maxBodyBytes bounds request bodies; a session opened with a full report is
// the largest expected payload.
const maxBodyBytes = 8 << 20

// Client-facing messages for failures whose details stay in the logs.
const (
	msgAnalysisFailed = "Failed to generate analysis. Please try again."
	msgInternal       = "Something went wrong. Please try again."
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("Failed to write JSON response")
	}
}

// httpError sends a JSON error body. internalDetails are logged but never
// returned to the caller.
func httpError(w http.ResponseWriter, status int, clientMsg string, internalDetails ...string) {
	if len(internalDetails) > 0 {
		log.Error().
			Int("status", status).
			Str("clientMsg", clientMsg).
			Strs("internalDetails", internalDetails).
			Msg("HTTP error with internal details")
	}
	respondJSON(w, status, map[string]string{"error": clientMsg})
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched when
// optional is set.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// fail maps err to a status code. Unclassified errors are logged and
// answered with fallbackMsg.
func fail(w http.ResponseWriter, err error, fallbackMsg string) {
	switch {
	case errors.Is(err, campaign.ErrInvalidInput),
		errors.Is(err, assistant.ErrEmptyMessage):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assistant.ErrSessionNotFound),
		errors.Is(err, assistant.ErrUnknownAction),
		errors.Is(err, archive.ErrNotFound),
		errors.Is(err, errReportNotFound):
		httpError(w, http.StatusNotFound, err.Error())
	default:
		httpError(w, http.StatusInternalServerError, fallbackMsg, err.Error())
	}
}
