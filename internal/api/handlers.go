package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/campaign-intel/internal/assistant"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/pipeline"
)

var errReportNotFound = errors.New("report not found")

// POST /api/campaign
func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request) {
	var in campaign.Input
	if err := decodeBody(w, r, &in, false); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.runner.Run(r.Context(), in)
	if err != nil {
		fail(w, err, msgAnalysisFailed)
		return
	}
	s.reports.add(report)
	respondJSON(w, http.StatusOK, report)
}

// POST /api/plan
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var in campaign.Input
	if err := decodeBody(w, r, &in, false); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := s.runner.Plan(r.Context(), in)
	if err != nil {
		fail(w, err, msgAnalysisFailed)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// GET /api/chat/actions
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, assistant.Actions())
}

// openSessionRequest selects the session's campaign context: an inline
// report, or the ID of a recent or archived one. Both empty opens a general
// guidance session.
type openSessionRequest struct {
	ReportID string           `json:"reportId,omitempty"`
	Report   *pipeline.Report `json:"report,omitempty"`
}

// POST /api/chat/sessions
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}

	report := req.Report
	if report == nil && req.ReportID != "" {
		var err error
		if report, err = s.report(r.Context(), req.ReportID); err != nil {
			fail(w, err, msgInternal)
			return
		}
	}

	var c *assistant.Context
	if report != nil {
		c = assistant.NewContext(report.Input, report.Analysis, report.Analytics, report.Charts, report.Results)
	}
	respondJSON(w, http.StatusCreated, s.assistant.Open(c))
}

// report finds a report in the recent-run cache, then in the archive.
func (s *Server) report(ctx context.Context, id string) (*pipeline.Report, error) {
	if rep, ok := s.reports.get(id); ok {
		return rep, nil
	}
	if s.archive == nil {
		return nil, fmt.Errorf("%w: %s", errReportNotFound, id)
	}
	var rep pipeline.Report
	if err := s.archive.Get(ctx, id, &rep); err != nil {
		return nil, err
	}
	log.Debug().Str("report", id).Msg("Report loaded from archive")
	s.reports.add(&rep)
	return &rep, nil
}

// GET /api/chat/{id}
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.assistant.Session(r.PathValue("id"))
	if err != nil {
		fail(w, err, msgInternal)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

type messageRequest struct {
	Message string `json:"message"`
}

// POST /api/chat/{id}/messages
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	reply, err := s.assistant.Send(r.Context(), r.PathValue("id"), req.Message)
	if err != nil {
		fail(w, err, msgInternal)
		return
	}
	respondJSON(w, http.StatusOK, reply)
}

// POST /api/chat/{id}/actions/{action}
func (s *Server) handleQuickAction(w http.ResponseWriter, r *http.Request) {
	question, err := s.assistant.QuickAction(r.PathValue("id"), r.PathValue("action"))
	if err != nil {
		fail(w, err, msgInternal)
		return
	}
	respondJSON(w, http.StatusOK, question)
}

// POST /api/chat/{id}/close
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.Close(r.Context(), r.PathValue("id")); err != nil {
		fail(w, err, msgInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/history
func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	records, err := s.assistant.History(r.Context())
	if err != nil {
		fail(w, err, msgInternal)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

// DELETE /api/history
func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.Clear(r.Context()); err != nil {
		fail(w, err, msgInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/history/{id}
func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.assistant.HistoryRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err, msgInternal)
		return
	}
	if rec == nil {
		httpError(w, http.StatusNotFound, "session not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// DELETE /api/history/{id}
func (s *Server) handleHistoryDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.Delete(r.Context(), r.PathValue("id")); err != nil {
		fail(w, err, msgInternal)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/history/{id}/open
func (s *Server) handleHistoryOpen(w http.ResponseWriter, r *http.Request) {
	view, err := s.assistant.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, err, msgInternal)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
