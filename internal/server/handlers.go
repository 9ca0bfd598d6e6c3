package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"thyrocheck/internal/chat"
	"thyrocheck/internal/logging"
	"thyrocheck/internal/report"
)

// AnswerRequest is the JSON body of POST /api/session/answers. Values holds
// one option value for choice steps, any number for multi-choice steps, and
// the typed text for input steps.
type AnswerRequest struct {
	StepID string   `json:"step_id"`
	Values []string `json:"values"`
}

// AnswerResponse reports the submission outcome and the resulting state.
type AnswerResponse struct {
	Accepted bool          `json:"accepted"`
	Reason   chat.Reason   `json:"reason"`
	Session  chat.Snapshot `json:"session"`
}

var errNoVerdict = errors.New("no verdict yet")

func (s *Server) handleChatPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ChatPage(s.session.Snapshot(), s.refresh).Render(r.Context(), w); err != nil {
		s.logger.ErrorContext(r.Context(), "render chat page", "error", err)
	}
}

func (s *Server) handleChatAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	stepID := r.PostForm.Get("step_id")
	result := s.submit(r, stepID, r.PostForm["value"])
	if !result.Accepted {
		s.logger.InfoContext(r.Context(), "answer ignored", "step_id", stepID, "reason", string(result.Reason))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleChatRestart(w http.ResponseWriter, r *http.Request) {
	s.session.Restart()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("decode answer: %w", err))
		return
	}
	if req.StepID == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.New("step_id is required"))
		return
	}
	result := s.submit(r, req.StepID, req.Values)
	status := http.StatusOK
	if !result.Accepted {
		status = http.StatusConflict
	}
	writeJSON(w, status, AnswerResponse{
		Accepted: result.Accepted,
		Reason:   result.Reason,
		Session:  s.session.Snapshot(),
	})
}

// submit builds the answer against the current step when stepID names it.
// Any other step id is passed through so the engine reports it as stale.
func (s *Server) submit(r *http.Request, stepID string, values []string) chat.Result {
	ctx := logging.WithFields(r.Context(), logging.Fields{StepID: stepID})
	step, ok := s.session.Graph().Lookup(stepID)
	if !ok {
		s.logger.DebugContext(ctx, "unknown step submitted")
		return chat.Result{Reason: chat.ReasonUnknownStep}
	}
	value, text := chat.Answer(step, values...)
	return s.session.Submit(stepID, value, text)
}

func (s *Server) handleRestart(w http.ResponseWriter, _ *http.Request) {
	s.session.Restart()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	verdict, ok := s.session.Verdict()
	if !ok {
		s.writeError(w, r, http.StatusNotFound, errNoVerdict)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (s *Server) reportHandler(format report.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		verdict, ok := s.session.Verdict()
		if !ok {
			s.writeError(w, r, http.StatusNotFound, errNoVerdict)
			return
		}
		doc := report.Build(verdict, s.session.Graph())
		var buf bytes.Buffer
		if err := report.Render(r.Context(), &buf, doc, format); err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		if format != report.FormatHTML {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName(doc, format)))
		}
		_, _ = w.Write(buf.Bytes())
	}
}
