// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes a thin HTTP/SSE surface over the TaskRunner
// pipeline for a UI collaborator. It owns no orchestration logic of its own
// — it creates one session.State and taskrunner.Runner per orchestration
// and relays the runner's four event streams as server-sent events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/blogpilot/blogpilot/pkg/orchestrator"
	"github.com/blogpilot/blogpilot/pkg/session"
	"github.com/blogpilot/blogpilot/pkg/taskrunner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the orchestration HTTP API. It is safe for concurrent use.
type Server struct {
	mux    *chi.Mux
	orch   *orchestrator.Orchestrator
	mu     sync.RWMutex
	runner map[string]*taskrunner.Runner
}

// New creates a Server that drives every orchestration through orch. One
// Orchestrator (and the ProviderGateway/CompetitorFetcher it wraps) is
// shared across all orchestrations; only the per-request session.State and
// taskrunner.Runner are per-orchestration.
func New(orch *orchestrator.Orchestrator) *Server {
	s := &Server{
		orch:   orch,
		runner: make(map[string]*taskrunner.Runner),
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/orchestrations", s.handleCreate)
	r.Post("/orchestrations/{id}/select-title", s.handleSelectTitle)
	r.Post("/orchestrations/{id}/cancel", s.handleCancel)
	r.Get("/orchestrations/{id}/events", s.handleEvents)

	s.mux = r
	return s
}

// Handler returns the server's http.Handler.
func (s *Server) Handler() http.Handler { return s.mux }

type createRequest struct {
	ContentKind     string   `json:"content_kind"`
	ReviewSubtype   string   `json:"review_subtype"`
	Tone            string   `json:"tone"`
	BloggerIdentity string   `json:"blogger_identity"`
	MainKeyword     string   `json:"main_keyword"`
	SubKeywords     []string `json:"sub_keywords"`
}

type createResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문을 해석할 수 없습니다.", err)
		return
	}
	if req.MainKeyword == "" {
		writeError(w, http.StatusBadRequest, "메인 키워드가 필요합니다.", errors.New("main_keyword is required"))
		return
	}

	settings := session.WritingSettings{
		ContentKind:     session.ContentKind(req.ContentKind),
		ReviewSubtype:   session.ReviewSubtype(req.ReviewSubtype),
		Tone:            session.Tone(req.Tone),
		BloggerIdentity: req.BloggerIdentity,
	}
	keyword := session.KeywordInput{MainKeyword: req.MainKeyword, SubKeywords: req.SubKeywords}
	state := session.New(settings, keyword)
	run := taskrunner.New(s.orch, state)

	s.mu.Lock()
	s.runner[state.ID] = run
	s.mu.Unlock()

	// The run outlives this request, whose context ends when the handler
	// returns; it ends through the cancel endpoint instead.
	if err := run.Start(context.Background()); err != nil {
		writeError(w, http.StatusInternalServerError, "파이프라인을 시작할 수 없습니다.", err)
		return
	}

	writeJSON(w, http.StatusAccepted, createResponse{ID: state.ID})
}

type selectTitleRequest struct {
	Title               string `json:"title"`
	SearchQuery         string `json:"search_query"`
	SearchQueryOverride string `json:"search_query_override"`
}

func (s *Server) handleSelectTitle(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "해당 작업을 찾을 수 없습니다.", errors.New("unknown orchestration id"))
		return
	}
	var req selectTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "요청 본문을 해석할 수 없습니다.", err)
		return
	}
	candidate := session.TitleCandidate{Title: req.Title, SearchQuery: req.SearchQuery}
	if err := run.SelectTitle(candidate, req.SearchQueryOverride); err != nil {
		writeError(w, http.StatusConflict, "지금은 제목을 선택할 수 없습니다.", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "해당 작업을 찾을 수 없습니다.", errors.New("unknown orchestration id"))
		return
	}
	run.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

// sseEvent is the envelope written for every server-sent event, regardless
// of which of the runner's four channels it came from.
type sseEvent struct {
	Type    string `json:"type"` // "progress" | "artifact" | "completed" | "error"
	Payload any    `json:"payload"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "해당 작업을 찾을 수 없습니다.", errors.New("unknown orchestration id"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "스트리밍을 지원하지 않는 응답 작성기입니다.", errors.New("http.ResponseWriter is not a Flusher"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	progress, artifacts, completed, errs := run.Progress(), run.Artifacts(), run.Completed(), run.Errors()
	for {
		select {
		case ev, open := <-progress:
			if !open {
				progress = nil
				break
			}
			writeSSE(w, flusher, sseEvent{Type: "progress", Payload: ev})
		case ev, open := <-artifacts:
			if !open {
				artifacts = nil
				break
			}
			writeSSE(w, flusher, sseEvent{Type: "artifact", Payload: ev})
		case ev, open := <-completed:
			if !open {
				completed = nil
				break
			}
			writeSSE(w, flusher, sseEvent{Type: "completed", Payload: ev})
			return
		case ev, open := <-errs:
			if !open {
				errs = nil
				break
			}
			writeSSE(w, flusher, sseEvent{Type: "error", Payload: ev})
			return
		case <-ctx.Done():
			return
		}
		if progress == nil && artifacts == nil && completed == nil && errs == nil {
			return
		}
	}
}

func (s *Server) lookup(id string) (*taskrunner.Runner, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runner[id]
	return run, ok
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev sseEvent) {
	body, err := json.Marshal(ev.Payload)
	if err != nil {
		slog.Error("server: failed to marshal SSE payload", "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, body)
	flusher.Flush()
}

type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeError(w http.ResponseWriter, status int, userMessage string, err error) {
	writeJSON(w, status, errorBody{Message: userMessage, Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("server: failed to encode JSON response", "error", err)
	}
}
