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

// Package taskrunner drives one Orchestrator on a background goroutine and
// exposes its progress as four event streams a UI collaborator can
// subscribe to: progress, stage artifacts, completion, and error. A Runner
// pauses after title ideation until SelectTitle is called, mirroring the
// orchestrator's own TITLES_READY -> TITLE_SELECTED hand-off to a human.
package taskrunner

import (
	"context"
	"errors"
	"sync"

	"github.com/blogpilot/blogpilot/pkg/orchestrator"
	"github.com/blogpilot/blogpilot/pkg/session"
)

// ErrAlreadyStarted guards the single-orchestration-at-a-time invariant: a
// Runner executes its pipeline exactly once.
var ErrAlreadyStarted = errors.New("taskrunner: already started")

// ErrNotAwaitingSelection is returned by SelectTitle when the run isn't
// currently paused at the title-selection hand-off.
var ErrNotAwaitingSelection = errors.New("taskrunner: not awaiting title selection")

// ProgressEvent is one human-readable progress update.
type ProgressEvent struct {
	Stage   session.Stage
	Message string
}

// ArtifactEvent carries one stage's output payload: title candidates,
// curated refs, the competitor post set, the summary, or the final
// article.
type ArtifactEvent struct {
	Stage   session.Stage
	Name    string
	Payload any
}

// ErrorEvent is the normalized failure reported when the run cannot
// continue. Kind is one of "validation", "cancelled", or "internal".
type ErrorEvent struct {
	Kind    string
	Message string
}

type titleSelection struct {
	candidate session.TitleCandidate
	override  string
}

const eventBufferSize = 16

// Runner drives a single orchestration on a background goroutine.
type Runner struct {
	orch  *orchestrator.Orchestrator
	state *session.State

	progress  chan ProgressEvent
	artifacts chan ArtifactEvent
	completed chan session.FinalArticle
	errs      chan ErrorEvent
	selection chan titleSelection

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
}

// New creates a Runner for state, to be driven by orch. Call Start to begin
// execution.
func New(orch *orchestrator.Orchestrator, state *session.State) *Runner {
	return &Runner{
		orch:      orch,
		state:     state,
		progress:  make(chan ProgressEvent, eventBufferSize),
		artifacts: make(chan ArtifactEvent, eventBufferSize),
		completed: make(chan session.FinalArticle, 1),
		errs:      make(chan ErrorEvent, 1),
		selection: make(chan titleSelection, 1),
	}
}

// Progress streams one message per stage transition.
func (r *Runner) Progress() <-chan ProgressEvent { return r.progress }

// Artifacts streams each stage's output payload as it becomes available.
func (r *Runner) Artifacts() <-chan ArtifactEvent { return r.artifacts }

// Completed receives the final article exactly once, on success.
func (r *Runner) Completed() <-chan session.FinalArticle { return r.completed }

// Errors receives exactly one ErrorEvent if the run fails or is cancelled.
func (r *Runner) Errors() <-chan ErrorEvent { return r.errs }

// State returns the session state the runner is driving.
func (r *Runner) State() *session.State { return r.state }

// Start launches the pipeline on a background goroutine. Returns
// ErrAlreadyStarted if called more than once.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.started = true
	r.cancel = cancel
	r.mu.Unlock()

	go r.run(runCtx)
	return nil
}

// SelectTitle delivers the user's title choice to a run paused at the
// TITLES_READY hand-off. Returns ErrNotAwaitingSelection if the run is not
// (or no longer) waiting there.
func (r *Runner) SelectTitle(candidate session.TitleCandidate, searchQueryOverride string) error {
	select {
	case r.selection <- titleSelection{candidate: candidate, override: searchQueryOverride}:
		return nil
	default:
		return ErrNotAwaitingSelection
	}
}

// Cancel requests cooperative cancellation. The running stage observes it
// at its next boundary check and the pipeline ends in CANCELLED. Also
// cancels the run's internal context, so a run paused waiting for title
// selection unblocks immediately rather than waiting for the next stage
// call to even begin.
func (r *Runner) Cancel() {
	r.state.RequestCancel()
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Runner) emitProgress(stage session.Stage, message string) {
	select {
	case r.progress <- ProgressEvent{Stage: stage, Message: message}:
	default:
	}
}

func (r *Runner) emitArtifact(name string, payload any) {
	select {
	case r.artifacts <- ArtifactEvent{Stage: r.state.Stage(), Name: name, Payload: payload}:
	default:
	}
}

func (r *Runner) run(ctx context.Context) {
	defer close(r.progress)
	defer close(r.artifacts)
	defer close(r.completed)
	defer close(r.errs)

	if err := r.orch.RunTitleIdeation(ctx, r.state, r.emitProgress); err != nil {
		r.fail(err)
		return
	}
	r.emitArtifact("title_candidates", r.state.TitleCandidates())

	select {
	case sel := <-r.selection:
		if err := r.orch.SelectTitle(r.state, sel.candidate, sel.override); err != nil {
			r.fail(err)
			return
		}
	case <-ctx.Done():
		r.state.MarkCancelled()
		r.errs <- ErrorEvent{Kind: "cancelled", Message: "orchestration cancelled while awaiting title selection"}
		return
	}

	type step struct {
		run      func(context.Context, *session.State, orchestrator.ProgressFunc) error
		artifact string
		payload  func() any
	}
	steps := []step{
		{r.orch.RunCompetitorDiscovery, "competitor_refs", func() any { return r.state.CompetitorRefs() }},
		{r.orch.RunCompetitorCuration, "curated_refs", func() any { return r.state.CuratedRefs() }},
		{r.orch.RunCompetitorEnrichment, "competitor_posts", func() any { return r.state.CompetitorPosts() }},
		{r.orch.RunSummary, "summary", func() any { return r.state.Summary() }},
		{r.orch.RunWriting, "article", func() any { return r.state.Article() }},
	}

	for _, st := range steps {
		if err := st.run(ctx, r.state, r.emitProgress); err != nil {
			r.fail(err)
			return
		}
		r.emitArtifact(st.artifact, st.payload())
	}

	article := r.state.Article()
	if article != nil {
		r.completed <- *article
	}
}

func (r *Runner) fail(err error) {
	kind := "internal"
	var verr *orchestrator.ValidationError
	switch {
	case errors.Is(err, orchestrator.ErrCancelled):
		kind = "cancelled"
	case r.state.Cancelled():
		// A stage call interrupted by Cancel fails with a context error.
		kind = "cancelled"
		r.state.MarkCancelled()
	case errors.As(err, &verr):
		kind = "validation"
	}
	r.state.MarkErrored(err)
	r.errs <- ErrorEvent{Kind: kind, Message: err.Error()}
}
