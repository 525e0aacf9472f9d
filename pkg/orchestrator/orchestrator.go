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

// Package orchestrator carries one content-generation session through its
// fixed stage sequence: title ideation, title selection, competitor
// discovery, curation, enrichment+filtering, summarization, and writing.
// Each stage method validates its precondition, builds a prompt, calls the
// gateway, parses the response, and writes the result back into the
// session state before emitting a progress message.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blogpilot/blogpilot/pkg/competitor"
	"github.com/blogpilot/blogpilot/pkg/gateway"
	"github.com/blogpilot/blogpilot/pkg/model"
	"github.com/blogpilot/blogpilot/pkg/prompt"
	"github.com/blogpilot/blogpilot/pkg/quality"
	"github.com/blogpilot/blogpilot/pkg/session"
)

// ModelSelections names the catalog display name used for each role the
// pipeline calls. Summary covers title ideation, curation, and
// summarization; Writing covers the final article stage only.
type ModelSelections struct {
	Summary string
	Writing string
}

// ProgressFunc receives one human-readable progress message per completed
// (or in-flight) stage transition. nil is a valid no-op callback.
type ProgressFunc func(stage session.Stage, message string)

// Orchestrator runs the fixed stage sequence over a *session.State.
type Orchestrator struct {
	gateway *gateway.Gateway
	fetcher *competitor.Fetcher
	models  ModelSelections
}

// New creates an Orchestrator. gw and fetcher must be non-nil; fetcher may
// wrap a nil BrowserSession, which degrades discovery to empty results and
// enrichment to the HTTP-only path.
func New(gw *gateway.Gateway, fetcher *competitor.Fetcher, models ModelSelections) *Orchestrator {
	return &Orchestrator{gateway: gw, fetcher: fetcher, models: models}
}

func noop(session.Stage, string) {}

func (o *Orchestrator) emit(fn ProgressFunc, state *session.State, message string) {
	if fn == nil {
		fn = noop
	}
	fn(state.Stage(), message)
}

func (o *Orchestrator) checkCancel(state *session.State) error {
	if state.Cancelled() {
		state.MarkCancelled()
		return ErrCancelled
	}
	return nil
}

// RunTitleIdeation executes stage T: INIT -> TITLES_READY.
func (o *Orchestrator) RunTitleIdeation(ctx context.Context, state *session.State, progress ProgressFunc) error {
	if err := o.checkCancel(state); err != nil {
		return err
	}
	if state.Stage() != session.StageInit {
		return newValidationError(fmt.Sprintf("title ideation requires stage INIT, got %s", state.Stage()))
	}

	promptText, _ := prompt.BuildTitlePrompt(state.Settings, state.Keyword)
	raw, err := o.gateway.GenerateText(ctx, o.models.Summary, []model.Message{{Role: model.RoleUser, Content: promptText}}, model.Params{})
	if err != nil {
		return err
	}

	parsed := prompt.ParseTitleResponse(raw)
	candidates := make([]session.TitleCandidate, 0, len(parsed))
	for _, t := range parsed {
		candidates = append(candidates, session.TitleCandidate{Title: t.Title, SearchQuery: t.SearchQuery})
	}
	state.SetTitleCandidates(candidates)
	o.emit(progress, state, fmt.Sprintf("%d개의 제목 후보를 생성했습니다.", len(candidates)))
	return nil
}

// SelectTitle executes the user's choice: TITLES_READY -> TITLE_SELECTED.
// searchQueryOverride, if non-empty, replaces the candidate's paired query
// as the effective search query driving discovery.
func (o *Orchestrator) SelectTitle(state *session.State, candidate session.TitleCandidate, searchQueryOverride string) error {
	if err := o.checkCancel(state); err != nil {
		return err
	}
	if state.Stage() != session.StageTitlesReady {
		return newValidationError(fmt.Sprintf("title selection requires stage TITLES_READY, got %s", state.Stage()))
	}

	effective := candidate.SearchQuery
	if strings.TrimSpace(searchQueryOverride) != "" {
		effective = searchQueryOverride
	}
	state.SelectTitle(session.SelectedTitle{TitleCandidate: candidate, EffectiveSearchQuery: effective})
	return nil
}

// RunCompetitorDiscovery executes stage D's first half: TITLE_SELECTED ->
// COMPETITORS_DISCOVERED. Zero discovered competitors is a legal, non-error
// outcome (no BrowserSession configured, or a genuinely empty result set).
func (o *Orchestrator) RunCompetitorDiscovery(ctx context.Context, state *session.State, progress ProgressFunc) error {
	if err := o.checkCancel(state); err != nil {
		return err
	}
	if state.Stage() != session.StageTitleSelected {
		return newValidationError(fmt.Sprintf("competitor discovery requires stage TITLE_SELECTED, got %s", state.Stage()))
	}

	refs, err := o.fetcher.Discover(ctx, state.EffectiveSearchQuery())
	if err != nil {
		return err
	}
	state.SetCompetitorRefs(refs)
	o.emit(progress, state, fmt.Sprintf("%d개의 경쟁 블로그를 발견했습니다.", len(refs)))
	return nil
}

const curationFallbackSize = 10

// RunCompetitorCuration executes stage D's AI-curation half:
// COMPETITORS_DISCOVERED -> COMPETITORS_CURATED. A zero-item or
// unparseable response falls back to the first curationFallbackSize refs in
// discovery-rank order, per spec.
func (o *Orchestrator) RunCompetitorCuration(ctx context.Context, state *session.State, progress ProgressFunc) error {
	if err := o.checkCancel(state); err != nil {
		return err
	}
	if state.Stage() != session.StageCompetitorsDiscovered {
		return newValidationError(fmt.Sprintf("competitor curation requires stage COMPETITORS_DISCOVERED, got %s", state.Stage()))
	}

	refs := state.CompetitorRefs()
	if len(refs) == 0 {
		state.SetCuratedRefs(nil)
		o.emit(progress, state, "경쟁 블로그가 없어 선별을 건너뜁니다.")
		return nil
	}

	selected := state.SelectedTitle()
	if selected == nil {
		return newValidationError("competitor curation requires a selected title")
	}

	titles := make([]string, len(refs))
	for i, r := range refs {
		titles[i] = r.Title
	}
	promptText, _ := prompt.BuildCurationPrompt(*selected, state.EffectiveSearchQuery(), state.Keyword.MainKeyword, state.Keyword.SubKeywords, state.Settings.ContentKind, titles)

	raw, err := o.gateway.GenerateText(ctx, o.models.Summary, []model.Message{{Role: model.RoleUser, Content: promptText}}, model.Params{})
	if err != nil {
		return err
	}

	curatedRefs := resolveCuration(prompt.ParseCurationResponse(raw), refs)
	if len(curatedRefs) == 0 {
		curatedRefs = firstNByRank(refs, curationFallbackSize)
	}
	state.SetCuratedRefs(curatedRefs)
	o.emit(progress, state, fmt.Sprintf("%d개의 경쟁 블로그를 선별했습니다.", len(curatedRefs)))
	return nil
}

// resolveCuration maps the model's 1-based original_index entries back to
// the discovered refs' URLs, preserving the model's chosen order.
func resolveCuration(curated []prompt.CuratedTitle, refs []session.CompetitorRef) []session.CompetitorRef {
	out := make([]session.CompetitorRef, 0, len(curated))
	for _, c := range curated {
		idx := c.OriginalIndex - 1
		if idx < 0 || idx >= len(refs) {
			continue
		}
		title := c.Title
		if title == "" {
			title = refs[idx].Title
		}
		out = append(out, session.CompetitorRef{Rank: c.Rank, Title: title, URL: refs[idx].URL})
	}
	return out
}

func firstNByRank(refs []session.CompetitorRef, n int) []session.CompetitorRef {
	sorted := make([]session.CompetitorRef, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RunCompetitorEnrichment executes stage D's final half:
// COMPETITORS_CURATED -> COMPETITORS_READY. It enriches curated refs in
// order, silently dropping per-URL enrichment failures (handled locally,
// per the error taxonomy) and posts that fail QualityFilter, stopping once
// three survivors are collected or the curated list is exhausted.
func (o *Orchestrator) RunCompetitorEnrichment(ctx context.Context, state *session.State, progress ProgressFunc) error {
	if err := o.checkCancel(state); err != nil {
		return err
	}
	if state.Stage() != session.StageCompetitorsCurated {
		return newValidationError(fmt.Sprintf("competitor enrichment requires stage COMPETITORS_CURATED, got %s", state.Stage()))
	}

	const enrichmentSurvivors = 3
	for _, ref := range state.CuratedRefs() {
		if err := o.checkCancel(state); err != nil {
			return err
		}

		post, err := o.fetcher.Enrich(ctx, ref)
		if err != nil {
			continue
		}
		if post.AnalysisFailed {
			continue
		}
		if !quality.Admits(post.BodyLength, post.Body, post.Title) {
			continue
		}
		if !state.AppendCompetitorPost(post) {
			break
		}
		o.emit(progress, state, fmt.Sprintf("경쟁 블로그 분석 완료: %s", post.Title))
		if len(state.CompetitorPosts()) >= enrichmentSurvivors {
			break
		}
	}

	state.FinishEnrichment()
	o.emit(progress, state, fmt.Sprintf("%d개의 경쟁 블로그 분석을 완료했습니다.", len(state.CompetitorPosts())))
	return nil
}

// RunSummary executes stage S: COMPETITORS_READY -> SUMMARY_READY. Runs
// even with zero surviving competitor posts — the prompt's own
// "competitor_blogs" array is simply empty, and the model is expected to
// note the lack of references in its analysis, per the zero-competitor
// boundary case.
func (o *Orchestrator) RunSummary(ctx context.Context, state *session.State, progress ProgressFunc) error {
	if err := o.checkCancel(state); err != nil {
		return err
	}
	if state.Stage() != session.StageCompetitorsReady {
		return newValidationError(fmt.Sprintf("summary requires stage COMPETITORS_READY, got %s", state.Stage()))
	}

	selected := state.SelectedTitle()
	if selected == nil {
		return newValidationError("summary requires a selected title")
	}

	promptText, _ := prompt.BuildSummaryPrompt(*selected, state.EffectiveSearchQuery(), state.Keyword.MainKeyword, state.Keyword.SubKeywords, state.Settings.ContentKind, state.CompetitorPosts())
	raw, err := o.gateway.GenerateText(ctx, o.models.Summary, []model.Message{{Role: model.RoleUser, Content: promptText}}, model.Params{})
	if err != nil {
		return err
	}

	state.SetSummary(session.SummaryArtifact{Text: strings.TrimSpace(raw)})
	o.emit(progress, state, "경쟁 블로그 분석 요약을 완료했습니다.")
	return nil
}

const commonTagLimit = 5

// RunWriting executes stage W: SUMMARY_READY -> ARTICLE_READY (terminal).
func (o *Orchestrator) RunWriting(ctx context.Context, state *session.State, progress ProgressFunc) error {
	if err := o.checkCancel(state); err != nil {
		return err
	}
	if state.Stage() != session.StageSummaryReady {
		return newValidationError(fmt.Sprintf("writing requires stage SUMMARY_READY, got %s", state.Stage()))
	}

	selected := state.SelectedTitle()
	summary := state.Summary()
	if selected == nil || summary == nil {
		return newValidationError("writing requires a selected title and a summary")
	}

	posts := state.CompetitorPosts()
	stats := prompt.StatsFromPosts(posts)
	commonTags := commonHashtags(posts, commonTagLimit)

	promptText, _ := prompt.BuildWritingPrompt(state.Settings, state.Keyword, *selected, state.EffectiveSearchQuery(), stats, *summary, commonTags)
	raw, err := o.gateway.GenerateText(ctx, o.models.Writing, []model.Message{{Role: model.RoleUser, Content: promptText}}, model.Params{})
	if err != nil {
		return err
	}

	state.SetArticle(session.FinalArticle{Text: strings.TrimSpace(raw)})
	o.emit(progress, state, "최종 글 작성을 완료했습니다.")
	return nil
}

// commonHashtags returns up to limit hashtags, ranked by how many
// surviving posts carry them (ties broken by first appearance order), for
// the writer prompt's "popular tags" reference block.
func commonHashtags(posts []session.CompetitorPost, limit int) []string {
	counts := make(map[string]int)
	var order []string
	for _, p := range posts {
		seen := make(map[string]bool, len(p.Hashtags))
		for _, tag := range p.Hashtags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	return order
}
