// Package session defines the data model carried through one content
// generation orchestration: user settings, keyword input, per-stage
// artifacts, and the stage cursor that the orchestrator advances.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ContentKind is the shape of article the writer stage targets.
type ContentKind string

const (
	ContentKindReview     ContentKind = "review"
	ContentKindGuide      ContentKind = "guide"
	ContentKindComparison ContentKind = "comparison"
)

// ReviewSubtype only applies when ContentKind is ContentKindReview.
type ReviewSubtype string

const (
	ReviewSubtypeOwnPurchase ReviewSubtype = "own-purchase"
	ReviewSubtypeSponsored   ReviewSubtype = "sponsored"
	ReviewSubtypeTrial       ReviewSubtype = "trial"
	ReviewSubtypeRental      ReviewSubtype = "rental"
)

// Tone is the writing-style recipe applied to the final article. Only
// three are canonical (see the tone-list-length open question).
type Tone string

const (
	ToneCasualInformal Tone = "casual-informal"
	TonePoliteFormal   Tone = "polite-formal"
	ToneFriendlyPolite Tone = "friendly-polite"
)

// WritingSettings are user-chosen styling controls, loaded from persisted
// settings at startup and mutated only via an explicit save. Every stage
// consumes them read-only.
type WritingSettings struct {
	ContentKind     ContentKind   `yaml:"content_kind"`
	ReviewSubtype   ReviewSubtype `yaml:"review_subtype"` // only meaningful when ContentKind == review
	Tone            Tone          `yaml:"tone"`
	BloggerIdentity string        `yaml:"blogger_identity"` // optional free text, ~80 chars
}

// KeywordInput is the user's starting point for one orchestration.
type KeywordInput struct {
	MainKeyword string
	SubKeywords []string // order preserved, duplicates allowed, treated as hints
}

// TitleCandidate is one stage-T suggestion.
type TitleCandidate struct {
	Title       string
	SearchQuery string
}

// SelectedTitle is the TitleCandidate the user chose, with the effective
// search query that actually drives discovery (defaults to the paired
// query, overridable by the user).
type SelectedTitle struct {
	TitleCandidate
	EffectiveSearchQuery string
}

// CompetitorRef is a raw search-result hit: rank, title, and post URL.
type CompetitorRef struct {
	Rank  int
	Title string
	URL   string
}

// ComponentKind is the tagged-sum classification of one body element
// produced by the unified HTML analyzer.
type ComponentKind string

const (
	ComponentText        ComponentKind = "text"
	ComponentImage       ComponentKind = "image"
	ComponentGallery     ComponentKind = "gallery"
	ComponentImageStrip  ComponentKind = "image_strip"
	ComponentVideo       ComponentKind = "video"
	ComponentOEmbed      ComponentKind = "oembed"
	ComponentLinkPreview ComponentKind = "oglink"
	ComponentQuotation   ComponentKind = "quotation"
	ComponentTable       ComponentKind = "table"
	ComponentDivider     ComponentKind = "divider"
	ComponentSticker     ComponentKind = "sticker"
	ComponentUnknown     ComponentKind = "unknown"
)

// ContentStructureComponent is one ordered element of a post body.
type ContentStructureComponent struct {
	Kind         ComponentKind
	TextPreview  string
	HeadingLevel int      // only meaningful for ComponentText
	ImageURLs    []string // gallery/strip image list
	VideoTag     string   // platform tag for embedded video
	Rows, Cols   int      // only meaningful for ComponentTable
	Attrs        map[string]string
}

// CompetitorPost is a CompetitorRef enriched with extracted content.
type CompetitorPost struct {
	CompetitorRef
	Body              string
	BodyLength        int // whitespace-stripped character count
	ImageCount        int
	AnimatedImageCount int
	VideoCount        int
	Structure         []ContentStructureComponent
	Hashtags          []string
	AnalysisFailed    bool // sentinel "분석 실패" post
}

// SummaryArtifact is stage S's plain-text output, passed verbatim into the
// writing prompt.
type SummaryArtifact struct {
	Text string
}

// FinalArticle is stage W's output.
type FinalArticle struct {
	Text string
}

// Stage is the orchestrator's cursor over SessionState.
type Stage string

const (
	StageInit                   Stage = "INIT"
	StageTitlesReady            Stage = "TITLES_READY"
	StageTitleSelected          Stage = "TITLE_SELECTED"
	StageCompetitorsDiscovered  Stage = "COMPETITORS_DISCOVERED"
	StageCompetitorsCurated     Stage = "COMPETITORS_CURATED"
	StageCompetitorsReady       Stage = "COMPETITORS_READY"
	StageSummaryReady           Stage = "SUMMARY_READY"
	StageArticleReady           Stage = "ARTICLE_READY"
	StageCancelled              Stage = "CANCELLED"
	StageErrored                Stage = "ERRORED"
)

// IsTerminal reports whether no further stage transitions are legal.
func (s Stage) IsTerminal() bool {
	switch s {
	case StageArticleReady, StageCancelled, StageErrored:
		return true
	}
	return false
}

const maxCompetitorRefs = 30
const maxCompetitorPosts = 3

// State is one orchestration's carrying state. It is owned exclusively by
// the running TaskRunner and never shared mutably — callers only observe it
// through the accessor methods below, all of which take the internal lock.
type State struct {
	ID string

	Settings WritingSettings
	Keyword  KeywordInput

	mu               sync.RWMutex
	stage            Stage
	selectedTitle    *SelectedTitle
	titleCandidates  []TitleCandidate
	competitorRefs   []CompetitorRef
	curatedRefs      []CompetitorRef
	competitorPosts  []CompetitorPost
	summary          *SummaryArtifact
	article          *FinalArticle
	cancelled        bool
	lastErr          error
	createdAt        time.Time
	updatedAt        time.Time
}

// New creates a fresh orchestration state in stage INIT.
func New(settings WritingSettings, keyword KeywordInput) *State {
	now := time.Now()
	return &State{
		ID:        uuid.New().String(),
		Settings:  settings,
		Keyword:   keyword,
		stage:     StageInit,
		createdAt: now,
		updatedAt: now,
	}
}

// Stage returns the current stage cursor.
func (s *State) Stage() Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

func (s *State) setStage(stage Stage) {
	s.stage = stage
	s.updatedAt = time.Now()
}

// RequestCancel flips the cooperative cancel flag. It does not itself move
// the stage cursor — the orchestrator observes the flag at the next
// checkpoint and transitions to StageCancelled there.
func (s *State) RequestCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = true
}

// Cancelled reports whether cancellation has been requested.
func (s *State) Cancelled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cancelled
}

// SetTitleCandidates records stage T's output and advances to TITLES_READY.
func (s *State) SetTitleCandidates(candidates []TitleCandidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titleCandidates = candidates
	s.setStage(StageTitlesReady)
}

// TitleCandidates returns stage T's output.
func (s *State) TitleCandidates() []TitleCandidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.titleCandidates
}

// SelectTitle records the user's choice (with optional search-query
// override already applied by the caller) and advances to TITLE_SELECTED.
func (s *State) SelectTitle(selected SelectedTitle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTitle = &selected
	s.setStage(StageTitleSelected)
}

// SelectedTitle returns the user's chosen title, or nil before selection.
func (s *State) SelectedTitle() *SelectedTitle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedTitle
}

// SetCompetitorRefs records stage D's discovery output, bounded to
// maxCompetitorRefs, and advances to COMPETITORS_DISCOVERED.
func (s *State) SetCompetitorRefs(refs []CompetitorRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(refs) > maxCompetitorRefs {
		refs = refs[:maxCompetitorRefs]
	}
	s.competitorRefs = refs
	s.setStage(StageCompetitorsDiscovered)
}

// CompetitorRefs returns stage D's discovery output.
func (s *State) CompetitorRefs() []CompetitorRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.competitorRefs
}

// SetCuratedRefs records stage D's curation output and advances to
// COMPETITORS_CURATED.
func (s *State) SetCuratedRefs(refs []CompetitorRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.curatedRefs = refs
	s.setStage(StageCompetitorsCurated)
}

// CuratedRefs returns stage D's curation output.
func (s *State) CuratedRefs() []CompetitorRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.curatedRefs
}

// AppendCompetitorPost adds one surviving enriched post, up to
// maxCompetitorPosts. Returns false once the terminal set is already full.
func (s *State) AppendCompetitorPost(post CompetitorPost) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.competitorPosts) >= maxCompetitorPosts {
		return false
	}
	s.competitorPosts = append(s.competitorPosts, post)
	s.updatedAt = time.Now()
	return true
}

// FinishEnrichment advances to COMPETITORS_READY regardless of how many
// posts survived (zero is legal, per the zero-competitor boundary case).
func (s *State) FinishEnrichment() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStage(StageCompetitorsReady)
}

// CompetitorPosts returns the surviving enriched posts (0..3).
func (s *State) CompetitorPosts() []CompetitorPost {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.competitorPosts
}

// SetSummary records stage S's output and advances to SUMMARY_READY.
func (s *State) SetSummary(summary SummaryArtifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = &summary
	s.setStage(StageSummaryReady)
}

// Summary returns stage S's output, or nil before it runs.
func (s *State) Summary() *SummaryArtifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// SetArticle records stage W's output and advances to the terminal
// ARTICLE_READY stage.
func (s *State) SetArticle(article FinalArticle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.article = &article
	s.setStage(StageArticleReady)
}

// Article returns the final article, or nil before it is produced.
func (s *State) Article() *FinalArticle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.article
}

// MarkCancelled transitions to the terminal CANCELLED stage. Legal from any
// non-terminal stage; a no-op if already terminal.
func (s *State) MarkCancelled() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage.IsTerminal() {
		return
	}
	s.setStage(StageCancelled)
}

// MarkErrored transitions to the terminal ERRORED stage, retaining the
// last-successful stage's artifacts for UI inspection.
func (s *State) MarkErrored(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage.IsTerminal() {
		return
	}
	s.lastErr = err
	s.setStage(StageErrored)
}

// LastError returns the error that moved this state to ERRORED, if any.
func (s *State) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// EffectiveSearchQuery resolves the glossary's three-level fallback: the
// user's override, else the selected title's paired query, else the main
// keyword.
func (s *State) EffectiveSearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedTitle != nil && s.selectedTitle.EffectiveSearchQuery != "" {
		return s.selectedTitle.EffectiveSearchQuery
	}
	if s.selectedTitle != nil && s.selectedTitle.SearchQuery != "" {
		return s.selectedTitle.SearchQuery
	}
	return s.Keyword.MainKeyword
}
