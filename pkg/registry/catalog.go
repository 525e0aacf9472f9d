package registry

// Provider is the closed set of LLM providers the gateway dispatches to.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

// Role is a purpose a model is selected for. The core pipeline only ever
// dispatches "summary" (title ideation, curation, summarization) and
// "writing" (final article generation) calls; "image" is part of the
// ProviderGateway surface but unused by the core stages.
type Role string

const (
	RoleSummary Role = "summary"
	RoleWriting Role = "writing"
	RoleImage   Role = "image"
)

// ModelEntry is one catalog row: a UI-facing display name mapped to the
// wire-level model id, its provider, its intended role, a default output
// token cap, and whether it is cheap enough to use for smoke/API tests.
type ModelEntry struct {
	DisplayName    string
	ID             string
	Provider       Provider
	Role           Role
	DefaultMaxTokens int
	IsTestCandidate  bool
}

// ModelCatalog is the process-wide immutable registry of known models.
// ProviderGateway.GenerateText takes a display name and resolves it here
// through Lookup.
type ModelCatalog struct {
	base *BaseRegistry[ModelEntry]
}

// NewModelCatalog builds the catalog from a fixed entry list. Construction
// happens once at process start; the result is read-only thereafter.
func NewModelCatalog(entries []ModelEntry) *ModelCatalog {
	base := NewBaseRegistry[ModelEntry]()
	for _, e := range entries {
		// Panics on a duplicate display name: in the static table that is a
		// programming error caught at startup, not a runtime condition.
		if err := base.Register(e.DisplayName, e); err != nil {
			panic("registry: " + err.Error())
		}
	}
	return &ModelCatalog{base: base}
}

// Lookup resolves a UI display name to its catalog entry. The second return
// value is false for unknown names; the gateway logs a warning for those
// and returns a provider error.
func (c *ModelCatalog) Lookup(displayName string) (ModelEntry, bool) {
	return c.base.Get(displayName)
}

// All returns every registered entry, in no particular order.
func (c *ModelCatalog) All() []ModelEntry {
	return c.base.List()
}

// DefaultCatalog returns the catalog of currently supported models.
func DefaultCatalog() *ModelCatalog {
	return NewModelCatalog([]ModelEntry{
		{
			DisplayName:      "Claude Sonnet 4 (유료, 최신 고품질)",
			ID:               "claude-sonnet-4-20250514",
			Provider:         ProviderAnthropic,
			Role:             RoleWriting,
			DefaultMaxTokens: 8192,
		},
		{
			DisplayName:      "Claude 3.5 Haiku (유료, 빠름)",
			ID:               "claude-3-5-haiku-20241022",
			Provider:         ProviderAnthropic,
			Role:             RoleSummary,
			DefaultMaxTokens: 8192,
			IsTestCandidate:  true,
		},
		{
			DisplayName:      "GPT-5 (유료, 최고 성능)",
			ID:               "gpt-5",
			Provider:         ProviderOpenAI,
			Role:             RoleWriting,
			DefaultMaxTokens: 10000,
		},
		{
			DisplayName:      "GPT-5 Nano (유료, 고효율)",
			ID:               "gpt-5-nano",
			Provider:         ProviderOpenAI,
			Role:             RoleSummary,
			DefaultMaxTokens: 6000,
			IsTestCandidate:  true,
		},
		{
			DisplayName:      "Gemini 2.5 Pro (유료, 최고성능)",
			ID:               "gemini-2.5-pro-preview",
			Provider:         ProviderGemini,
			Role:             RoleWriting,
			DefaultMaxTokens: 8192,
		},
		{
			DisplayName:      "Gemini 2.0 Flash (부분무료, 고효율)",
			ID:               "gemini-2.0-flash-preview",
			Provider:         ProviderGemini,
			Role:             RoleSummary,
			DefaultMaxTokens: 8192,
			IsTestCandidate:  true,
		},
	})
}

// IsReasoningFamily reports whether an OpenAI model id belongs to the
// "reasoning" family, which rejects temperature and uses
// max_completion_tokens in place of max_tokens.
func IsReasoningFamily(modelID string) bool {
	for _, prefix := range []string{"gpt-5", "o1", "o3", "o4"} {
		if len(modelID) >= len(prefix) && modelID[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
