package registry

import "testing"

func TestDefaultCatalogLookup(t *testing.T) {
	cat := DefaultCatalog()

	entry, ok := cat.Lookup("GPT-5 (유료, 최고 성능)")
	if !ok {
		t.Fatal("expected known display name to resolve")
	}
	if entry.ID != "gpt-5" || entry.Provider != ProviderOpenAI {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestDefaultCatalogUnknownNameMisses(t *testing.T) {
	cat := DefaultCatalog()
	_, ok := cat.Lookup("some model nobody registered")
	if ok {
		t.Fatal("expected unknown display name to miss")
	}
}

func TestIsReasoningFamily(t *testing.T) {
	cases := map[string]bool{
		"gpt-5":      true,
		"gpt-5-mini": true,
		"gpt-5-nano": true,
		"o1-preview": true,
		"o3-mini":    true,
		"o4-mini":    true,
		"gpt-4o":     false,
		"gpt-4":      false,
		"gpt-3.5-turbo": false,
	}
	for id, want := range cases {
		if got := IsReasoningFamily(id); got != want {
			t.Errorf("IsReasoningFamily(%q) = %v, want %v", id, got, want)
		}
	}
}
