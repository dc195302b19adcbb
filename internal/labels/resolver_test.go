package labels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ppiankov/vigil/internal/wikidata"
)

// fakeLabelClient serves canned entities and records every batch it
// was asked for.
type fakeLabelClient struct {
	mu       sync.Mutex
	calls    [][]string
	entities map[string]*wikidata.Entity
	err      error
}

func (f *fakeLabelClient) Labels(ctx context.Context, ids []string, languages []string) (map[string]*wikidata.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), ids...))
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*wikidata.Entity)
	for _, id := range ids {
		if e, ok := f.entities[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (f *fakeLabelClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func termEntity(id, lang, label, description string) *wikidata.Entity {
	e := &wikidata.Entity{
		ID:     id,
		Labels: map[string]wikidata.Term{lang: {Language: lang, Value: label}},
	}
	if description != "" {
		e.Descriptions = map[string]wikidata.Term{lang: {Language: lang, Value: description}}
	}
	return e
}

func newTestResolver(client *fakeLabelClient) *Resolver {
	return NewResolver(client, []string{"en", "de"})
}

func TestResolve_ItemLabel(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{
		"Q5": termEntity("Q5", "en", "human", "common name of Homo sapiens"),
	}}
	resolver := newTestResolver(client)

	if label := resolver.Resolve(context.Background(), "Q5"); label != "human" {
		t.Errorf("Expected 'human', got %q", label)
	}
	if client.callCount() != 1 {
		t.Errorf("Expected 1 fetch, got %d", client.callCount())
	}
}

func TestResolve_PropertyLabel(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{
		"P106": termEntity("P106", "en", "occupation", "occupation of a person"),
	}}
	resolver := newTestResolver(client)

	if label := resolver.Resolve(context.Background(), "P106"); label != "occupation" {
		t.Errorf("Expected 'occupation', got %q", label)
	}
}

func TestResolve_CachePreventsDuplicateFetches(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{
		"Q5": termEntity("Q5", "en", "human", ""),
	}}
	resolver := newTestResolver(client)

	resolver.Resolve(context.Background(), "Q5")
	resolver.Resolve(context.Background(), "Q5")

	if client.callCount() != 1 {
		t.Errorf("Expected 1 fetch for repeated resolves, got %d", client.callCount())
	}
}

func TestResolve_FallbackToSecondLanguage(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{
		"Q5": termEntity("Q5", "de", "Mensch", "Bezeichnung"),
	}}
	resolver := newTestResolver(client)

	if label := resolver.Resolve(context.Background(), "Q5"); label != "Mensch [de]" {
		t.Errorf("Expected 'Mensch [de]', got %q", label)
	}
}

func TestResolve_CanonicalLanguageHasNoSuffix(t *testing.T) {
	entity := termEntity("Q5", "en", "human", "")
	entity.Labels["de"] = wikidata.Term{Language: "de", Value: "Mensch"}
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{"Q5": entity}}
	resolver := newTestResolver(client)

	if label := resolver.Resolve(context.Background(), "Q5"); label != "human" {
		t.Errorf("Expected plain 'human', got %q", label)
	}
}

func TestResolve_FallbackToIDWhenNoKnownLanguage(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{
		"Q5": termEntity("Q5", "xz", "something", ""),
	}}
	resolver := newTestResolver(client)

	if label := resolver.Resolve(context.Background(), "Q5"); label != "Q5" {
		t.Errorf("Expected fallback to ID, got %q", label)
	}
}

func TestResolve_FallbackToIDOnError(t *testing.T) {
	client := &fakeLabelClient{err: errors.New("API timeout")}
	resolver := newTestResolver(client)

	if label := resolver.Resolve(context.Background(), "Q99999"); label != "Q99999" {
		t.Errorf("Expected fallback to ID, got %q", label)
	}

	// The failure is cached too, so the ID is never retried.
	resolver.Resolve(context.Background(), "Q99999")
	if client.callCount() != 1 {
		t.Errorf("Expected 1 fetch after failure, got %d", client.callCount())
	}
}

func TestResolve_MissingEntityFallsBackToID(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{}}
	resolver := newTestResolver(client)

	if label := resolver.Resolve(context.Background(), "Q404"); label != "Q404" {
		t.Errorf("Expected ID for missing entity, got %q", label)
	}
}

func TestResolve_EmptyID(t *testing.T) {
	client := &fakeLabelClient{}
	resolver := newTestResolver(client)

	if label := resolver.Resolve(context.Background(), ""); label != "" {
		t.Errorf("Expected empty label for empty ID, got %q", label)
	}
	if client.callCount() != 0 {
		t.Errorf("Expected no fetch for empty ID, got %d", client.callCount())
	}
}

func TestPrime_PopulatesCache(t *testing.T) {
	client := &fakeLabelClient{}
	resolver := newTestResolver(client)

	resolver.Prime("Q5", "human", "common name of Homo sapiens")

	if label := resolver.Resolve(context.Background(), "Q5"); label != "human" {
		t.Errorf("Expected primed label, got %q", label)
	}
	if desc := resolver.ResolveDescription(context.Background(), "Q5"); desc != "common name of Homo sapiens" {
		t.Errorf("Expected primed description, got %q", desc)
	}
	if client.callCount() != 0 {
		t.Errorf("Expected no fetch after prime, got %d", client.callCount())
	}
}

func TestPrime_WithoutDescription(t *testing.T) {
	client := &fakeLabelClient{}
	resolver := newTestResolver(client)

	resolver.Prime("Q5", "human", "")

	if label := resolver.Resolve(context.Background(), "Q5"); label != "human" {
		t.Errorf("Expected 'human', got %q", label)
	}
	if desc := resolver.ResolveDescription(context.Background(), "Q5"); desc != "" {
		t.Errorf("Expected empty description, got %q", desc)
	}
}

func TestPrime_EmptyLabelFallsBackToID(t *testing.T) {
	client := &fakeLabelClient{}
	resolver := newTestResolver(client)

	resolver.Prime("Q7", "", "some description")

	if label := resolver.Resolve(context.Background(), "Q7"); label != "Q7" {
		t.Errorf("Expected ID for empty primed label, got %q", label)
	}
}

func TestResolveDescription_Fetches(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{
		"Q61037771": termEntity("Q61037771", "en", "car collision", "a traffic collision involving at least one car"),
	}}
	resolver := newTestResolver(client)

	desc := resolver.ResolveDescription(context.Background(), "Q61037771")
	if desc != "a traffic collision involving at least one car" {
		t.Errorf("Expected description, got %q", desc)
	}
}

func TestResolveDescription_EmptyWhenMissing(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{
		"Q12345": termEntity("Q12345", "en", "something", ""),
	}}
	resolver := newTestResolver(client)

	if desc := resolver.ResolveDescription(context.Background(), "Q12345"); desc != "" {
		t.Errorf("Expected empty description, got %q", desc)
	}
}

func TestResolveDescription_UsesCache(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{
		"Q5": termEntity("Q5", "en", "human", "common name"),
	}}
	resolver := newTestResolver(client)

	resolver.Resolve(context.Background(), "Q5")
	if desc := resolver.ResolveDescription(context.Background(), "Q5"); desc != "common name" {
		t.Errorf("Expected 'common name', got %q", desc)
	}
	if client.callCount() != 1 {
		t.Errorf("Expected 1 fetch for label and description, got %d", client.callCount())
	}
}

func TestResolveBatch_ChunksAtAPICap(t *testing.T) {
	entities := make(map[string]*wikidata.Entity)
	ids := make([]string, 120)
	for i := range ids {
		id := fmt.Sprintf("Q%d", i+1)
		ids[i] = id
		entities[id] = termEntity(id, "en", fmt.Sprintf("label %d", i+1), "")
	}
	client := &fakeLabelClient{entities: entities}
	resolver := newTestResolver(client)

	resolver.ResolveBatch(context.Background(), ids)

	client.mu.Lock()
	calls := client.calls
	client.mu.Unlock()

	if len(calls) != 3 {
		t.Fatalf("Expected 3 chunks for 120 IDs, got %d", len(calls))
	}
	seen := make(map[string]bool)
	for _, call := range calls {
		if len(call) > wikidata.MaxBatchIDs {
			t.Errorf("Expected chunks of at most %d, got %d", wikidata.MaxBatchIDs, len(call))
		}
		for _, id := range call {
			if seen[id] {
				t.Errorf("Expected %s fetched once, got it twice", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != 120 {
		t.Errorf("Expected all 120 IDs fetched, got %d", len(seen))
	}

	// Everything is now a cache hit.
	if label := resolver.Resolve(context.Background(), "Q7"); label != "label 7" {
		t.Errorf("Expected 'label 7', got %q", label)
	}
	if client.callCount() != 3 {
		t.Errorf("Expected no extra fetch after batch, got %d", client.callCount())
	}
	if resolver.Size() != 120 {
		t.Errorf("Expected 120 cached entries, got %d", resolver.Size())
	}
}

func TestResolveBatch_SkipsCachedAndDuplicates(t *testing.T) {
	client := &fakeLabelClient{entities: map[string]*wikidata.Entity{
		"Q2": termEntity("Q2", "en", "Earth", ""),
	}}
	resolver := newTestResolver(client)
	resolver.Prime("Q1", "universe", "")

	resolver.ResolveBatch(context.Background(), []string{"Q1", "Q2", "Q2", ""})

	client.mu.Lock()
	calls := client.calls
	client.mu.Unlock()

	if len(calls) != 1 {
		t.Fatalf("Expected 1 fetch, got %d", len(calls))
	}
	if len(calls[0]) != 1 || calls[0][0] != "Q2" {
		t.Errorf("Expected only Q2 fetched, got %v", calls[0])
	}
}

func TestResolveBatch_AllCached(t *testing.T) {
	client := &fakeLabelClient{}
	resolver := newTestResolver(client)
	resolver.Prime("Q1", "universe", "")

	resolver.ResolveBatch(context.Background(), []string{"Q1"})

	if client.callCount() != 0 {
		t.Errorf("Expected no fetch for cached batch, got %d", client.callCount())
	}
}
