package labels

import (
	"context"
	"sync"

	"github.com/ppiankov/vigil/internal/wikidata"
	"github.com/ppiankov/vigil/internal/worker"
)

// LabelClient is the slice of the Wikidata client the resolver needs
type LabelClient interface {
	Labels(ctx context.Context, ids []string, languages []string) (map[string]*wikidata.Entity, error)
}

type entry struct {
	label       string
	description string
}

// Resolver is the shared label cache for one run. One instance is
// created per run and passed by reference into every enrichment call.
// It grows monotonically: entries are never evicted, and a failed
// lookup caches the ID itself as the label, so no ID is fetched twice
// and resolution never raises.
type Resolver struct {
	client    LabelClient
	languages []string // preference order; first entry is canonical

	mu      sync.Mutex
	entries map[string]entry
}

// NewResolver creates an empty resolver. The first language is the
// canonical one; labels found in a later language are marked
// "<label> [<lang>]".
func NewResolver(client LabelClient, languages []string) *Resolver {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &Resolver{
		client:    client,
		languages: languages,
		entries:   make(map[string]entry),
	}
}

// Resolve returns the display label for an entity or property ID.
// A miss triggers a batch of one; any failure falls back to the ID.
func (r *Resolver) Resolve(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}

	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		r.mu.Unlock()
		return e.label
	}
	r.mu.Unlock()

	r.ResolveBatch(ctx, []string{id})

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		return e.label
	}
	return id
}

// ResolveDescription returns the description for an ID, or the empty
// string when none is available.
func (r *Resolver) ResolveDescription(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}

	r.mu.Lock()
	if e, ok := r.entries[id]; ok {
		r.mu.Unlock()
		return e.description
	}
	r.mu.Unlock()

	r.ResolveBatch(ctx, []string{id})

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id].description
}

// Prime seeds an entry directly, bypassing any fetch. The edited
// entity's own terms come from the revision JSON already in hand.
func (r *Resolver) Prime(id, label, description string) {
	if id == "" {
		return
	}
	if label == "" {
		label = id
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = entry{label: label, description: description}
}

// Size reports how many IDs are cached
func (r *Resolver) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// ResolveBatch bulk-resolves every uncached ID, chunked at the API cap.
// After it returns, Resolve for any requested ID is a pure cache hit.
// A failed chunk caches each of its still-uncached IDs as its own
// label; the run degrades instead of raising.
func (r *Resolver) ResolveBatch(ctx context.Context, ids []string) {
	uncached := r.filterUncached(ids)
	if len(uncached) == 0 {
		return
	}

	chunks := worker.ChunkStrings(uncached, wikidata.MaxBatchIDs)

	if len(chunks) == 1 {
		r.merge(chunks[0], r.fetchChunk(ctx, chunks[0]))
		return
	}

	pool := worker.NewPool(poolWorkers(len(chunks)))
	pool.Start(ctx)
	for _, chunk := range chunks {
		pool.Submit(&chunkJob{resolver: r, ids: chunk})
	}
	for _, res := range pool.Wait() {
		cr := res.(*chunkResult)
		r.merge(cr.ids, cr)
	}
}

// filterUncached returns the deduplicated IDs not yet in the cache
func (r *Resolver) filterUncached(ids []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(ids))
	var uncached []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := r.entries[id]; !ok {
			uncached = append(uncached, id)
		}
	}
	return uncached
}

func (r *Resolver) fetchChunk(ctx context.Context, ids []string) *chunkResult {
	entities, err := r.client.Labels(ctx, ids, r.languages)
	return &chunkResult{ids: ids, entities: entities, err: err}
}

// merge folds one chunk's outcome into the cache
func (r *Resolver) merge(ids []string, cr *chunkResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.entries[id]; ok {
			continue
		}
		e := entry{label: id}
		if cr.err == nil {
			if ent, ok := cr.entities[id]; ok {
				e = r.termsToEntry(id, ent)
			}
		}
		r.entries[id] = e
	}
}

// termsToEntry applies the language preference policy to fetched terms
func (r *Resolver) termsToEntry(id string, e *wikidata.Entity) entry {
	out := entry{}
	for i, lang := range r.languages {
		if label, ok := e.Label(lang); ok {
			if i == 0 {
				out.label = label
			} else {
				out.label = label + " [" + lang + "]"
			}
			break
		}
	}
	if out.label == "" {
		out.label = id
	}
	for _, lang := range r.languages {
		if desc, ok := e.Description(lang); ok {
			out.description = desc
			break
		}
	}
	return out
}

func poolWorkers(chunks int) int {
	if chunks < 4 {
		return chunks
	}
	return 4
}

// chunkJob fetches one ID chunk on the shared worker pool
type chunkJob struct {
	resolver *Resolver
	ids      []string
}

func (j *chunkJob) Execute(ctx context.Context) worker.Result {
	return j.resolver.fetchChunk(ctx, j.ids)
}

type chunkResult struct {
	ids      []string
	entities map[string]*wikidata.Entity
	err      error
}

func (r *chunkResult) GetError() error {
	return r.err
}
