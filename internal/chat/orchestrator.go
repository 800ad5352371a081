package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sagemind/noteai/internal/embedding"
	"github.com/sagemind/noteai/internal/vectorstore"
)

const (
	// DefaultHistorySize bounds the conversation turns kept in memory.
	DefaultHistorySize = 20

	// DefaultTopK is the candidate count requested from the store.
	DefaultTopK = 5
)

// listKeywords mark a query as a listing request, which is served from a
// full enumeration of the store rather than similarity search.
var listKeywords = []string{"list", "show", "what notes", "all notes", "enumerate"}

// Orchestrator answers questions over indexed notes: it embeds the query,
// retrieves and filters candidate notes, and hands the ranked context to a
// Generator. It also keeps a bounded conversation history.
type Orchestrator struct {
	embedder  embedding.Embedder
	store     vectorstore.Store
	generator Generator
	topK      int
	minScore  float64
	logger    *zap.Logger

	mu          sync.Mutex
	history     []Message
	historySize int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTopK sets how many candidates are requested from the store.
func WithTopK(k int) Option {
	return func(o *Orchestrator) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithMinScore sets the similarity threshold below which candidates are
// discarded. Zero keeps everything.
func WithMinScore(s float64) Option {
	return func(o *Orchestrator) { o.minScore = s }
}

// WithHistorySize bounds the number of conversation turns retained.
func WithHistorySize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.historySize = n
		}
	}
}

// NewOrchestrator wires an embedder, store, and generator together.
func NewOrchestrator(embedder embedding.Embedder, store vectorstore.Store, generator Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		embedder:    embedder,
		store:       store,
		generator:   generator,
		topK:        DefaultTopK,
		historySize: DefaultHistorySize,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Retrieve embeds the query and returns the relevant notes, filtered by
// the minimum score and deduplicated by source file, best match first.
func (o *Orchestrator) Retrieve(ctx context.Context, query string) ([]vectorstore.SearchHit, error) {
	emb, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := o.store.Search(ctx, emb, o.topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	// The store already dedupes and orders; filtering here must not
	// disturb either property.
	seen := make(map[string]struct{}, len(hits))
	filtered := hits[:0]
	for _, h := range hits {
		if h.Score < o.minScore {
			continue
		}
		if _, dup := seen[h.FilePath]; dup {
			continue
		}
		seen[h.FilePath] = struct{}{}
		filtered = append(filtered, h)
	}
	return filtered, nil
}

// Ask answers a query. Listing queries enumerate every indexed note;
// everything else goes through similarity retrieval and grounded
// generation. The exchange is recorded in history only on success.
func (o *Orchestrator) Ask(ctx context.Context, query string) (string, error) {
	var (
		answer string
		err    error
	)
	if IsListQuery(query) {
		answer, err = o.askListing(ctx, query)
	} else {
		answer, err = o.askGrounded(ctx, query)
	}
	if err != nil {
		return "", err
	}
	o.recordExchange(query, answer)
	return answer, nil
}

func (o *Orchestrator) askListing(ctx context.Context, query string) (string, error) {
	summaries, err := o.store.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("list notes: %w", err)
	}
	if len(summaries) == 0 {
		return "You don't have any notes yet.", nil
	}
	answer, err := o.generator.Enumerate(ctx, query, summaries)
	if err != nil {
		return "", fmt.Errorf("generate listing: %w", err)
	}
	return answer, nil
}

func (o *Orchestrator) askGrounded(ctx context.Context, query string) (string, error) {
	notes, err := o.Retrieve(ctx, query)
	if err != nil {
		return "", err
	}
	o.logger.Debug("retrieved context",
		zap.String("query", query),
		zap.Int("notes", len(notes)))
	answer, err := o.generator.Answer(ctx, query, notes, o.History())
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// History returns a copy of the retained conversation turns.
func (o *Orchestrator) History() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.history))
	copy(out, o.history)
	return out
}

// ClearHistory drops all retained conversation turns.
func (o *Orchestrator) ClearHistory() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = nil
}

func (o *Orchestrator) recordExchange(query, answer string) {
	now := time.Now()
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history,
		Message{Role: "user", Content: query, Timestamp: now},
		Message{Role: "assistant", Content: answer, Timestamp: now},
	)
	if over := len(o.history) - o.historySize; over > 0 {
		o.history = o.history[over:]
	}
}

// IsListQuery reports whether the query asks for an enumeration of notes
// rather than an answer grounded in their content.
func IsListQuery(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range listKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
