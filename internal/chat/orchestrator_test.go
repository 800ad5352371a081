package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sagemind/noteai/internal/vectorstore"
)

// stubGenerator records calls and returns canned answers.
type stubGenerator struct {
	answerCalls    int
	enumerateCalls int
	lastNotes      []vectorstore.SearchHit
	lastHistory    []Message
	fail           bool
}

func (g *stubGenerator) Answer(ctx context.Context, query string, notes []vectorstore.SearchHit, history []Message) (string, error) {
	g.answerCalls++
	g.lastNotes = notes
	g.lastHistory = history
	if g.fail {
		return "", errors.New("provider down")
	}
	return "answer to " + query, nil
}

func (g *stubGenerator) Enumerate(ctx context.Context, query string, summaries []vectorstore.Summary) (string, error) {
	g.enumerateCalls++
	if g.fail {
		return "", errors.New("provider down")
	}
	titles := make([]string, len(summaries))
	for i, s := range summaries {
		titles[i] = s.Title
	}
	return strings.Join(titles, ", "), nil
}

func (g *stubGenerator) SuggestTitle(ctx context.Context, content string) string { return "Untitled Note" }
func (g *stubGenerator) SuggestTags(ctx context.Context, content string) []string { return nil }

// stubStore serves fixed hits and summaries without a database.
type stubStore struct {
	vectorstore.Store
	hits        []vectorstore.SearchHit
	summaries   []vectorstore.Summary
	searchCalls int
	listCalls   int
}

func (s *stubStore) Search(ctx context.Context, emb []float32, limit int) ([]vectorstore.SearchHit, error) {
	s.searchCalls++
	return s.hits, nil
}

func (s *stubStore) ListAll(ctx context.Context) ([]vectorstore.Summary, error) {
	s.listCalls++
	return s.summaries, nil
}

// stubEmbedder counts calls so tests can assert the listing path never
// embeds.
type stubEmbedder struct {
	calls int
	fail  bool
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("embedding unavailable")
	}
	return []float32{1, 0, 0}, nil
}

func (e *stubEmbedder) Dimensions() int { return 3 }

func hit(title, path string, score float64) vectorstore.SearchHit {
	return vectorstore.SearchHit{Title: title, Content: title + " body", FilePath: path, Score: score}
}

func TestIsListQuery(t *testing.T) {
	cases := []struct {
		query string
		want  bool
	}{
		{"list my notes", true},
		{"Show me everything", true},
		{"what notes do I have?", true},
		{"please enumerate them", true},
		{"give me all notes", true},
		{"how do I configure zsh?", false},
		{"when is the meeting", false},
	}
	for _, tc := range cases {
		if got := IsListQuery(tc.query); got != tc.want {
			t.Errorf("IsListQuery(%q) = %v, want %v", tc.query, got, tc.want)
		}
	}
}

func TestRetrieve_filtersByMinScore(t *testing.T) {
	store := &stubStore{hits: []vectorstore.SearchHit{
		hit("high", "/v/high.md", 0.9),
		hit("mid", "/v/mid.md", 0.5),
		hit("low", "/v/low.md", 0.1),
	}}
	o := NewOrchestrator(&stubEmbedder{}, store, &stubGenerator{}, WithMinScore(0.3))

	notes, err := o.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if notes[0].Title != "high" || notes[1].Title != "mid" {
		t.Errorf("notes = %+v, want high then mid", notes)
	}
}

func TestRetrieve_dedupesByFilePath(t *testing.T) {
	store := &stubStore{hits: []vectorstore.SearchHit{
		hit("first", "/v/same.md", 0.9),
		hit("second", "/v/same.md", 0.8),
		hit("other", "/v/other.md", 0.7),
	}}
	o := NewOrchestrator(&stubEmbedder{}, store, &stubGenerator{})

	notes, err := o.Retrieve(context.Background(), "query")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("got %d notes, want 2", len(notes))
	}
	if notes[0].Title != "first" || notes[1].Title != "other" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestRetrieve_embedFailure(t *testing.T) {
	o := NewOrchestrator(&stubEmbedder{fail: true}, &stubStore{}, &stubGenerator{})
	if _, err := o.Retrieve(context.Background(), "query"); err == nil {
		t.Error("expected error when query embedding fails")
	}
}

func TestAsk_groundedPath(t *testing.T) {
	gen := &stubGenerator{}
	emb := &stubEmbedder{}
	store := &stubStore{hits: []vectorstore.SearchHit{hit("zsh", "/v/zsh.md", 0.8)}}
	o := NewOrchestrator(emb, store, gen)

	answer, err := o.Ask(context.Background(), "how do I configure zsh?")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "answer to how do I configure zsh?" {
		t.Errorf("answer = %q", answer)
	}
	if gen.answerCalls != 1 || gen.enumerateCalls != 0 {
		t.Errorf("answer calls = %d, enumerate calls = %d", gen.answerCalls, gen.enumerateCalls)
	}
	if len(gen.lastNotes) != 1 || gen.lastNotes[0].Title != "zsh" {
		t.Errorf("context notes = %+v", gen.lastNotes)
	}
}

func TestAsk_listingBypassesSimilaritySearch(t *testing.T) {
	gen := &stubGenerator{}
	emb := &stubEmbedder{}
	store := &stubStore{summaries: []vectorstore.Summary{
		{Title: "Alpha", Preview: "a"},
		{Title: "Beta", Preview: "b"},
	}}
	o := NewOrchestrator(emb, store, gen)

	answer, err := o.Ask(context.Background(), "list my notes")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "Alpha, Beta" {
		t.Errorf("answer = %q", answer)
	}
	if emb.calls != 0 {
		t.Errorf("listing query embedded %d times, want 0", emb.calls)
	}
	if store.searchCalls != 0 || store.listCalls != 1 {
		t.Errorf("search calls = %d, list calls = %d", store.searchCalls, store.listCalls)
	}
}

func TestAsk_listingEmptyStore(t *testing.T) {
	gen := &stubGenerator{}
	o := NewOrchestrator(&stubEmbedder{}, &stubStore{}, gen)

	answer, err := o.Ask(context.Background(), "list my notes")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(answer, "any notes") {
		t.Errorf("answer = %q", answer)
	}
	if gen.enumerateCalls != 0 {
		t.Error("generator called for empty store")
	}
}

func TestAsk_generatorFailureLeavesHistoryClean(t *testing.T) {
	gen := &stubGenerator{fail: true}
	o := NewOrchestrator(&stubEmbedder{}, &stubStore{}, gen)

	if _, err := o.Ask(context.Background(), "anything at all?"); err == nil {
		t.Fatal("expected error from failing generator")
	}
	if len(o.History()) != 0 {
		t.Errorf("history = %+v, want empty after failure", o.History())
	}
}

func TestAsk_recordsHistory(t *testing.T) {
	o := NewOrchestrator(&stubEmbedder{}, &stubStore{}, &stubGenerator{})
	ctx := context.Background()

	if _, err := o.Ask(ctx, "first question?"); err != nil {
		t.Fatal(err)
	}
	h := o.History()
	if len(h) != 2 {
		t.Fatalf("history length = %d, want 2", len(h))
	}
	if h[0].Role != "user" || h[0].Content != "first question?" {
		t.Errorf("history[0] = %+v", h[0])
	}
	if h[1].Role != "assistant" {
		t.Errorf("history[1] = %+v", h[1])
	}
}

func TestAsk_historyIsBounded(t *testing.T) {
	o := NewOrchestrator(&stubEmbedder{}, &stubStore{}, &stubGenerator{}, WithHistorySize(4))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := o.Ask(ctx, fmt.Sprintf("question %d?", i)); err != nil {
			t.Fatal(err)
		}
	}
	h := o.History()
	if len(h) != 4 {
		t.Fatalf("history length = %d, want 4", len(h))
	}
	if h[0].Content != "question 3?" {
		t.Errorf("oldest retained turn = %q, want question 3?", h[0].Content)
	}
}

func TestClearHistory(t *testing.T) {
	o := NewOrchestrator(&stubEmbedder{}, &stubStore{}, &stubGenerator{})
	if _, err := o.Ask(context.Background(), "hello?"); err != nil {
		t.Fatal(err)
	}
	o.ClearHistory()
	if len(o.History()) != 0 {
		t.Error("history not cleared")
	}
}

func TestAsk_priorTurnsReachGenerator(t *testing.T) {
	gen := &stubGenerator{}
	o := NewOrchestrator(&stubEmbedder{}, &stubStore{}, gen)
	ctx := context.Background()

	if _, err := o.Ask(ctx, "question one?"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Ask(ctx, "question two?"); err != nil {
		t.Fatal(err)
	}
	if len(gen.lastHistory) != 2 {
		t.Fatalf("generator saw %d history turns, want 2", len(gen.lastHistory))
	}
	if gen.lastHistory[0].Content != "question one?" {
		t.Errorf("history[0] = %+v", gen.lastHistory[0])
	}
}
