package embedding

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sagemind/noteai/internal/apperr"
)

// DefaultDimensions is the output size of text-embedding-3-small.
const DefaultDimensions = 1536

// OpenAIEmbedder produces embeddings via the OpenAI API. Calls are
// blocking, synchronous round-trips; failures are wrapped as
// *apperr.ProviderError for the caller to isolate per file or per query.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIEmbedder creates an embedder for the given model. An empty
// model selects text-embedding-3-small.
func NewOpenAIEmbedder(apiKey, model string, dimensions int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &OpenAIEmbedder{
		client:     openai.NewClient(apiKey),
		model:      openai.EmbeddingModel(model),
		dimensions: dimensions,
	}, nil
}

// Embed returns the embedding vector for text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, &apperr.ProviderError{Op: "embed", Err: errors.New("empty text")}
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: e.model,
		Input: []string{text},
	})
	if err != nil {
		return nil, &apperr.ProviderError{Op: "embed", Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &apperr.ProviderError{Op: "embed", Err: errors.New("no embedding returned")}
	}
	return resp.Data[0].Embedding, nil
}

// Dimensions returns the embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}
