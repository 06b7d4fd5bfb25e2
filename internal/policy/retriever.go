// Package policy provides an embedding-based retriever over the airline's
// customer policy FAQ. The primary assistant consults it before any booking
// change is made.
package policy

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"google.golang.org/genai"

	logx "github.com/tripdesk/server/pkg/logger"
)

//go:embed faq.md
var faqText string

// Embedder turns texts into vectors. Satisfied by GenAIEmbedder; tests supply
// a deterministic fake.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GenAIEmbedder embeds texts with the Gemini embedding API.
type GenAIEmbedder struct {
	client *genai.Client
	model  string
}

func NewGenAIEmbedder(client *genai.Client, model string) *GenAIEmbedder {
	return &GenAIEmbedder{client: client, model: model}
}

func (e *GenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}
	res, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(res.Embeddings), len(texts))
	}
	vectors := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// Retriever answers policy questions by dot-product similarity over
// pre-embedded FAQ sections.
type Retriever struct {
	embedder Embedder
	docs     []string
	vectors  [][]float32
}

var sectionSplit = regexp.MustCompile(`(?m)^##\s`)

// SplitSections breaks a markdown FAQ into one document per "## " heading.
// Text before the first heading is dropped.
func SplitSections(md string) []string {
	var docs []string
	indices := sectionSplit.FindAllStringIndex(md, -1)
	for i, loc := range indices {
		end := len(md)
		if i+1 < len(indices) {
			end = indices[i+1][0]
		}
		if doc := strings.TrimSpace(md[loc[0]:end]); doc != "" {
			docs = append(docs, doc)
		}
	}
	return docs
}

// NewRetriever embeds the given documents up front. Construction fails fast
// when the embedding backend is misconfigured, rather than on first query.
func NewRetriever(ctx context.Context, embedder Embedder, docs []string) (*Retriever, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no policy documents to index")
	}
	vectors, err := embedder.Embed(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("index policy documents: %w", err)
	}
	logx.Debug().Int("documents", len(docs)).Msg("policy retriever indexed")
	return &Retriever{embedder: embedder, docs: docs, vectors: vectors}, nil
}

// NewFAQRetriever indexes the embedded airline FAQ.
func NewFAQRetriever(ctx context.Context, embedder Embedder) (*Retriever, error) {
	return NewRetriever(ctx, embedder, SplitSections(faqText))
}

// Query returns the k most similar policy sections for the question, most
// similar first.
func (r *Retriever) Query(ctx context.Context, question string, k int) ([]string, error) {
	if k <= 0 || k > len(r.docs) {
		k = len(r.docs)
	}
	qv, err := r.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed policy query: %w", err)
	}

	type scored struct {
		idx   int
		score float32
	}
	scores := make([]scored, len(r.vectors))
	for i, dv := range r.vectors {
		scores[i] = scored{idx: i, score: dot(qv[0], dv)}
	}
	sort.Slice(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	out := make([]string, 0, k)
	for _, s := range scores[:k] {
		out = append(out, r.docs[s.idx])
	}
	return out, nil
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
