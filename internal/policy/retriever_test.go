package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps known texts to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			v = []float32{0, 0, 0}
		}
		out[i] = v
	}
	return out, nil
}

func TestSplitSections(t *testing.T) {
	docs := SplitSections("# Title\n\nintro\n\n## A\n\nbody a\n\n## B\n\nbody b\n")
	require.Len(t, docs, 2)
	assert.Contains(t, docs[0], "body a")
	assert.Contains(t, docs[1], "body b")
}

func TestSplitSectionsEmbeddedFAQ(t *testing.T) {
	docs := SplitSections(faqText)
	require.NotEmpty(t, docs)
	for _, d := range docs {
		assert.True(t, len(d) > 0)
	}
}

func TestQueryRanksBySimilarity(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"cancellation policy": {1, 0, 0},
		"baggage allowance":   {0, 1, 0},
		"pets in cabin":       {0, 0, 1},
		"can I cancel?":       {0.9, 0.1, 0},
	}}
	r, err := NewRetriever(context.Background(), emb, []string{
		"cancellation policy", "baggage allowance", "pets in cabin",
	})
	require.NoError(t, err)

	docs, err := r.Query(context.Background(), "can I cancel?", 2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "cancellation policy", docs[0])
}

func TestQueryClampsK(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{"a": {1}, "b": {0.5}}}
	r, err := NewRetriever(context.Background(), emb, []string{"a", "b"})
	require.NoError(t, err)

	docs, err := r.Query(context.Background(), "a", 10)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestNewRetrieverRequiresDocs(t *testing.T) {
	_, err := NewRetriever(context.Background(), &fakeEmbedder{}, nil)
	require.Error(t, err)
}
