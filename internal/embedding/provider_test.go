package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalProviderDeterministicAndNormalized(t *testing.T) {
	p := NewLocal(64)
	ctx := context.Background()

	out1, err := p.EmbedBatch(ctx, []string{"KITAS renewal cost"})
	require.NoError(t, err)
	out2, err := p.EmbedBatch(ctx, []string{"KITAS renewal cost"})
	require.NoError(t, err)
	assert.Equal(t, out1, out2)
	assert.Len(t, out1[0], 64)

	var sumSq float64
	for _, x := range out1[0] {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sumSq, 1e-3)
}

func TestLocalProviderDistinguishesDifferentText(t *testing.T) {
	p := NewLocal(64)
	ctx := context.Background()
	a, _ := p.EmbedBatch(ctx, []string{"visa extension"})
	b, _ := p.EmbedBatch(ctx, []string{"tax filing deadline"})
	assert.NotEqual(t, a[0], b[0])
}

func TestGeneratorAppliesPrefixes(t *testing.T) {
	local := NewLocal(32)
	gen := NewGenerator(local, "passage: ", "query: ")

	docs, err := gen.EmbedDocuments(context.Background(), []string{"PT PMA setup"})
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	q, err := gen.EmbedQuery(context.Background(), "PT PMA setup")
	require.NoError(t, err)
	assert.NotEqual(t, docs[0], q, "embed and search prefixes should diverge the vectors")
	assert.Equal(t, 32, gen.Dimension())
}
