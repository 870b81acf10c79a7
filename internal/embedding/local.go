package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// localProvider is a lightweight, deterministic embedder standing in for
// a local sentence-transformer process. It hashes byte 3-grams into a
// fixed-size vector and L2-normalizes the result, so cosine similarity
// between near-duplicate strings behaves sensibly without any network
// dependency. Used whenever no remote API key is configured (the remote
// provider then cannot be constructed), and in tests.
type localProvider struct {
	dim  int
	seed uint64
}

// NewLocal constructs the local deterministic embedder at the configured
// dimension (384 by default).
func NewLocal(dim int) Provider {
	if dim <= 0 {
		dim = 384
	}
	return &localProvider{dim: dim, seed: 0x5a4e5441524152}
}

func (p *localProvider) Name() string   { return "local-deterministic" }
func (p *localProvider) Dimension() int { return p.dim }
func (p *localProvider) Ping(context.Context) error { return nil }

func (p *localProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = p.embedOne(t)
	}
	return out, nil
}

func (p *localProvider) embedOne(s string) []float32 {
	v := make([]float32, p.dim)
	b := []byte(s)
	if len(b) == 0 {
		return v
	}
	if len(b) < 3 {
		p.accumulate(b, v)
	} else {
		for i := 0; i <= len(b)-3; i++ {
			p.accumulate(b[i:i+3], v)
		}
	}
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq > 0 {
		inv := float32(1.0 / math.Sqrt(sumSq))
		for i := range v {
			v[i] *= inv
		}
	}
	return v
}

func (p *localProvider) accumulate(gram []byte, v []float32) {
	h := fnv.New64a()
	var seedBytes [8]byte
	for i := range seedBytes {
		seedBytes[i] = byte(p.seed >> (8 * i))
	}
	_, _ = h.Write(seedBytes[:])
	_, _ = h.Write(gram)
	hv := h.Sum64()
	idx := int(hv % uint64(len(v)))
	weight := float32(int32(hv>>32)) / float32(1<<31)
	v[idx] += weight
}
