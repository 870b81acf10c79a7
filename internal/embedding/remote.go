package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"zantaracore/internal/config"
	"zantaracore/internal/errs"
)

// remoteProvider calls an OpenAI-compatible embeddings endpoint. It is
// fixed at 1536 dimensions, matching text-embedding-3-small and the
// vector columns provisioned for the domain collections.
type remoteProvider struct {
	client openai.Client
	model  string
	dim    int
}

// NewRemote constructs the remote embedding provider. It returns a
// config error rather than a working provider if no API key is set,
// since a silently-degraded remote provider would poison every
// downstream vector with zero-value embeddings.
func NewRemote(cfg config.EmbeddingConfig) (Provider, error) {
	if cfg.RemoteAPIKey == "" {
		return nil, &config.ConfigError{Field: "embeddings.remote_api_key", Msg: "required for the remote embedding provider"}
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.RemoteAPIKey)}
	if cfg.RemoteHost != "" {
		opts = append(opts, option.WithBaseURL(cfg.RemoteHost))
	}
	client := openai.NewClient(opts...)
	dim := cfg.RemoteDimensions
	if dim <= 0 {
		dim = 1536
	}
	return &remoteProvider{client: client, model: cfg.RemoteModel, dim: dim}, nil
}

func (r *remoteProvider) Name() string   { return r.model }
func (r *remoteProvider) Dimension() int { return r.dim }

func (r *remoteProvider) Ping(ctx context.Context) error {
	_, err := r.EmbedBatch(ctx, []string{"ping"})
	if err != nil {
		return fmt.Errorf("embedding provider unreachable: %w", err)
	}
	return nil
}

func (r *remoteProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := r.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      r.model,
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions: openai.Int(int64(r.dim)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings request: %v", errs.ErrUpstreamUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("unexpected embedding count: got %d, want %d", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		out[i] = vec
	}
	return out, nil
}
