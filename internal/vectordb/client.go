// Package vectordb wraps Qdrant with the named dense+sparse vector
// layout, filter DSL, and retry policy the retrieval service needs:
// hybrid RRF prefetch search across collections, a small $in/$ne/$nin
// filter language, and exponential backoff on 5xx responses while 4xx
// responses are treated as "no results" rather than retried.
package vectordb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"zantaracore/internal/errs"
)

// PayloadIDField stores the caller-supplied point id when it is not
// itself a UUID, following the teacher's deterministic-UUID convention.
const PayloadIDField = "_original_id"

const (
	VectorDense = "dense"
	VectorSparse = "bm25"
)

// Client is a thin, collection-parametrized Qdrant wrapper. Unlike a
// one-struct-per-collection client, a single Client instance serves the
// whole multi-collection router.
type Client struct {
	raw        *qdrant.Client
	maxRetries int
	backoff    time.Duration
}

// Config carries the DSN components used to dial Qdrant.
type Config struct {
	Host       string
	APIKey     string
	UseTLS     bool
	MaxRetries int
	Backoff    time.Duration
}

// New dials Qdrant. host may be a bare "host:port" or a full DSN
// ("http://host:6334?api_key=...").
func New(cfg Config) (*Client, error) {
	host, port, useTLS, apiKey, err := parseEndpoint(cfg.Host)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey != "" {
		apiKey = cfg.APIKey
	}
	if cfg.UseTLS {
		useTLS = true
	}
	raw, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		UseTLS: useTLS,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Client{raw: raw, maxRetries: retries, backoff: backoff}, nil
}

func parseEndpoint(dsn string) (host string, port int, useTLS bool, apiKey string, err error) {
	if !strings.Contains(dsn, "://") {
		dsn = "http://" + dsn
	}
	u, perr := url.Parse(dsn)
	if perr != nil {
		return "", 0, false, "", fmt.Errorf("parse qdrant endpoint: %w", perr)
	}
	host = u.Hostname()
	if host == "" {
		host = "localhost"
	}
	portStr := u.Port()
	if portStr == "" {
		portStr = "6334"
	}
	portNum, perr := strconv.Atoi(portStr)
	if perr != nil {
		return "", 0, false, "", fmt.Errorf("invalid qdrant port: %w", perr)
	}
	return host, portNum, u.Scheme == "https", u.Query().Get("api_key"), nil
}

func (c *Client) Close() error { return c.raw.Close() }

// EnsureCollection creates the named collection with dense+sparse named
// vectors if it does not already exist.
func (c *Client) EnsureCollection(ctx context.Context, name string, denseDim int) error {
	exists, err := c.raw.CollectionExists(ctx, name)
	if err != nil {
		return c.classify(err)
	}
	if exists {
		return nil
	}
	if denseDim <= 0 {
		return fmt.Errorf("%w: collection %q requires dimensions > 0", errs.ErrConfig, name)
	}
	err = c.raw.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			VectorDense: {Size: uint64(denseDim), Distance: qdrant.Distance_Cosine},
		}),
		SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
			VectorSparse: {},
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", name, c.classify(err))
	}
	return nil
}

// Upsert stores a dense vector (and optional sparse terms) under id with
// the given metadata payload.
func (c *Client) Upsert(ctx context.Context, collection, id string, dense []float32, sparse map[uint32]float32, metadata map[string]any) error {
	pointID, original := resolvePointID(id)
	payload := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		payload[k] = v
	}
	if original != "" {
		payload[PayloadIDField] = original
	}
	vectors := map[string]*qdrant.Vector{
		VectorDense: qdrant.NewVectorDense(dense),
	}
	if len(sparse) > 0 {
		indices := make([]uint32, 0, len(sparse))
		values := make([]float32, 0, len(sparse))
		for idx, val := range sparse {
			indices = append(indices, idx)
			values = append(values, val)
		}
		vectors[VectorSparse] = qdrant.NewVectorSparse(indices, values)
	}
	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(pointID),
		Vectors: qdrant.NewVectorsMap(vectors),
		Payload: qdrant.NewValueMap(payload),
	}
	return c.withRetry(ctx, func() error {
		_, err := c.raw.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: collection, Points: []*qdrant.PointStruct{point}})
		return err
	})
}

func (c *Client) Delete(ctx context.Context, collection, id string) error {
	pointID, _ := resolvePointID(id)
	return c.withRetry(ctx, func() error {
		_, err := c.raw.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: collection,
			Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(pointID)),
		})
		return err
	})
}

func resolvePointID(id string) (pointID, original string) {
	if _, err := uuid.Parse(id); err == nil {
		return id, ""
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String(), id
}

// withRetry retries 5xx-classified failures with exponential backoff and
// returns immediately (no retry) on 4xx-classified failures, per the
// upstream error policy.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := c.backoff
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		classified := c.classify(err)
		if errors.Is(classified, errs.ErrUpstreamRejected) {
			return classified
		}
		if attempt == c.maxRetries {
			return classified
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// classify maps a raw gRPC/HTTP error into ErrUpstreamUnavailable (5xx,
// retry) or ErrUpstreamRejected (4xx, treat as empty result).
func (c *Client) classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NotFound"), strings.Contains(msg, "InvalidArgument"), strings.Contains(msg, "400"), strings.Contains(msg, "404"):
		return fmt.Errorf("%w: %v", errs.ErrUpstreamRejected, err)
	default:
		return fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
	}
}
