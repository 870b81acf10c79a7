package vectordb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zantaracore/internal/errs"
)

func TestParseEndpointDefaults(t *testing.T) {
	host, port, tls, apiKey, err := parseEndpoint("qdrant.internal:6334")
	require.NoError(t, err)
	assert.Equal(t, "qdrant.internal", host)
	assert.Equal(t, 6334, port)
	assert.False(t, tls)
	assert.Equal(t, "", apiKey)
}

func TestParseEndpointFullDSN(t *testing.T) {
	host, port, tls, apiKey, err := parseEndpoint("https://qdrant.example.com:443?api_key=secret")
	require.NoError(t, err)
	assert.Equal(t, "qdrant.example.com", host)
	assert.Equal(t, 443, port)
	assert.True(t, tls)
	assert.Equal(t, "secret", apiKey)
}

func TestParseEndpointBareHostDefaultsPort(t *testing.T) {
	host, port, _, _, err := parseEndpoint("localhost")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)
	assert.Equal(t, 6334, port)
}

func TestResolvePointIDPassesThroughUUID(t *testing.T) {
	id, original := resolvePointID("550e8400-e29b-41d4-a716-446655440000")
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id)
	assert.Equal(t, "", original)
}

func TestResolvePointIDDerivesDeterministicUUIDForNonUUID(t *testing.T) {
	id1, original1 := resolvePointID("doc-123")
	id2, original2 := resolvePointID("doc-123")
	assert.Equal(t, id1, id2, "derivation must be deterministic so repeated upserts land on the same point")
	assert.Equal(t, "doc-123", original1)
	assert.Equal(t, "doc-123", original2)
	assert.NotEqual(t, id1, "doc-123")
}

func TestClassify(t *testing.T) {
	c := &Client{}
	assert.Nil(t, c.classify(nil))
	assert.ErrorIs(t, c.classify(errors.New("rpc error: code = InvalidArgument desc = bad filter")), errs.ErrUpstreamRejected)
	assert.ErrorIs(t, c.classify(errors.New("rpc error: code = NotFound desc = collection missing")), errs.ErrUpstreamRejected)
	assert.ErrorIs(t, c.classify(errors.New("rpc error: code = Unavailable desc = 503")), errs.ErrUpstreamUnavailable)
}

func TestWithRetryRetriesUnavailableThenSucceeds(t *testing.T) {
	c := &Client{maxRetries: 3, backoff: time.Millisecond}
	attempts := 0
	err := c.withRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("rpc error: code = Unavailable desc = 503")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryStopsImmediatelyOnRejected(t *testing.T) {
	c := &Client{maxRetries: 3, backoff: time.Millisecond}
	attempts := 0
	err := c.withRetry(context.Background(), func() error {
		attempts++
		return errors.New("rpc error: code = InvalidArgument desc = bad request")
	})
	assert.ErrorIs(t, err, errs.ErrUpstreamRejected)
	assert.Equal(t, 1, attempts, "4xx-classified errors must not be retried")
}

func TestWithRetryExhaustsAttemptsOnPersistentUnavailable(t *testing.T) {
	c := &Client{maxRetries: 2, backoff: time.Millisecond}
	attempts := 0
	err := c.withRetry(context.Background(), func() error {
		attempts++
		return errors.New("rpc error: code = Unavailable desc = 503")
	})
	assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	assert.Equal(t, 3, attempts)
}

func TestWithRetryAbortsOnContextCancellation(t *testing.T) {
	c := &Client{maxRetries: 5, backoff: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	go func() {
		cancel()
	}()
	err := c.withRetry(ctx, func() error {
		attempts++
		return errors.New("rpc error: code = Unavailable desc = 503")
	})
	assert.Error(t, err)
}
