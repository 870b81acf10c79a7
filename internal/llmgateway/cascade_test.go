package llmgateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"zantaracore/internal/errs"
)

type fakeClient struct {
	name      string
	err       error
	nativeFns bool
}

func (f *fakeClient) Send(_ context.Context, _ string, _ []Message, _ []ToolDecl, _ bool) (Response, error) {
	if f.err != nil {
		return Response{}, f.err
	}
	return Response{Text: "ok from " + f.name, Model: f.name}, nil
}

func (f *fakeClient) Ping(_ context.Context) error { return f.err }

func (f *fakeClient) SupportsNativeFunctionCalling() bool { return f.nativeFns }

func TestSendMessageUsesStartingTierOnSuccess(t *testing.T) {
	gw := NewGateway(map[Tier]ModelClient{
		TierPro:   &fakeClient{name: "pro"},
		TierFlash: &fakeClient{name: "flash"},
	})
	resp, tier, err := gw.SendMessage(context.Background(), "sys", nil, TierFlash, nil, false)
	assert.NoError(t, err)
	assert.Equal(t, TierFlash, tier)
	assert.Equal(t, "ok from flash", resp.Text)
}

func TestSendMessageCascadesOnRetryableError(t *testing.T) {
	gw := NewGateway(map[Tier]ModelClient{
		TierPro:        &fakeClient{name: "pro", err: errs.ErrUpstreamUnavailable},
		TierFlash:      &fakeClient{name: "flash", err: errs.ErrUpstreamUnavailable},
		TierOpenRouter: &fakeClient{name: "openrouter"},
	})
	resp, tier, err := gw.SendMessage(context.Background(), "sys", nil, TierPro, nil, false)
	assert.NoError(t, err)
	assert.Equal(t, TierOpenRouter, tier)
	assert.Equal(t, "ok from openrouter", resp.Text)
}

func TestSendMessageStopsOnNonRetryableError(t *testing.T) {
	gw := NewGateway(map[Tier]ModelClient{
		TierPro:   &fakeClient{name: "pro", err: errs.ErrInvalidArgs},
		TierFlash: &fakeClient{name: "flash"},
	})
	_, _, err := gw.SendMessage(context.Background(), "sys", nil, TierPro, nil, false)
	assert.ErrorIs(t, err, errs.ErrInvalidArgs)
}

func TestSendMessageReturnsCascadeExhaustedWhenEveryTierFails(t *testing.T) {
	gw := NewGateway(map[Tier]ModelClient{
		TierPro:   &fakeClient{name: "pro", err: errs.ErrUpstreamUnavailable},
		TierFlash: &fakeClient{name: "flash", err: errs.ErrUpstreamUnavailable},
	})
	_, _, err := gw.SendMessage(context.Background(), "sys", nil, TierPro, nil, false)
	assert.ErrorIs(t, err, errs.ErrCascadeExhausted)
}

func TestSendMessageSkipsUnconfiguredTiers(t *testing.T) {
	gw := NewGateway(map[Tier]ModelClient{
		TierLite: &fakeClient{name: "lite"},
	})
	resp, tier, err := gw.SendMessage(context.Background(), "sys", nil, TierPro, nil, false)
	assert.NoError(t, err)
	assert.Equal(t, TierLite, tier)
	assert.Equal(t, "ok from lite", resp.Text)
}

func TestHealthCheckReportsPerTierStatus(t *testing.T) {
	gw := NewGateway(map[Tier]ModelClient{
		TierPro:   &fakeClient{name: "pro"},
		TierFlash: &fakeClient{name: "flash", err: errors.New("down")},
	})
	status := gw.HealthCheck(context.Background())
	assert.True(t, status[TierPro])
	assert.False(t, status[TierFlash])
}
