package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zantaracore/internal/llmgateway"
)

func TestIsOutOfDomain(t *testing.T) {
	assert.True(t, IsOutOfDomain("what's the weather like today?"))
	assert.False(t, IsOutOfDomain("how do I get a KITAS for my wife?"))
	assert.False(t, IsOutOfDomain("berapa biaya untuk PT PMA?"))
}

func TestClassifyIntentCategory(t *testing.T) {
	assert.Equal(t, "pricing", ClassifyIntent("how much does a visa cost?").Category)
	assert.Equal(t, "team", ClassifyIntent("is this for internal staff only?").Category)
	assert.Equal(t, "identity", ClassifyIntent("who are you?").Category)
	assert.Equal(t, "general", ClassifyIntent("tell me about KITAS renewal").Category)
}

func TestClassifyIntentDeepThinkOverridesTier(t *testing.T) {
	intent := ClassifyIntent("please do a comprehensive analysis of PT PMA vs representative office")
	assert.Equal(t, llmgateway.TierPro, intent.Tier)
	assert.True(t, intent.DeepThink)
}

func TestClassifyIntentProKeywordWithoutDeepThink(t *testing.T) {
	intent := ClassifyIntent("what's the difference between KITAS and KITAP?")
	assert.Equal(t, llmgateway.TierPro, intent.Tier)
	assert.False(t, intent.DeepThink)
}

func TestClassifyIntentPricingDefaultsToLiteTier(t *testing.T) {
	intent := ClassifyIntent("how much is a single-entry visa?")
	assert.Equal(t, "pricing", intent.Category)
	assert.Equal(t, llmgateway.TierLite, intent.Tier)
}

func TestClassifyIntentGeneralDefaultsToFlashTier(t *testing.T) {
	intent := ClassifyIntent("what documents do I need for a KITAS?")
	assert.Equal(t, llmgateway.TierFlash, intent.Tier)
}
