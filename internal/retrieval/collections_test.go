package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteTopicsMatchesKeyword(t *testing.T) {
	router := NewRouter(DefaultCollections())
	got := router.RouteTopics("what is the cost of a visa extension")
	assert.Contains(t, got, "visa_oracle")
	assert.Contains(t, got, "visa_updates")
	assert.NotContains(t, got, "tax_genius")
}

func TestRouteTopicsFallsBackToBaseCollections(t *testing.T) {
	router := NewRouter(DefaultCollections())
	got := router.RouteTopics("hello there")
	assert.Contains(t, got, "visa_oracle")
	assert.Contains(t, got, "tax_genius")
	assert.Contains(t, got, "legal_unified")
	assert.NotContains(t, got, "visa_updates", "only base collections are used as a catch-all")
}

func TestFilterByTierDropsRestrictedCollections(t *testing.T) {
	router := NewRouter(DefaultCollections())
	got := router.FilterByTier([]string{"bali_zero_team", "visa_oracle"}, "public")
	assert.NotContains(t, got, "bali_zero_team")
	assert.Contains(t, got, "visa_oracle")
}

func TestBaseOfReturnsUpdatesCompanion(t *testing.T) {
	router := NewRouter(DefaultCollections())
	assert.Equal(t, "visa_oracle", router.BaseOf("visa_updates"))
	assert.Equal(t, "", router.BaseOf("visa_oracle"))
}

func TestBuildPlanDefaults(t *testing.T) {
	router := NewRouter(DefaultCollections())
	plan := BuildPlan(router, "visa renewal", "en", "public", 0, nil, true)
	assert.Equal(t, 8, plan.FinalK)
	assert.Equal(t, 0.6, plan.Alpha)
	assert.Equal(t, 60, plan.RRFK)
}

func TestBuildPlanDefaultsExcludeRepealedEntries(t *testing.T) {
	router := NewRouter(DefaultCollections())
	plan := BuildPlan(router, "visa renewal", "en", "public", 0, nil, true)
	if assert.NotNil(t, plan.Filter) {
		assert.Len(t, plan.Filter.MustNot, 1)
		assert.Equal(t, RepealedStatusField, plan.Filter.MustNot[0].Field)
		assert.Contains(t, plan.Filter.MustNot[0].Values, RepealedStatusValue)
	}
}

func TestBuildPlanHonorsExplicitOptOut(t *testing.T) {
	router := NewRouter(DefaultCollections())
	plan := BuildPlan(router, "visa renewal", "en", "public", 0, nil, false)
	assert.Nil(t, plan.Filter)
}
