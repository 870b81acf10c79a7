package vectordb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFilterNilWhenEmpty(t *testing.T) {
	assert.Nil(t, NewFilter(nil, nil))
}

func TestNewFilterCarriesConditions(t *testing.T) {
	f := NewFilter([]Condition{Eq("status_vigensi", "berlaku")}, []Condition{Ne("status_vigensi", "dicabut")})
	assert.Len(t, f.Must, 1)
	assert.Len(t, f.MustNot, 1)
}

func TestFilterBuildNilFilterIsNil(t *testing.T) {
	var f *Filter
	assert.Nil(t, f.build())
}

func TestFilterBuildEmptyFilterIsNil(t *testing.T) {
	f := &Filter{}
	assert.Nil(t, f.build())
}

func TestFilterBuildTranslatesMustAndMustNot(t *testing.T) {
	f := &Filter{
		Must:    []Condition{Eq("tier", "2"), In("collection", "legal_unified", "tax_genius")},
		MustNot: []Condition{Eq("status_vigensi", "dicabut")},
	}
	qf := f.build()
	if assert.NotNil(t, qf) {
		assert.Len(t, qf.Must, 2)
		assert.Len(t, qf.MustNot, 1)
	}
}

func TestConditionConstructors(t *testing.T) {
	eq := Eq("field", "value")
	assert.Equal(t, OpEq, eq.Op)
	assert.Equal(t, "value", eq.Value)

	ne := Ne("field", "value")
	assert.Equal(t, OpNe, ne.Op)

	in := In("field", "a", "b")
	assert.Equal(t, OpIn, in.Op)
	assert.Equal(t, []string{"a", "b"}, in.Values)

	nin := Nin("field", "a", "b")
	assert.Equal(t, OpNin, nin.Op)
	assert.Equal(t, []string{"a", "b"}, nin.Values)
}
