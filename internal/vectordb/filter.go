package vectordb

import "github.com/qdrant/go-client/qdrant"

// Filter is the small payload-filter language the retrieval router
// builds from the caller's filter plus the repealed-law exclusion: an
// implicit AND of "must"
// conditions plus an implicit NOR of "must not" conditions, where each
// condition is either an equality match or one of $in/$ne/$nin over a
// field.
type Filter struct {
	Must    []Condition
	MustNot []Condition
}

// Op names an operator in a Condition.
type Op string

const (
	OpEq  Op = "eq"
	OpIn  Op = "$in"
	OpNe  Op = "$ne"
	OpNin Op = "$nin"
)

// Condition matches Field against Value (OpEq/OpNe) or against Values
// (OpIn/OpNin).
type Condition struct {
	Field  string
	Op     Op
	Value  string
	Values []string
}

func Eq(field, value string) Condition   { return Condition{Field: field, Op: OpEq, Value: value} }
func Ne(field, value string) Condition   { return Condition{Field: field, Op: OpNe, Value: value} }
func In(field string, values ...string) Condition {
	return Condition{Field: field, Op: OpIn, Values: values}
}
func Nin(field string, values ...string) Condition {
	return Condition{Field: field, Op: OpNin, Values: values}
}

// NewFilter builds a Filter from must/must-not condition lists.
func NewFilter(must []Condition, mustNot []Condition) *Filter {
	if len(must) == 0 && len(mustNot) == 0 {
		return nil
	}
	return &Filter{Must: must, MustNot: mustNot}
}

func (f *Filter) build() *qdrant.Filter {
	if f == nil || (len(f.Must) == 0 && len(f.MustNot) == 0) {
		return nil
	}
	qf := &qdrant.Filter{}
	for _, c := range f.Must {
		qf.Must = append(qf.Must, c.toQdrant())
	}
	for _, c := range f.MustNot {
		qf.MustNot = append(qf.MustNot, c.toQdrant())
	}
	return qf
}

func (c Condition) toQdrant() *qdrant.Condition {
	switch c.Op {
	case OpIn:
		return qdrant.NewMatchKeywords(c.Field, c.Values...)
	case OpNin:
		// Qdrant has no direct "not in" match; express it as a must_not
		// membership condition via the same keyword matcher — callers
		// place OpNin conditions in Filter.MustNot, which negates it.
		return qdrant.NewMatchKeywords(c.Field, c.Values...)
	case OpNe:
		return qdrant.NewMatch(c.Field, c.Value)
	default:
		return qdrant.NewMatch(c.Field, c.Value)
	}
}
