package filter

import "strings"

// Builder accumulates clauses. Every method ignores empty input, so a
// parameter that was not supplied never constrains the result.
type Builder struct {
	clauses []Clause
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Equal adds an exact-match clause.
func (b *Builder) Equal(field, value string) *Builder {
	if value == "" {
		return b
	}
	b.clauses = append(b.clauses, Clause{Kind: KindEqual, Fields: []string{field}, Value: value})
	return b
}

// Bool adds a boolean clause: "true" means true, any other non-empty value
// means false.
func (b *Builder) Bool(field, value string) *Builder {
	if value == "" {
		return b
	}
	b.clauses = append(b.clauses, Clause{Kind: KindEqual, Fields: []string{field}, Value: value == "true"})
	return b
}

// Contains adds a case-insensitive substring clause on one field.
func (b *Builder) Contains(field, term string) *Builder {
	return b.AnyFieldContains(term, field)
}

// AnyFieldContains adds a single clause that holds when any of fields
// contains term.
func (b *Builder) AnyFieldContains(term string, fields ...string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" || len(fields) == 0 {
		return b
	}
	b.clauses = append(b.clauses, Clause{Kind: KindContains, Fields: fields, Terms: []string{term}})
	return b
}

// AnyToken splits a comma separated list and adds a clause that holds when
// the field contains any one of the tokens.
func (b *Builder) AnyToken(field, list string) *Builder {
	tokens := SplitList(list)
	if len(tokens) == 0 {
		return b
	}
	b.clauses = append(b.clauses, Clause{Kind: KindContains, Fields: []string{field}, Terms: tokens})
	return b
}

func (b *Builder) Build() Predicate {
	out := make([]Clause, len(b.clauses))
	copy(out, b.clauses)
	return Predicate{clauses: out}
}

// SplitList splits a comma separated string, trims each token and drops
// empty ones. Record creation uses the same rule for skills.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
