// Package filter turns optional, loosely typed query parameters into a
// conjunctive predicate that can be rendered for MongoDB or evaluated in
// memory against a decoded document.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ClauseKind identifies how a single clause is evaluated.
type ClauseKind int

const (
	// KindEqual requires the field to equal Value.
	KindEqual ClauseKind = iota
	// KindContains requires any of Fields to contain any of Terms,
	// case-insensitively. One field with one term is a plain partial match,
	// several fields form a multi-field OR search and several terms form a
	// list-membership match.
	KindContains
)

// Clause is one member of the conjunction held by a Predicate.
type Clause struct {
	Kind   ClauseKind
	Fields []string
	Value  interface{}
	Terms  []string
}

// Predicate is a conjunction of clauses. The zero value matches everything.
type Predicate struct {
	clauses []Clause
}

// Clauses returns a copy of the clauses in insertion order.
func (p Predicate) Clauses() []Clause {
	out := make([]Clause, len(p.clauses))
	copy(out, p.clauses)
	return out
}

// IsEmpty reports whether the predicate imposes no constraint.
func (p Predicate) IsEmpty() bool {
	return len(p.clauses) == 0
}

// String renders the predicate in a stable form, used for cache keys and logs.
func (p Predicate) String() string {
	parts := make([]string, 0, len(p.clauses))
	for _, c := range p.clauses {
		switch c.Kind {
		case KindEqual:
			parts = append(parts, fmt.Sprintf("%s=%v", c.Fields[0], c.Value))
		case KindContains:
			parts = append(parts, fmt.Sprintf("%s~%s", strings.Join(c.Fields, "|"), strings.Join(c.Terms, "|")))
		}
	}
	return strings.Join(parts, "&")
}

// BSON renders the predicate as a MongoDB filter document. Partial matches
// become case-insensitive regular expressions over the escaped term.
func (p Predicate) BSON() bson.D {
	docs := make([]bson.D, 0, len(p.clauses))
	seen := make(map[string]bool, len(p.clauses))
	conflict := false

	for _, c := range p.clauses {
		d := clauseBSON(c)
		for _, e := range d {
			if seen[e.Key] {
				conflict = true
			}
			seen[e.Key] = true
		}
		docs = append(docs, d)
	}

	if conflict {
		return bson.D{{Key: "$and", Value: docs}}
	}

	out := bson.D{}
	for _, d := range docs {
		out = append(out, d...)
	}
	return out
}

func clauseBSON(c Clause) bson.D {
	if c.Kind == KindEqual {
		return bson.D{{Key: c.Fields[0], Value: c.Value}}
	}

	patterns := make([]bson.Regex, 0, len(c.Terms))
	for _, t := range c.Terms {
		patterns = append(patterns, bson.Regex{Pattern: regexp.QuoteMeta(t), Options: "i"})
	}

	fieldCond := func(field string) bson.E {
		if len(patterns) == 1 {
			return bson.E{Key: field, Value: patterns[0]}
		}
		return bson.E{Key: field, Value: bson.D{{Key: "$in", Value: patterns}}}
	}

	if len(c.Fields) == 1 {
		return bson.D{fieldCond(c.Fields[0])}
	}

	or := make([]bson.D, 0, len(c.Fields))
	for _, f := range c.Fields {
		or = append(or, bson.D{fieldCond(f)})
	}
	return bson.D{{Key: "$or", Value: or}}
}

// Match evaluates the predicate against a document decoded from JSON, that is
// nested map[string]interface{} values, []interface{} arrays and scalar
// leaves. Dotted field names descend into nested objects and array elements
// are matched individually, the same way the document store treats them.
func (p Predicate) Match(doc map[string]interface{}) bool {
	for _, c := range p.clauses {
		if !c.match(doc) {
			return false
		}
	}
	return true
}

func (c Clause) match(doc map[string]interface{}) bool {
	if c.Kind == KindEqual {
		for _, v := range lookup(doc, strings.Split(c.Fields[0], ".")) {
			if v == c.Value {
				return true
			}
		}
		return false
	}

	res := make([]*regexp.Regexp, 0, len(c.Terms))
	for _, t := range c.Terms {
		res = append(res, regexp.MustCompile("(?i)"+regexp.QuoteMeta(t)))
	}

	for _, f := range c.Fields {
		for _, v := range lookup(doc, strings.Split(f, ".")) {
			s, ok := v.(string)
			if !ok {
				continue
			}
			for _, re := range res {
				if re.MatchString(s) {
					return true
				}
			}
		}
	}
	return false
}

func lookup(v interface{}, path []string) []interface{} {
	if len(path) == 0 {
		if arr, ok := v.([]interface{}); ok {
			return arr
		}
		return []interface{}{v}
	}

	switch t := v.(type) {
	case map[string]interface{}:
		next, ok := t[path[0]]
		if !ok {
			return nil
		}
		return lookup(next, path[1:])
	case []interface{}:
		var out []interface{}
		for _, e := range t {
			out = append(out, lookup(e, path)...)
		}
		return out
	}
	return nil
}
