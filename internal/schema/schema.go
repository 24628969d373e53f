// Package schema validates create payloads against the JSON Schemas of the
// three record types before they are decoded into request structs.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	apperrors "github.com/PrathushaR/ithotlist-api/internal/errors"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var files embed.FS

type Kind string

const (
	Job       Kind = "job"
	Candidate Kind = "candidate"
	Hotlist   Kind = "hotlist"
)

var kinds = []Kind{Job, Candidate, Hotlist}

type Validator struct {
	schemas map[Kind]*gojsonschema.Schema
}

// NewValidator compiles the embedded schemas.
func NewValidator() (*Validator, error) {
	v := &Validator{schemas: make(map[Kind]*gojsonschema.Schema, len(kinds))}
	for _, k := range kinds {
		raw, err := files.ReadFile(fmt.Sprintf("schemas/%s.json", k))
		if err != nil {
			return nil, fmt.Errorf("read %s schema: %w", k, err)
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", k, err)
		}
		v.schemas[k] = s
	}
	return v, nil
}

// MustNewValidator panics if the embedded schemas do not compile.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks doc against the schema of kind. Violations are returned as
// a single validation error listing every problem.
func (v *Validator) Validate(kind Kind, doc map[string]interface{}) error {
	s, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("unknown schema %q", kind)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	result, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return apperrors.NewValidationError([]string{err.Error()})
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	sort.Strings(problems)
	return apperrors.NewValidationError(problems)
}

// Decode validates doc and then decodes it into out.
func (v *Validator) Decode(kind Kind, doc map[string]interface{}, out interface{}) error {
	if err := v.Validate(kind, doc); err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewValidationError([]string{err.Error()})
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return apperrors.NewValidationError([]string{err.Error()})
	}
	return nil
}
