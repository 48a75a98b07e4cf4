package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// ResponseValidator checks extracted model JSON against the schema of its
// kind after normalising field aliases.
type ResponseValidator struct {
	schemas map[Kind]*gojsonschema.Schema
}

// NewResponseValidator compiles every kind's schema once.
func NewResponseValidator() (*ResponseValidator, error) {
	v := &ResponseValidator{schemas: make(map[Kind]*gojsonschema.Schema, len(schemaDocs))}
	for kind, doc := range schemaDocs {
		s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("op=ai.NewResponseValidator: kind %s: %w", kind, err)
		}
		v.schemas[kind] = s
	}
	return v, nil
}

// Validate decodes raw, renames aliased fields, and validates the result.
// It returns the normalised document re-encoded as JSON, ready to be
// unmarshalled into the kind's typed response.
func (v *ResponseValidator) Validate(kind Kind, raw string) ([]byte, error) {
	schema, ok := v.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("op=ai.Validate: %w: unknown kind %q", domain.ErrInvalidArgument, kind)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("op=ai.Validate: %w: %v", domain.ErrMalformedResponse, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("op=ai.Validate: %w: document is not an object", domain.ErrSchemaInvalid)
	}
	Normalize(kind, doc)

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("op=ai.Validate: %w: %v", domain.ErrSchemaInvalid, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("op=ai.Validate: %w: %s", domain.ErrSchemaInvalid, strings.Join(errs, "; "))
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("op=ai.Validate: %w", err)
	}
	return out, nil
}

// Normalize renames aliased keys in place. An alias never overwrites a key
// that is already present under its canonical name.
func Normalize(kind Kind, doc map[string]any) {
	for _, g := range aliases[kind] {
		m := doc
		if g.path != "" {
			nested, ok := doc[g.path].(map[string]any)
			if !ok {
				continue
			}
			m = nested
		}
		rename(m, g.renames)
	}
}

func rename(m map[string]any, renames []alias) {
	for _, a := range renames {
		val, ok := m[a.from]
		if !ok {
			continue
		}
		if _, taken := m[a.to]; !taken {
			m[a.to] = val
		}
		delete(m, a.from)
	}
}
