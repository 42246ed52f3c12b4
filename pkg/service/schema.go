package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CompiledModels holds the compiled JSON Schemas of a definition's models
// section, ready to validate response bodies against.
type CompiledModels struct {
	schemas map[string]*jsonschema.Schema
}

// CompileModels compiles every entry of d.Models into a JSON Schema.
// Definitions without models compile to an empty, usable set.
func (d *ServiceDefinition) CompileModels() (*CompiledModels, error) {
	cm := &CompiledModels{schemas: make(map[string]*jsonschema.Schema, len(d.Models))}

	for name, raw := range d.Models {
		doc, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
		compiler := jsonschema.NewCompiler()
		url := "mem://models/" + name + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(doc)); err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", name, err)
		}
		cm.schemas[name] = schema
	}
	return cm, nil
}

// Validate checks a JSON body against the named model. An unknown model
// name is an error; a body that is not valid JSON is an error.
func (m *CompiledModels) Validate(model string, body []byte) error {
	schema, ok := m.schemas[model]
	if !ok {
		return fmt.Errorf("unknown model %q", model)
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("body does not conform to model %q: %w", model, err)
	}
	return nil
}

// Has reports whether a model with the given name was compiled.
func (m *CompiledModels) Has(model string) bool {
	_, ok := m.schemas[model]
	return ok
}
