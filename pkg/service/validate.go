package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks structural constraints (via struct tags) and the semantic
// invariants the tag language cannot express: placeholder shape, name
// uniqueness, and schema references.
func (d *ServiceDefinition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid service definition: %w", err)
	}

	for i := range d.Endpoints {
		ep := &d.Endpoints[i]
		if err := validateEndpoint(ep, d.Models); err != nil {
			return fmt.Errorf("endpoint %d (%s %s): %w", i, ep.Method, ep.Path, err)
		}
	}
	return nil
}

func validateEndpoint(ep *EndpointDefinition, models map[string]any) error {
	if err := validatePathTemplate(ep.Path); err != nil {
		return err
	}

	seen := make(map[string]bool, len(ep.Parameters))
	for _, p := range ep.Parameters {
		key := string(p.In) + ":" + p.Name
		if seen[key] {
			return fmt.Errorf("duplicate parameter %q in %s", p.Name, p.In)
		}
		seen[key] = true
	}

	for status, resp := range ep.Responses {
		if status < 100 || status > 599 {
			return fmt.Errorf("response status %d out of range", status)
		}
		if err := validateSchemaRef(resp.Schema, models); err != nil {
			return err
		}
	}
	for i, sc := range ep.Scenarios {
		if err := validateSchemaRef(sc.Response.Schema, models); err != nil {
			return fmt.Errorf("scenario %d: %w", i, err)
		}
	}
	return nil
}

// validatePathTemplate requires every segment to be either a pure literal
// or a single {name} placeholder. Mixed segments such as "{a}{b}" or
// "v{id}" would put two placeholders (or a placeholder fragment) in one
// segment with no literal separator, which matching cannot disambiguate.
func validatePathTemplate(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path %q must start with /", path)
	}
	seenNames := make(map[string]bool)
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			name := seg[1 : len(seg)-1]
			if name == "" || strings.ContainsAny(name, "{}") {
				return fmt.Errorf("malformed placeholder %q", seg)
			}
			if seenNames[name] {
				return fmt.Errorf("duplicate placeholder {%s}", name)
			}
			seenNames[name] = true
			continue
		}
		if strings.ContainsAny(seg, "{}") {
			return fmt.Errorf("segment %q mixes literals and placeholders", seg)
		}
	}
	return nil
}

func validateSchemaRef(ref string, models map[string]any) error {
	if ref == "" {
		return nil
	}
	if _, ok := models[ref]; !ok {
		return fmt.Errorf("response references unknown model %q", ref)
	}
	return nil
}
