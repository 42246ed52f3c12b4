package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
)

// ImportOpenAPI converts an OpenAPI 3 document (JSON or YAML) into a
// ServiceDefinition. OpenAPI path templating ({name} segments) maps
// directly onto endpoint path templates. Operations become endpoints in
// path order; responses with numeric status codes become status-keyed
// responses, with the media type's example as the body when one exists.
func ImportOpenAPI(data []byte) (*ServiceDefinition, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}

	def := &ServiceDefinition{Name: "imported-service"}
	if doc.Info != nil {
		if doc.Info.Title != "" {
			def.Name = doc.Info.Title
		}
		def.Version = doc.Info.Version
		def.Description = doc.Info.Description
	}

	if doc.Paths == nil {
		return def, nil
	}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		item := pathMap[p]
		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for m := range ops {
			methods = append(methods, m)
		}
		sort.Strings(methods)

		for _, m := range methods {
			ep, err := convertOperation(m, p, item, ops[m])
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", m, p, err)
			}
			def.Endpoints = append(def.Endpoints, *ep)
		}
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

func convertOperation(method, path string, item *openapi3.PathItem, op *openapi3.Operation) (*EndpointDefinition, error) {
	ep := &EndpointDefinition{
		Kind:      KindHTTP,
		Method:    method,
		Path:      path,
		Responses: make(map[int]ResponseDefinition),
	}

	// Path-level parameters apply to every operation on the path; an
	// operation may redeclare one, and its declaration wins.
	index := make(map[string]int)
	for _, ref := range append(append(openapi3.Parameters{}, item.Parameters...), op.Parameters...) {
		p := ref.Value
		if p == nil {
			continue
		}
		loc, ok := parameterLocation(p.In)
		if !ok {
			continue // cookie parameters are not representable
		}
		param := ParameterDefinition{
			Name:     p.Name,
			In:       loc,
			Type:     schemaType(p.Schema),
			Required: p.Required,
		}
		key := string(loc) + ":" + p.Name
		if i, seen := index[key]; seen {
			ep.Parameters[i] = param
			continue
		}
		index[key] = len(ep.Parameters)
		ep.Parameters = append(ep.Parameters, param)
	}

	if op.Responses == nil {
		return ep, nil
	}
	for code, ref := range op.Responses.Map() {
		status, err := strconv.Atoi(code)
		if err != nil {
			continue // "default" and range codes like "2XX" are skipped
		}
		resp := ResponseDefinition{ContentType: "application/json"}
		if ref.Value != nil {
			if mt := ref.Value.Content.Get("application/json"); mt != nil && mt.Example != nil {
				body, err := json.Marshal(mt.Example)
				if err != nil {
					return nil, fmt.Errorf("response %d example: %w", status, err)
				}
				resp.Body = string(body)
			}
		}
		ep.Responses[status] = resp
	}
	return ep, nil
}

func parameterLocation(in string) (ParameterLocation, bool) {
	switch in {
	case "path":
		return InPath, true
	case "query":
		return InQuery, true
	case "header":
		return InHeader, true
	default:
		return "", false
	}
}

func schemaType(ref *openapi3.SchemaRef) string {
	if ref == nil || ref.Value == nil || ref.Value.Type == nil {
		return "string"
	}
	types := *ref.Value.Type
	if len(types) == 0 {
		return "string"
	}
	return types[0]
}
