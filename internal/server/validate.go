package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator checks tool arguments against each tool's input schema before
// the handler runs. Schemas are compiled once, at registration.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*jsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{schemas: make(map[string]*jsonschema.Schema)}
}

// Register compiles the tool's declared input schema, deep-merged with
// extra. extra carries constraints the tool builder cannot express, such
// as anyOf or integer types.
func (v *Validator) Register(tool mcp.Tool, extra map[string]any) error {
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return fmt.Errorf("marshal %s schema: %w", tool.Name, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal %s schema: %w", tool.Name, err)
	}
	mergeSchema(doc, extra)

	// Round-trip again so extra's Go ints reach the compiler as JSON numbers.
	if raw, err = json.Marshal(doc); err != nil {
		return fmt.Errorf("marshal %s schema: %w", tool.Name, err)
	}
	var schemaDoc any
	if err := json.Unmarshal(raw, &schemaDoc); err != nil {
		return fmt.Errorf("unmarshal %s schema: %w", tool.Name, err)
	}

	url := tool.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, schemaDoc); err != nil {
		return fmt.Errorf("add %s schema: %w", tool.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return fmt.Errorf("compile %s schema: %w", tool.Name, err)
	}

	v.mu.Lock()
	v.schemas[tool.Name] = compiled
	v.mu.Unlock()
	return nil
}

// Validate checks args for the named tool. Unregistered tools pass.
func (v *Validator) Validate(name string, args map[string]any) error {
	v.mu.RLock()
	compiled, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}
	return compiled.Validate(args)
}

// mergeSchema copies src into dst, merging nested objects key by key.
func mergeSchema(dst, src map[string]any) {
	for k, sv := range src {
		if sm, ok := sv.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeSchema(dm, sm)
				continue
			}
		}
		dst[k] = sv
	}
}

// integerProps marks number properties as integers.
func integerProps(names ...string) map[string]any {
	props := make(map[string]any, len(names))
	for _, n := range names {
		props[n] = map[string]any{"type": "integer"}
	}
	return map[string]any{"properties": props}
}

// requireOneOfNonEmpty demands at least one of the named string
// properties with a non-empty value.
func requireOneOfNonEmpty(names ...string) map[string]any {
	branches := make([]any, 0, len(names))
	for _, n := range names {
		branches = append(branches, map[string]any{
			"required":   []any{n},
			"properties": map[string]any{n: map[string]any{"minLength": 1}},
		})
	}
	return map[string]any{"anyOf": branches}
}

func merged(parts ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, p := range parts {
		mergeSchema(out, p)
	}
	return out
}
