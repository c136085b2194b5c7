// Package tools implements the fixed registry of data tools the assistant
// may call. Execution never fails past this boundary: every outcome,
// including unknown tools, bad arguments, and handler panics, is encoded as
// a JSON payload string.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/invopop/jsonschema"
	schemavalidate "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zulandar/fishbuddy/internal/assistant"
)

// DefaultTimeout bounds one tool execution, covering the slowest upstream
// (GBIF at 12s) with headroom.
const DefaultTimeout = 15 * time.Second

// tool is one registered instrument: declared schema, typed handler, and the
// error code used when the handler fails.
type tool struct {
	name        string
	description string
	errCode     string
	schema      json.RawMessage
	compiled    *schemavalidate.Schema
	handler     func(ctx context.Context, argsJSON []byte) (any, error)
}

// Registry is the static name→tool mapping built at startup.
type Registry struct {
	tools   map[string]*tool
	timeout time.Duration
}

// newTool reflects the parameter schema from T, compiles it for validation,
// and wraps the typed handler.
func newTool[T any](name, description, errCode string, fn func(ctx context.Context, args T) (any, error)) (*tool, error) {
	schema, err := reflectSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("tools: schema for %s: %w", name, err)
	}
	compiled, err := schemavalidate.CompileString(name+".json", string(schema))
	if err != nil {
		return nil, fmt.Errorf("tools: compile schema for %s: %w", name, err)
	}
	handler := func(ctx context.Context, argsJSON []byte) (any, error) {
		var args T
		if err := json.Unmarshal(argsJSON, &args); err != nil {
			return nil, fmt.Errorf("decode arguments: %w", err)
		}
		return fn(ctx, args)
	}
	return &tool{
		name:        name,
		description: description,
		errCode:     errCode,
		schema:      schema,
		compiled:    compiled,
		handler:     handler,
	}, nil
}

// reflectSchema derives a JSON Schema object from the args struct type.
// Fields without omitempty are required; extra properties are tolerated so a
// drifted remote schema degrades to ignored keys rather than hard failures.
func reflectSchema[T any]() (json.RawMessage, error) {
	r := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}
	var zero T
	raw, err := json.Marshal(r.Reflect(&zero))
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	delete(m, "$schema")
	delete(m, "$id")
	return json.Marshal(m)
}

// register adds the tool, replacing any previous entry with the same name.
func (r *Registry) register(t *tool) {
	r.tools[t.name] = t
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions exports the function-calling schemas for the assistant
// bootstrap, sorted by name for deterministic order.
func (r *Registry) Definitions() []assistant.ToolDefinition {
	defs := make([]assistant.ToolDefinition, 0, len(r.tools))
	for _, name := range r.Names() {
		t := r.tools[name]
		defs = append(defs, assistant.ToolDefinition{
			Name:        t.name,
			Description: t.description,
			Parameters:  t.schema,
		})
	}
	return defs
}

// Execute runs one tool call and returns its output payload. The returned
// string is always a JSON document; failures of any kind become
// {"error": "..."} data. An empty arguments string means no arguments.
func (r *Registry) Execute(ctx context.Context, name, argsJSON string) (payload string) {
	t, ok := r.tools[name]
	if !ok {
		return errorPayload(fmt.Sprintf("unknown tool %s", name))
	}

	if argsJSON == "" {
		argsJSON = "{}"
	}

	var decoded any
	if err := json.Unmarshal([]byte(argsJSON), &decoded); err != nil {
		return errorPayload(fmt.Sprintf("tool_execution_failed: invalid arguments: %v", err))
	}
	if err := t.compiled.Validate(decoded); err != nil {
		return errorPayload(fmt.Sprintf("tool_execution_failed: invalid arguments: %v", err))
	}

	timeout := r.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			payload = errorPayload(fmt.Sprintf("tool_execution_failed: panic: %v", p))
		}
	}()

	result, err := t.handler(ctx, []byte(argsJSON))
	if err != nil {
		return errorPayload(fmt.Sprintf("%s: %v", t.errCode, err))
	}
	out, err := json.Marshal(result)
	if err != nil {
		return errorPayload(fmt.Sprintf("tool_execution_failed: encode result: %v", err))
	}
	return string(out)
}

// errorPayload encodes a failure reason as the contractual error document.
func errorPayload(reason string) string {
	out, err := json.Marshal(map[string]string{"error": reason})
	if err != nil {
		// reason contained nothing unmarshalable; cannot happen for a string.
		return `{"error": "tool_execution_failed"}`
	}
	return string(out)
}

// DecodeError extracts the error reason from a payload produced by
// errorPayload. ok is false for non-error payloads.
func DecodeError(payload string) (reason string, ok bool) {
	var doc struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return "", false
	}
	return doc.Error, doc.Error != ""
}
