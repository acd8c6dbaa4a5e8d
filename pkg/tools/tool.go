// Package tools holds the function-calling surface exposed to the
// model: a registry of named tools with schema-validated arguments,
// plus the travel-assistant suite served by this deployment.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/tripvoice/go-tripvoice/pkg/gemini"
)

// Handler executes one tool call. It may call inv.Notify to push a
// follow-up text turn into the conversation after it returns; Notify is
// safe to call from background goroutines.
type Handler func(ctx context.Context, inv Invocation) (map[string]any, error)

// Invocation is the per-call context handed to a Handler.
type Invocation struct {
	Args   map[string]any
	Notify func(text string)
}

// Tool pairs a declaration with its handler. Parameters is an
// object-typed JSON schema; nil means the tool takes no arguments.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any

	// Scheduling is the delivery hint attached to this tool's
	// responses. Empty defaults to interrupt-style delivery.
	Scheduling string

	Handler Handler
}

type entry struct {
	tool   Tool
	schema *jsonschema.Schema
}

// Registry maps tool names to handlers. Registration compiles the
// parameter schema once; Invoke validates arguments against it.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a tool, compiling its parameter schema. A nil handler
// or duplicate name is an error.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tools: tool name is empty")
	}
	if t.Handler == nil {
		return fmt.Errorf("tools: %s has no handler", t.Name)
	}

	var schema *jsonschema.Schema
	if t.Parameters != nil {
		raw, err := json.Marshal(t.Parameters)
		if err != nil {
			return fmt.Errorf("tools: %s: marshal schema: %w", t.Name, err)
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(t.Name+".json", bytes.NewReader(raw)); err != nil {
			return fmt.Errorf("tools: %s: add schema: %w", t.Name, err)
		}
		schema, err = compiler.Compile(t.Name + ".json")
		if err != nil {
			return fmt.Errorf("tools: %s: compile schema: %w", t.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[t.Name]; exists {
		return fmt.Errorf("tools: %s already registered", t.Name)
	}
	r.entries[t.Name] = &entry{tool: t, schema: schema}
	return nil
}

// MustRegister panics on registration failure. Used for the static
// suite wired at startup, where a bad schema is a programming error.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Declarations returns the function declarations for session setup,
// sorted by name for a stable wire payload.
func (r *Registry) Declarations() []gemini.FunctionDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decls := make([]gemini.FunctionDeclaration, 0, len(r.entries))
	for _, e := range r.entries {
		decls = append(decls, gemini.FunctionDeclaration{
			Name:        e.tool.Name,
			Description: e.tool.Description,
			Parameters:  e.tool.Parameters,
		})
	}
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	return decls
}

// Scheduling returns the delivery hint for a tool, or the empty string
// when the tool is unknown.
func (r *Registry) Scheduling(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[name]; ok {
		return e.tool.Scheduling
	}
	return ""
}

// Invoke validates args against the tool's schema and runs its handler.
// Unknown names and schema violations return errors without running
// anything.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any, notify func(string)) (map[string]any, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tools: unknown tool %q", name)
	}

	if e.schema != nil {
		if args == nil {
			args = map[string]any{}
		}
		if err := e.schema.Validate(normalize(args)); err != nil {
			return nil, fmt.Errorf("tools: %s: invalid arguments: %w", name, err)
		}
	}

	if notify == nil {
		notify = func(string) {}
	}
	return e.tool.Handler(ctx, Invocation{Args: args, Notify: notify})
}

// normalize round-trips args through JSON so numeric types match what
// the schema validator expects regardless of how the map was built.
func normalize(args map[string]any) any {
	raw, err := json.Marshal(args)
	if err != nil {
		return args
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return args
	}
	return out
}

// stringArg fetches a string argument, tolerating absence.
func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}
