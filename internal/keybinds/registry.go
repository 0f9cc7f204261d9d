package keybinds

import (
	"sort"
	"strings"
)

// Binding is one key bound to an action
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Match is the outcome of a key press
type Match int

const (
	NoMatch Match = iota
	Pending       // first key of a sequence such as "gg"
	Matched
)

// Registry maps keys to actions per context. Lookups fall back to the
// global context.
type Registry struct {
	bindings map[Context]map[string]Action
	pending  map[Context]string
}

func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[Context]map[string]Action),
		pending:  make(map[Context]string),
	}
}

// Register binds key to action in context, replacing any earlier binding
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Unbind removes every key bound to action in context
func (r *Registry) Unbind(context Context, action Action) {
	for key, bound := range r.bindings[context] {
		if bound == action {
			delete(r.bindings[context], key)
		}
	}
}

// Match looks key up in context, then in the global context
func (r *Registry) Match(context Context, key string) (Action, bool) {
	for _, c := range []Context{context, ContextGlobal} {
		if action, ok := r.bindings[c][key]; ok {
			return action, true
		}
	}
	return "", false
}

// Press resolves a key press, tracking two-key sequences per context.
// A key bound to ActionGoToTopPrepare waits for the next press.
func (r *Registry) Press(context Context, key string) (Action, Match) {
	if first, ok := r.pending[context]; ok {
		delete(r.pending, context)
		if action, ok := r.Match(context, first+key); ok {
			return action, Matched
		}
		return "", NoMatch
	}

	action, ok := r.Match(context, key)
	switch {
	case !ok:
		return "", NoMatch
	case action == ActionGoToTopPrepare:
		r.pending[context] = key
		return "", Pending
	}
	return action, Matched
}

// KeysFor returns the sorted keys bound to action, falling back to global
func (r *Registry) KeysFor(context Context, action Action) []string {
	keys := boundKeys(r.bindings[context], action)
	if len(keys) == 0 {
		keys = boundKeys(r.bindings[ContextGlobal], action)
	}
	return keys
}

func boundKeys(bindings map[string]Action, action Action) []string {
	var keys []string
	for key, bound := range bindings {
		if bound == action {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Describe renders the keys for action for help and status lines
func (r *Registry) Describe(context Context, action Action) string {
	if keys := r.KeysFor(context, action); len(keys) > 0 {
		return strings.Join(keys, ", ")
	}
	return "unbound"
}

// Bindings lists a context's bindings, then the global ones, each sorted by key
func (r *Registry) Bindings(context Context) []Binding {
	contexts := []Context{context}
	if context != ContextGlobal {
		contexts = append(contexts, ContextGlobal)
	}

	var out []Binding
	for _, c := range contexts {
		for _, key := range sortedKeys(r.bindings[c]) {
			out = append(out, Binding{Key: key, Action: r.bindings[c][key], Context: c})
		}
	}
	return out
}

// HasBinding reports whether key does anything in context
func (r *Registry) HasBinding(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}
