package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// IssueKind classifies a validation issue
type IssueKind string

const (
	IssueConflict IssueKind = "conflict"
	IssueInvalid  IssueKind = "invalid"
	IssueWarning  IssueKind = "warning"
)

// Issue is one problem found in a keybinding setup
type Issue struct {
	Kind    IssueKind
	Context Context
	Key     string
	Message string
}

func (i Issue) Error() string {
	if i.Key == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Message)
	}
	return fmt.Sprintf("%s: %q in %s: %s", i.Kind, i.Key, i.Context, i.Message)
}

// ValidationResult splits issues into blocking errors and warnings
type ValidationResult struct {
	Errors   []Issue
	Warnings []Issue
}

func (r *ValidationResult) fail(kind IssueKind, context Context, key, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Issue{Kind: kind, Context: context, Key: key, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(context Context, key, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Issue{Kind: IssueWarning, Context: context, Key: key, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) HasErrors() bool   { return len(r.Errors) > 0 }
func (r *ValidationResult) HasWarnings() bool { return len(r.Warnings) > 0 }

// String lists errors first, one per line
func (r *ValidationResult) String() string {
	if !r.HasErrors() && !r.HasWarnings() {
		return "keybindings ok"
	}
	var lines []string
	for _, issue := range r.Errors {
		lines = append(lines, "error   "+issue.Error())
	}
	for _, issue := range r.Warnings {
		lines = append(lines, "warning "+issue.Error())
	}
	return strings.Join(lines, "\n")
}

// Validator validates keybinding configurations
type Validator struct {
	// keys that should not be rebound
	reservedKeys map[string]Action

	// context -> parent context
	contextHierarchy map[Context]Context
}

// NewValidator creates a new keybinding validator
func NewValidator() *Validator {
	return &Validator{
		reservedKeys: map[string]Action{
			"ctrl+c": ActionQuitForce,
		},
		contextHierarchy: map[Context]Context{
			ContextInput:   ContextGlobal,
			ContextResult:  ContextGlobal,
			ContextHistory: ContextGlobal,
			ContextFilter:  ContextGlobal,
			ContextRaw:     ContextGlobal,
			ContextHelp:    ContextGlobal,
		},
	}
}

// ValidateRegistry validates an entire registry
func (v *Validator) ValidateRegistry(registry *Registry) *ValidationResult {
	result := &ValidationResult{}

	for _, context := range sortedContexts(registry) {
		bindings := registry.bindings[context]
		for _, key := range sortedKeys(bindings) {
			action := bindings[key]
			v.checkAction(context, key, action, result)
			v.checkReservedKey(context, key, action, result)
			v.checkShadowing(registry, context, key, action, result)
			v.checkSequence(bindings, context, key, result)
		}
	}

	return result
}

// ValidateConfig validates a configuration before applying it
func (v *Validator) ValidateConfig(config *Config) *ValidationResult {
	result := &ValidationResult{}

	v.checkDuplicateBindings(config, result)

	registry := NewRegistry()
	if err := ApplyConfig(registry, config); err != nil {
		result.fail(IssueInvalid, "", "", "%v", err)
		return result
	}

	registryResult := v.ValidateRegistry(registry)
	result.Errors = append(result.Errors, registryResult.Errors...)
	result.Warnings = append(result.Warnings, registryResult.Warnings...)
	return result
}

// checkDuplicateBindings reports one key given to several actions in a section
func (v *Validator) checkDuplicateBindings(config *Config, result *ValidationResult) {
	sections := config.sections()
	contexts := make([]string, 0, len(sections))
	for c := range sections {
		contexts = append(contexts, string(c))
	}
	sort.Strings(contexts)

	for _, c := range contexts {
		context := Context(c)
		owners := make(map[string][]string)
		for action, keys := range sections[context] {
			for _, key := range SplitKeys(keys) {
				owners[key] = append(owners[key], action)
			}
		}
		for _, key := range sortedStrings(owners) {
			if actions := owners[key]; len(actions) > 1 {
				sort.Strings(actions)
				result.fail(IssueConflict, context, key, "bound to %s", strings.Join(actions, " and "))
			}
		}
	}
}

func (v *Validator) checkAction(context Context, key string, action Action, result *ValidationResult) {
	if !IsKnownAction(action) {
		result.warn(context, key, "unknown action %q", action)
	}
}

func (v *Validator) checkReservedKey(context Context, key string, action Action, result *ValidationResult) {
	reserved, ok := v.reservedKeys[key]
	if !ok || action == reserved {
		return
	}
	result.warn(context, key, "reserved for %s", reserved)
}

func (v *Validator) checkShadowing(registry *Registry, context Context, key string, action Action, result *ValidationResult) {
	parent, ok := v.contextHierarchy[context]
	if !ok {
		return
	}
	if parentAction, bound := registry.bindings[parent][key]; bound && parentAction != action {
		result.warn(context, key, "shadows %s binding %s with %s", parent, parentAction, action)
	}
}

// checkSequence warns about 'gg'-style sequences whose first key does not
// start a sequence, since they can never be typed.
func (v *Validator) checkSequence(bindings map[string]Action, context Context, key string, result *ValidationResult) {
	if len(key) != 2 || key[0] != key[1] {
		return
	}
	if bindings[key[:1]] != ActionGoToTopPrepare {
		result.warn(context, key, "unreachable sequence, %q is not bound to %s", key[:1], ActionGoToTopPrepare)
	}
}

// FindConflicts finds all conflicting keybindings in a config
func FindConflicts(config *Config) []string {
	result := NewValidator().ValidateConfig(config)

	var conflicts []string
	for _, issue := range result.Errors {
		if issue.Kind == IssueConflict {
			conflicts = append(conflicts, issue.Error())
		}
	}
	return conflicts
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	for _, mod := range []string{"ctrl+", "alt+", "shift+", "super+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}
	return nil
}

// ValidateAction checks if an action string is valid
func ValidateAction(actionStr string) error {
	if actionStr == "" {
		return fmt.Errorf("action cannot be empty")
	}
	return nil
}

func sortedContexts(r *Registry) []Context {
	contexts := make([]Context, 0, len(r.bindings))
	for c := range r.bindings {
		contexts = append(contexts, c)
	}
	sort.Slice(contexts, func(i, j int) bool { return contexts[i] < contexts[j] })
	return contexts
}

func sortedKeys(m map[string]Action) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStrings(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
