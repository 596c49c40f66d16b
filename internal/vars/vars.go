// Package vars provides the variable and alias stores. Both are
// small name-validated maps; Variables additionally track an exported flag
// per entry for $NAME-style shell variables.
package vars

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/sasha-s/go-deadlock"
)

var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name is a legal variable/alias identifier.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

type variable struct {
	value    string
	exported bool
}

// Variables is the process-wide variable table.
type Variables struct {
	mu    deadlock.Mutex
	store map[string]*variable
}

// NewVariables returns an empty Variables table.
func NewVariables() *Variables {
	return &Variables{store: make(map[string]*variable)}
}

// Get returns the variable's value and whether it exists.
func (v *Variables) Get(name string) (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.store[name]
	if !ok {
		return "", false
	}
	return entry.value, true
}

// Put sets name to value with the given exported flag, creating the entry
// if absent. Returns an error if name is not a valid identifier.
func (v *Variables) Put(name, value string, exported bool) error {
	if !ValidName(name) {
		return fmt.Errorf("vars: invalid name %q", name)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.store[name] = &variable{value: value, exported: exported}
	return nil
}

// SetExported sets the exported flag of an existing variable without
// touching its value; it is a no-op if the variable does not exist (the
// `set` builtin doesn't implicitly create variables).
func (v *Variables) SetExported(name string, exported bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if entry, ok := v.store[name]; ok {
		entry.exported = exported
	}
}

// Remove deletes name, if present.
func (v *Variables) Remove(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.store, name)
}

// IsExported reports whether name exists and is exported.
func (v *Variables) IsExported(name string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.store[name]
	return ok && entry.exported
}

// CreateEnvp materializes a NAME=value vector for every exported variable,
// sorted by name for deterministic child environments.
func (v *Variables) CreateEnvp() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	names := make([]string, 0, len(v.store))
	for name, entry := range v.store {
		if entry.exported {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	envp := make([]string, len(names))
	for i, name := range names {
		envp[i] = name + "=" + v.store[name].value
	}
	return envp
}

// Names returns every variable name, sorted.
func (v *Variables) Names() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	names := make([]string, 0, len(v.store))
	for name := range v.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aliases is the process-wide alias table: the same surface as Variables
// minus the exported flag.
type Aliases struct {
	mu    deadlock.Mutex
	store map[string]string
}

// NewAliases returns an empty Aliases table.
func NewAliases() *Aliases {
	return &Aliases{store: make(map[string]string)}
}

// Get returns the alias's expansion and whether it exists.
func (a *Aliases) Get(name string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	value, ok := a.store[name]
	return value, ok
}

// Put sets name's alias expansion, creating the entry if absent.
func (a *Aliases) Put(name, value string) error {
	if !ValidName(name) {
		return fmt.Errorf("vars: invalid name %q", name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store[name] = value
	return nil
}

// Remove deletes name, if present.
func (a *Aliases) Remove(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.store, name)
}

// RemoveAll clears every alias, for `unalias -a`.
func (a *Aliases) RemoveAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store = make(map[string]string)
}

// Names returns every alias name, sorted.
func (a *Aliases) Names() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.store))
	for name := range a.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
