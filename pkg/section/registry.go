package section

import (
	"sync"

	"github.com/matzehuels/respimg/pkg/diag"
	"github.com/matzehuels/respimg/pkg/errors"
)

// Registry stores validated section definitions keyed by id.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
	diag  *diag.Diagnostics
}

// NewRegistry creates an empty registry reporting to d. A nil d is silent.
func NewRegistry(d *diag.Diagnostics) *Registry {
	return &Registry{
		defs: make(map[string]Definition),
		diag: d,
	}
}

// Register validates def and stores a copy of it.
//
// An invalid definition is reported as a diagnostic and not stored; the
// validation error is returned for callers that want it. Registering an id
// that already exists replaces the stored definition and reports a duplicate.
func (r *Registry) Register(def Definition) error {
	if err := Validate(def); err != nil {
		r.diag.Emit(diag.Record{
			Kind:    diag.KindInvalidDefinition,
			Section: def.ID,
			Reason:  errors.UserMessage(err),
		})
		return err
	}

	r.mu.Lock()
	_, exists := r.defs[def.ID]
	r.defs[def.ID] = def.Clone()
	if !exists {
		r.order = append(r.order, def.ID)
	}
	r.mu.Unlock()

	if exists {
		r.diag.Emit(diag.Record{Kind: diag.KindDuplicateSection, Section: def.ID})
	}
	return nil
}

// IsRegistered reports whether a section with the given id exists.
func (r *Registry) IsRegistered(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[id]
	return ok
}

// Get returns a copy of the definition registered under id.
func (r *Registry) Get(id string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	if !ok {
		return Definition{}, false
	}
	return def.Clone(), true
}

// Len returns the number of registered sections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// IDs returns the registered ids in first-registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Definitions returns copies of all registered definitions in first-registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id].Clone())
	}
	return out
}
