package section

import "github.com/matzehuels/respimg/pkg/diag"

// Lookup reports whether a section id is registered. *Registry implements it.
type Lookup interface {
	IsRegistered(id string) bool
}

// Activation is one live begin...end region.
type Activation struct {
	Section string
	Context any // Caller data, passed through untouched
}

// Stack is the last-in-first-out list of active sections for one render.
// It only ever holds ids that were registered when they were begun.
type Stack struct {
	lookup  Lookup
	diag    *diag.Diagnostics
	entries []Activation
}

// NewStack creates an empty stack that checks ids against lookup.
func NewStack(lookup Lookup, d *diag.Diagnostics) *Stack {
	return &Stack{lookup: lookup, diag: d}
}

// Begin pushes an activation for id carrying ctx. Unknown ids are reported
// and ignored. It reports whether anything was pushed.
func (s *Stack) Begin(id string, ctx any) bool {
	if !s.lookup.IsRegistered(id) {
		s.diag.Emit(diag.Record{Kind: diag.KindUnknownSection, Section: id})
		return false
	}
	s.entries = append(s.entries, Activation{Section: id, Context: ctx})
	return true
}

// End closes the most recent activation of id and returns how many
// activations were removed.
//
// When id is not on top, the activation for id is still closed, and every
// activation begun after it is discarded with a diagnostic. An end for an
// id that is not active, or not registered, changes nothing.
func (s *Stack) End(id string) int {
	if len(s.entries) == 0 {
		s.diag.Emit(diag.Record{Kind: diag.KindEndWithoutBegin, Section: id})
		return 0
	}
	if !s.lookup.IsRegistered(id) {
		s.diag.Emit(diag.Record{Kind: diag.KindUnknownSection, Section: id})
		return 0
	}

	top := len(s.entries) - 1
	if s.entries[top].Section == id {
		s.truncate(top)
		return 1
	}

	s.diag.Emit(diag.Record{Kind: diag.KindMismatchedEnd, Section: id, Top: s.entries[top].Section})

	idx := s.lastIndex(id)
	if idx < 0 {
		s.diag.Emit(diag.Record{Kind: diag.KindEndWithoutBegin, Section: id})
		return 0
	}

	// The top entry was already named by the mismatch record.
	for i := top - 1; i > idx; i-- {
		s.diag.Emit(diag.Record{Kind: diag.KindDiscardedSection, Section: id, Top: s.entries[i].Section})
	}
	removed := len(s.entries) - idx
	s.truncate(idx)
	return removed
}

// Top returns the most recent activation.
func (s *Stack) Top() (Activation, bool) {
	if len(s.entries) == 0 {
		return Activation{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Empty reports whether no section is active.
func (s *Stack) Empty() bool { return len(s.entries) == 0 }

// Len returns the number of active sections.
func (s *Stack) Len() int { return len(s.entries) }

// Activations returns a copy of the stack, bottom first.
func (s *Stack) Activations() []Activation {
	out := make([]Activation, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Stack) lastIndex(id string) int {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].Section == id {
			return i
		}
	}
	return -1
}

// truncate drops entries[n:] and releases their contexts.
func (s *Stack) truncate(n int) {
	clear(s.entries[n:])
	s.entries = s.entries[:n]
}
