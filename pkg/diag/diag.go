// Package diag carries the debug diagnostics emitted while sections are
// registered, begun and ended.
//
// Diagnostics are structured [Record] values. They are rendered to a single
// line of text only at the [Sink] boundary, so tests can assert on the kind
// and fields of a record rather than on message strings. A [Diagnostics]
// value holds the debug switch: while it is disabled every record is dropped
// and misuse of the section API is silent.
//
//	d := diag.New(diag.NewLogSink(logger))
//	d.SetEnabled(true)
//	d.Emit(diag.Record{Kind: diag.KindUnknownSection, Section: "hero"})
//	// WARN Section 'hero' does not exist. event=unknown_section section=hero
package diag

import (
	"fmt"
	"sync"
)

// Kind identifies the condition a diagnostic reports.
type Kind string

const (
	// KindInvalidDefinition reports a rejected section definition.
	KindInvalidDefinition Kind = "invalid_definition"
	// KindDuplicateSection reports a section id registered more than once.
	KindDuplicateSection Kind = "duplicate_section"
	// KindUnknownSection reports a begin or end for an unregistered section.
	KindUnknownSection Kind = "unknown_section"
	// KindEndWithoutBegin reports an end for a section that is not active.
	KindEndWithoutBegin Kind = "end_without_begin"
	// KindMismatchedEnd reports an end whose section is not the top of the stack.
	KindMismatchedEnd Kind = "mismatched_end"
	// KindDiscardedSection reports an unclosed section dropped while recovering from a mismatched end.
	KindDiscardedSection Kind = "discarded_section"
)

// Record is one diagnostic event.
type Record struct {
	Kind    Kind
	Section string // Section the caller named
	Top     string // Top of the section stack, for mismatch records
	Reason  string // Validation failure text, for invalid definitions
}

// Message renders the record as a single line of text.
func (r Record) Message() string {
	switch r.Kind {
	case KindInvalidDefinition:
		return r.Reason
	case KindDuplicateSection:
		return fmt.Sprintf("Section '%s' was registered more than once.", r.Section)
	case KindUnknownSection:
		return fmt.Sprintf("Section '%s' does not exist.", r.Section)
	case KindEndWithoutBegin:
		return fmt.Sprintf("Section '%s' was ended without being started.", r.Section)
	case KindMismatchedEnd:
		return fmt.Sprintf("Section '%s' was ended, but '%s' was the last section started.", r.Section, r.Top)
	case KindDiscardedSection:
		return fmt.Sprintf("Ending '%s' section to find '%s'.", r.Top, r.Section)
	}
	return fmt.Sprintf("%s: section '%s'", r.Kind, r.Section)
}

// String implements fmt.Stringer.
func (r Record) String() string { return r.Message() }

// Sink receives diagnostics records.
type Sink interface {
	Emit(Record)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Record)

// Emit calls f(r).
func (f SinkFunc) Emit(r Record) { f(r) }

// Nop is a Sink that discards every record.
type Nop struct{}

// Emit does nothing.
func (Nop) Emit(Record) {}

// Diagnostics forwards records to a Sink while debugging is enabled.
// The zero value is disabled and discards everything.
type Diagnostics struct {
	mu      sync.RWMutex
	sink    Sink
	enabled bool
}

// New returns a disabled Diagnostics writing to sink. A nil sink discards records.
func New(sink Sink) *Diagnostics {
	if sink == nil {
		sink = Nop{}
	}
	return &Diagnostics{sink: sink}
}

// SetEnabled turns diagnostics on or off.
func (d *Diagnostics) SetEnabled(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.enabled = enabled
}

// Enabled reports whether records are currently forwarded.
func (d *Diagnostics) Enabled() bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.enabled
}

// Emit forwards r to the sink if diagnostics are enabled.
func (d *Diagnostics) Emit(r Record) {
	if !d.Enabled() {
		return
	}
	d.mu.RLock()
	sink := d.sink
	d.mu.RUnlock()
	if sink != nil {
		sink.Emit(r)
	}
}
