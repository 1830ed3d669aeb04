package section

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/respimg/pkg/errors"
)

// Validation messages, in the order the rules are checked.
const (
	msgMissingID    = "Section definition must have an id."
	msgMissingSizes = "Section definition must have at least one size."
	msgUpperBound   = "Section definition must have one size that has screen_min_width but not screen_max_width."
)

// Length is a CSS dimension such as "1200px". Its value is opaque apart from
// the leading integer used to order rules.
type Length string

// Bound returns a pointer to a Length, for use as an optional screen bound.
func Bound(s string) *Length {
	l := Length(s)
	return &l
}

// Leading returns the integer at the start of l, ignoring any unit suffix.
// Leading whitespace and a sign are accepted; anything else yields 0.
// Values beyond the int range saturate at math.MaxInt (or -math.MaxInt).
func (l Length) Leading() int {
	s := string(l)
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
			continue
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

// String implements fmt.Stringer.
func (l Length) String() string { return string(l) }

// SizeRule is one breakpoint entry of a section.
type SizeRule struct {
	ScreenMinWidth    *Length `json:"screen_min_width,omitempty" toml:"screen_min_width,omitempty" yaml:"screen_min_width,omitempty"`
	ScreenMaxWidth    *Length `json:"screen_max_width,omitempty" toml:"screen_max_width,omitempty" yaml:"screen_max_width,omitempty"`
	ContainerMaxWidth Length  `json:"container_max_width" toml:"container_max_width" yaml:"container_max_width"`
}

// HasMin reports whether the rule declares a minimum screen width.
func (r SizeRule) HasMin() bool { return r.ScreenMinWidth != nil }

// HasMax reports whether the rule declares a maximum screen width.
func (r SizeRule) HasMax() bool { return r.ScreenMaxWidth != nil }

// IsUpperBound reports whether the rule has a minimum but no maximum screen width.
func (r SizeRule) IsUpperBound() bool { return r.HasMin() && !r.HasMax() }

// MinKey is the value rules are ordered by: the leading integer of the
// minimum screen width, or 0 when there is none.
func (r SizeRule) MinKey() int {
	if r.ScreenMinWidth == nil {
		return 0
	}
	return r.ScreenMinWidth.Leading()
}

func (r SizeRule) clone() SizeRule {
	out := SizeRule{ContainerMaxWidth: r.ContainerMaxWidth}
	if r.ScreenMinWidth != nil {
		out.ScreenMinWidth = Bound(string(*r.ScreenMinWidth))
	}
	if r.ScreenMaxWidth != nil {
		out.ScreenMaxWidth = Bound(string(*r.ScreenMaxWidth))
	}
	return out
}

func (r SizeRule) equal(o SizeRule) bool {
	return r.ContainerMaxWidth == o.ContainerMaxWidth &&
		equalBound(r.ScreenMinWidth, o.ScreenMinWidth) &&
		equalBound(r.ScreenMaxWidth, o.ScreenMaxWidth)
}

func equalBound(a, b *Length) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Definition is a named section and its breakpoint rules.
type Definition struct {
	ID    string     `json:"id" toml:"id" yaml:"id"`
	Sizes []SizeRule `json:"sizes" toml:"sizes" yaml:"sizes"`
}

// Clone returns a deep copy of d.
func (d Definition) Clone() Definition {
	out := Definition{ID: d.ID}
	if d.Sizes != nil {
		out.Sizes = make([]SizeRule, len(d.Sizes))
		for i, r := range d.Sizes {
			out.Sizes[i] = r.clone()
		}
	}
	return out
}

// Equal reports whether d and o have the same id and the same rules in the same order.
func (d Definition) Equal(o Definition) bool {
	return d.ID == o.ID && slices.EqualFunc(d.Sizes, o.Sizes, SizeRule.equal)
}

// UpperBound returns the rule with a minimum but no maximum screen width.
// The second result is false unless exactly one such rule exists.
func (d Definition) UpperBound() (SizeRule, bool) {
	var found SizeRule
	n := 0
	for _, r := range d.Sizes {
		if r.IsUpperBound() {
			found = r
			n++
		}
	}
	return found, n == 1
}

// Validate checks d and returns an error with code INVALID_SECTION describing
// the first rule it breaks:
//
//  1. The id must be non-empty.
//  2. There must be at least one size rule.
//  3. Exactly one rule must have screen_min_width without screen_max_width.
//  4. Every rule must declare a screen bound, and every declared length must be non-empty.
//
// Rule 4 goes beyond what earlier section files were held to: a rule without
// bounds used to render as "(max-width: ) X" and is now rejected.
func Validate(d Definition) error {
	if d.ID == "" {
		return errors.New(errors.ErrCodeInvalidSection, msgMissingID)
	}
	if len(d.Sizes) == 0 {
		return errors.New(errors.ErrCodeInvalidSection, msgMissingSizes)
	}
	if _, ok := d.UpperBound(); !ok {
		return errors.New(errors.ErrCodeInvalidSection, msgUpperBound)
	}
	for i, r := range d.Sizes {
		if err := validateRule(r); err != nil {
			return errors.New(errors.ErrCodeInvalidSection, "Section '%s' size %d %s.", d.ID, i, err)
		}
	}
	return nil
}

func validateRule(r SizeRule) error {
	switch {
	case !r.HasMin() && !r.HasMax():
		return fmt.Errorf("must have screen_min_width or screen_max_width")
	case r.HasMin() && *r.ScreenMinWidth == "":
		return fmt.Errorf("has an empty screen_min_width")
	case r.HasMax() && *r.ScreenMaxWidth == "":
		return fmt.Errorf("has an empty screen_max_width")
	case r.ContainerMaxWidth == "":
		return fmt.Errorf("must have a container_max_width")
	}
	return nil
}
