package cache

import "github.com/matzehuels/respimg/pkg/section"

// ScopedKeyer wraps a Keyer with a prefix so that several sites sharing one
// Redis instance keep separate namespaces.
//
// Example usage:
//
//	blogKeyer := NewScopedKeyer(NewDefaultKeyer(), "site:blog:")
//	shopKeyer := NewScopedKeyer(NewDefaultKeyer(), "site:shop:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SizesKey generates a prefixed key for a sizes expression.
func (k *ScopedKeyer) SizesKey(width int, def section.Definition) string {
	return k.prefix + k.inner.SizesKey(width, def)
}
