// Package sizes turns a section definition into a CSS sizes expression.
//
// [Generate] orders the section's rules by their minimum screen width,
// renders one media condition per rule and appends the image's own width
// as the unconditional fallback the sizes grammar requires:
//
//	(max-width: 600px) 400px, (min-width: 1200px) 800px, 300px
//
// The image width is read from the host's default sizes string with
// [ParseWidth]; a host string without a trailing ", <n>px" is a
// [errors.ParseError].
//
// [errors.ParseError]: github.com/matzehuels/respimg/pkg/errors.ParseError
package sizes

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/respimg/pkg/errors"
	"github.com/matzehuels/respimg/pkg/section"
)

// trailingWidth matches the fallback width at the end of a host sizes string.
var trailingWidth = regexp.MustCompile(`,\s*(\d+)px\s*$`)

// Generate returns the sizes expression for an image of width pixels
// displayed inside def. It does not modify def.
func Generate(width int, def section.Definition) string {
	rules := slices.Clone(def.Sizes)
	slices.SortStableFunc(rules, func(a, b section.SizeRule) int {
		return cmp.Compare(a.MinKey(), b.MinKey())
	})

	clauses := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		clauses = append(clauses, Clause(r))
	}
	clauses = append(clauses, fmt.Sprintf("%dpx", width))
	return strings.Join(clauses, ", ")
}

// Clause renders one rule as a media condition followed by the container width.
// Bounds that are absent or empty are left out of the condition.
func Clause(r section.SizeRule) string {
	minW := bound(r.ScreenMinWidth)
	maxW := bound(r.ScreenMaxWidth)
	switch {
	case minW != "" && maxW != "":
		return fmt.Sprintf("(min-width: %s) and (max-width: %s) %s", minW, maxW, r.ContainerMaxWidth)
	case minW != "":
		return fmt.Sprintf("(min-width: %s) %s", minW, r.ContainerMaxWidth)
	default:
		return fmt.Sprintf("(max-width: %s) %s", maxW, r.ContainerMaxWidth)
	}
}

func bound(l *section.Length) string {
	if l == nil {
		return ""
	}
	return string(*l)
}

// ParseWidth extracts the image width in pixels from the end of a host sizes
// string such as "(max-width: 600px) 100vw, 600px".
func ParseWidth(sizes string) (int, error) {
	m := trailingWidth.FindStringSubmatch(sizes)
	if m == nil {
		return 0, &errors.ParseError{Input: sizes}
	}
	width, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidSizes, err, "image width %s out of range", m[1])
	}
	return width, nil
}
