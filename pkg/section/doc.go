// Package section models responsive image sections: named layout contexts
// carrying a table of breakpoint rules.
//
// # Definitions
//
// A [Definition] has an id and an ordered list of [SizeRule] values. Each
// rule maps a viewport condition (a minimum and/or maximum screen width) to
// the maximum width the image container occupies under that condition.
// Exactly one rule must have a minimum but no maximum screen width; it is
// the upper bound anchoring the largest breakpoint.
//
//	def := section.Definition{
//	    ID: "single-content",
//	    Sizes: []section.SizeRule{
//	        {ScreenMinWidth: section.Bound("1200px"), ContainerMaxWidth: "800px"},
//	        {ScreenMaxWidth: section.Bound("600px"), ContainerMaxWidth: "400px"},
//	    },
//	}
//
// Rules may overlap or contradict each other; no ordering between the upper
// bound and the other rules is enforced.
//
// # Registry
//
// [Registry] validates and stores definitions. Invalid definitions are
// rejected as a whole and reported through [diag.Diagnostics]; registering
// an id again replaces the earlier definition. Entries are never removed.
//
// # Stack
//
// [Stack] tracks the sections active while a page renders. Callers bracket a
// region with [Stack.Begin] and [Stack.End]; the top [Activation] is the
// section images are currently sized for. Ending a section out of order
// discards it together with every section begun after it.
//
// # Concurrency
//
// A Registry is safe for concurrent use and is normally shared by every
// render once setup has finished. A Stack belongs to exactly one render and
// must not be shared between goroutines.
//
// [diag.Diagnostics]: github.com/matzehuels/respimg/pkg/diag.Diagnostics
package section
