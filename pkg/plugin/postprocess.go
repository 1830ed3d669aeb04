package plugin

import (
	"context"

	"github.com/matzehuels/respimg/pkg/section"
)

// PostProcessInput is everything known about a generated sizes expression.
type PostProcessInput struct {
	Sizes   string             // Expression generated for the active section
	Request ImageRequest       // The host's request
	Section section.Definition // The active section
	Context any                // Context given when the section was begun
}

// SizesPostProcessor adjusts a generated sizes expression before it is
// returned to the host.
type SizesPostProcessor interface {
	PostProcessSizes(ctx context.Context, in PostProcessInput) string
}

// PostProcessorFunc adapts a function to the SizesPostProcessor interface.
type PostProcessorFunc func(ctx context.Context, in PostProcessInput) string

// PostProcessSizes calls f(ctx, in).
func (f PostProcessorFunc) PostProcessSizes(ctx context.Context, in PostProcessInput) string {
	return f(ctx, in)
}

// Identity returns generated expressions unchanged.
type Identity struct{}

// PostProcessSizes returns in.Sizes.
func (Identity) PostProcessSizes(_ context.Context, in PostProcessInput) string {
	return in.Sizes
}

// Chain runs post-processors in order, each receiving the previous result.
type Chain []SizesPostProcessor

// PostProcessSizes implements SizesPostProcessor.
func (c Chain) PostProcessSizes(ctx context.Context, in PostProcessInput) string {
	for _, pp := range c {
		if pp == nil {
			continue
		}
		in.Sizes = pp.PostProcessSizes(ctx, in)
	}
	return in.Sizes
}
