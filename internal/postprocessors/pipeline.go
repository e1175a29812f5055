// Package postprocessors cleans extracted text before chunking. Each source
// type has a profile: an ordered list of named regex steps built from a Registry.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/proctok/internal/core/ports/driven"
	"github.com/custodia-labs/proctok/internal/logger"
)

// Pipeline runs cleaning steps in order.
type Pipeline struct {
	steps []driven.TextProcessor
}

var _ driven.TextPipeline = (*Pipeline)(nil)

// NewPipeline returns a pipeline running steps in the given order.
func NewPipeline(steps ...driven.TextProcessor) *Pipeline {
	return &Pipeline{steps: steps}
}

// Process feeds text through every step. It stops at the first failure or
// when ctx is done.
func (p *Pipeline) Process(ctx context.Context, text string) (string, error) {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		before := len(text)
		out, err := step.Process(ctx, text)
		if err != nil {
			return "", fmt.Errorf("processor %s: %w", step.Name(), err)
		}
		if logger.IsVerbose() && len(out) != before {
			logger.Debug("clean %s: %d -> %d bytes", step.Name(), before, len(out))
		}
		text = out
	}
	return text, nil
}

// Add appends a step.
func (p *Pipeline) Add(step driven.TextProcessor) {
	p.steps = append(p.steps, step)
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// Names lists step names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		names = append(names, s.Name())
	}
	return names
}
