package pipeline

import "github.com/funvibe/vela/internal/logging"

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	log := logging.Get("pipeline")
	ctx := initialCtx
	for _, processor := range p.processors {
		log.Debugf("stage %T", processor)
		ctx = processor.Process(ctx)
		// Stages skip themselves when an earlier stage failed, so every
		// processor still sees the context.
	}
	return ctx
}
