// Package pipeline runs a top-level document through the stages that turn it
// into a result: decoding into a command, then applying it to a session.
package pipeline

import (
	"context"

	"github.com/maxsklar/newmap.ai.nyu/internal/session"
	"github.com/maxsklar/newmap.ai.nyu/internal/typesystem"
)

// PipelineContext carries one document through the stages.
type PipelineContext struct {
	Context context.Context
	Node    interface{}
	Command session.Command
	Result  typesystem.Object
	Err     error
}

// Processor is one stage. A stage sees the context even after an earlier
// stage failed and must leave it unchanged in that case.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}

// Decoder reads Node as a command.
type Decoder struct{}

func (Decoder) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Err != nil {
		return ctx
	}
	ctx.Command, ctx.Err = session.CommandFromNode(ctx.Node)
	return ctx
}

// Applier applies the decoded command to a session.
type Applier struct {
	Session *session.Session
}

func (a Applier) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Err != nil {
		return ctx
	}
	c := ctx.Context
	if c == nil {
		c = context.Background()
	}
	ctx.Result, ctx.Err = a.Session.Apply(c, ctx.Command)
	return ctx
}

// ForSession returns the standard pipeline for s.
func ForSession(s *session.Session) *Pipeline {
	return New(Decoder{}, Applier{Session: s})
}
