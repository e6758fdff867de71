package main

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/funvibe/vela/internal/backend"
	"github.com/funvibe/vela/internal/pipeline"
)

var keywordDocs = map[string]string{
	"true":  "`true`: the boolean true",
	"false": "`false`: the boolean false",
	"nil":   "`nil`: the absence of a value",
	"null":  "`null`: the absence of a value, same as `nil`",
}

func (s *Server) hover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}

	text := hoverText(doc, int(params.Position.Line), int(params.Position.Character))
	if text == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

// hoverText documents the keyword under the cursor, or shows what the
// whole document evaluates to.
func hoverText(doc *DocumentState, line, char int) string {
	word := getWordAtPosition(doc.Content, line, char)
	if help, ok := keywordDocs[word]; ok {
		return help
	}
	if word == "" || doc.Context.Failed() {
		return ""
	}

	// Compiled chunks are immutable, so a fresh VM can run the cached one
	run := pipeline.NewPipelineContext(doc.Content)
	run.Chunk = doc.Context.Chunk
	run = pipeline.New(backend.NewExecutionProcessor(backend.NewVM(nil))).Run(run)

	if run.Failed() {
		return fmt.Sprintf("runtime error: %s", run.Errors[0].Message)
	}
	return fmt.Sprintf("```\n%s\n```", run.Result.Inspect())
}
