package main

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/funvibe/vela/internal/backend"
	"github.com/funvibe/vela/internal/logging"
	"github.com/funvibe/vela/internal/pipeline"
)

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := s.update(uri, params.TextDocument.Text)
	logging.Get("lsp").Debugf("opened %s", uri)
	s.publishDiagnostics(ctx, uri, doc)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	// Full sync: the last change holds the whole document
	if len(params.ContentChanges) == 0 {
		return nil
	}
	whole, ok := params.ContentChanges[len(params.ContentChanges)-1].(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	uri := params.TextDocument.URI
	doc := s.update(uri, whole.Text)
	s.publishDiagnostics(ctx, uri, doc)
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.documents, uri)
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// update compiles content and stores it as the current state of uri
func (s *Server) update(uri protocol.DocumentUri, content string) *DocumentState {
	doc := &DocumentState{
		Content: content,
		Context: analyzeDocument(content, uriToPath(uri)),
	}
	s.mu.Lock()
	s.documents[uri] = doc
	s.mu.Unlock()
	return doc
}

func analyzeDocument(content, path string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(content)
	ctx.FilePath = path
	return pipeline.New(&backend.CompilerProcessor{}).Run(ctx)
}

func uriToPath(uri protocol.DocumentUri) string {
	return strings.TrimPrefix(string(uri), "file://")
}
