package main

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/funvibe/vela/internal/diagnostics"
)

func (s *Server) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, doc *DocumentState) {
	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: convertDiagnostics(doc.Context.Errors, doc.Content),
	})
}

// convertDiagnostics maps each error to the whole of its source line;
// diagnostics carry no column.
func convertDiagnostics(errs []*diagnostics.DiagnosticError, content string) []protocol.Diagnostic {
	result := make([]protocol.Diagnostic, 0, len(errs))
	severity := protocol.DiagnosticSeverityError
	source := "vela"

	for _, err := range errs {
		line := err.Line - 1 // LSP lines are 0-based
		if line < 0 {
			line = 0
		}
		width := len(getLine(content, line))

		result = append(result, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
				End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(width)},
			},
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: string(err.Code)},
			Source:   &source,
			Message:  "Error" + err.Where + ": " + err.Message,
		})
	}
	return result
}
