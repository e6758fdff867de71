package main

import (
	"sort"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) completion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, ok := s.document(params.TextDocument.URI)
	if !ok {
		return []protocol.CompletionItem{}, nil
	}
	prefix := getPrefixAtPosition(doc.Content, int(params.Position.Line), int(params.Position.Character))
	return completionItems(prefix), nil
}

// completionItems lists the literal keywords starting with prefix
func completionItems(prefix string) []protocol.CompletionItem {
	names := make([]string, 0, len(keywordDocs))
	for name := range keywordDocs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	kind := protocol.CompletionItemKindKeyword
	items := make([]protocol.CompletionItem, 0, len(names))
	for _, name := range names {
		detail := keywordDocs[name]
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items
}
