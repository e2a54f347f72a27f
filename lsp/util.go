package lsp

import (
	"strings"
	"unicode/utf16"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/rlch/pegls"
)

// spanToRange converts a pegls.Span to an LSP protocol.Range.
// pegls uses 1-based line/column in UTF-16 units, LSP uses 0-based.
func spanToRange(span pegls.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(max(0, span.Start.Line-1)),   //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.Start.Column-1)), //nolint:gosec // G115: values are small column numbers
		},
		End: protocol.Position{
			Line:      uint32(max(0, span.End.Line-1)),   //nolint:gosec // G115: values are small line numbers
			Character: uint32(max(0, span.End.Column-1)), //nolint:gosec // G115: values are small column numbers
		},
	}
}

// prefixRange is the range of name written at the start of r.
func prefixRange(name string, r protocol.Range) protocol.Range {
	return protocol.Range{
		Start: r.Start,
		End: protocol.Position{
			Line:      r.Start.Line,
			Character: r.Start.Character + uint32(len(utf16.Encode([]rune(name)))), //nolint:gosec // names are short
		},
	}
}

// URIToPath converts a file URI to a file system path. Other URIs are
// returned unchanged.
func URIToPath(u protocol.DocumentURI) string {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return string(u)
	}

	return u.Filename()
}

// PathToURI converts a file system path to a document URI.
func PathToURI(path string) protocol.DocumentURI {
	return uri.File(path)
}
