package lsp_test

import (
	"context"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"go.lsp.dev/protocol"
)

func TestServer_DocumentHighlight(t *testing.T) {
	t.Parallel()

	server, client := newTestServer(t)
	openDocument(t, server, client, "start = foo \"x\" foo\nfoo = \"b\"")

	tests := []struct {
		name string
		pos  protocol.TextDocumentPositionParams
		want []protocol.DocumentHighlight
	}{
		{
			name: "from a reference",
			pos:  position(0, 9),
			want: []protocol.DocumentHighlight{
				{Range: rng(0, 8, 0, 11), Kind: protocol.DocumentHighlightKindRead},
				{Range: rng(0, 16, 0, 19), Kind: protocol.DocumentHighlightKindRead},
				{Range: rng(1, 0, 1, 3), Kind: protocol.DocumentHighlightKindWrite},
			},
		},
		{
			name: "from the declaration",
			pos:  position(0, 2),
			want: []protocol.DocumentHighlight{
				{Range: rng(0, 0, 0, 5), Kind: protocol.DocumentHighlightKindWrite},
			},
		},
		{
			name: "literal",
			pos:  position(0, 13),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := server.DocumentHighlight(context.Background(), &protocol.DocumentHighlightParams{
				TextDocumentPositionParams: tt.pos,
			})
			if err != nil {
				t.Fatalf("DocumentHighlight() error: %v", err)
			}

			if diff := gocmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DocumentHighlight mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestServer_Hover(t *testing.T) {
	t.Parallel()

	server, client := newTestServer(t)
	openDocument(t, server, client, "start = foo foo\nfoo \"letter\" = \"b\"")

	hover, err := server.Hover(context.Background(), &protocol.HoverParams{
		TextDocumentPositionParams: position(0, 9),
	})
	if err != nil {
		t.Fatalf("Hover() error: %v", err)
	}

	if hover == nil {
		t.Fatal("Hover() returned nil over a rule reference")
	}

	want := "```peggy\nfoo \"letter\" = \"b\"\n```\n\n2 references"
	if hover.Contents.Value != want {
		t.Errorf("Hover content = %q, want %q", hover.Contents.Value, want)
	}

	if hover.Range == nil || *hover.Range != rng(0, 8, 0, 11) {
		t.Errorf("Hover range = %v", hover.Range)
	}

	hover, err = server.Hover(context.Background(), &protocol.HoverParams{
		TextDocumentPositionParams: position(0, 1),
	})
	if err != nil || hover == nil {
		t.Fatalf("Hover() on start rule = %v, %v", hover, err)
	}

	if want := "```peggy\nstart = foo foo\n```\n\nStart rule"; hover.Contents.Value != want {
		t.Errorf("Hover content = %q, want %q", hover.Contents.Value, want)
	}

	hover, err = server.Hover(context.Background(), &protocol.HoverParams{
		TextDocumentPositionParams: position(1, 7),
	})
	if err != nil || hover != nil {
		t.Errorf("Hover() on a display name = %v, %v; want nil", hover, err)
	}
}
