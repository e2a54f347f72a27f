package lsp_test

import (
	"context"
	"testing"
	"time"

	gocmp "github.com/google/go-cmp/cmp"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/rlch/pegls/lsp"
)

type rpcReply struct {
	result any
	err    error
}

// send delivers a message to h the way the connection's read loop does and
// returns a channel receiving its reply.
func send(t *testing.T, ctx context.Context, h jsonrpc2.Handler, req jsonrpc2.Request) <-chan rpcReply {
	t.Helper()

	replies := make(chan rpcReply, 1)

	err := h(ctx, func(_ context.Context, result any, err error) error {
		replies <- rpcReply{result: result, err: err}

		return nil
	}, req)
	if err != nil {
		t.Fatalf("handler error for %s: %v", req.Method(), err)
	}

	return replies
}

func newCall(t *testing.T, id int32, method string, params any) jsonrpc2.Request {
	t.Helper()

	call, err := jsonrpc2.NewCall(jsonrpc2.NewNumberID(id), method, params)
	if err != nil {
		t.Fatalf("NewCall(%s) error: %v", method, err)
	}

	return call
}

func newNotification(t *testing.T, method string, params any) jsonrpc2.Request {
	t.Helper()

	n, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		t.Fatalf("NewNotification(%s) error: %v", method, err)
	}

	return n
}

func TestHandler_WaitingQueryDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	const other = protocol.DocumentURI("file:///other.peggy")

	server, client := newTestServer(t)

	err := server.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: other, Version: 1, Text: scenario},
	})
	if err != nil {
		t.Fatalf("DidOpen() error: %v", err)
	}

	client.waitDiagnostics(t)

	// Validations scheduled from here on sit in the debouncer for the rest
	// of the test, while other.peggy keeps its finished analysis.
	client.setConfig(map[string]any{"debounceMS": 10000})

	err = server.DidChangeConfiguration(context.Background(), &protocol.DidChangeConfigurationParams{})
	if err != nil {
		t.Fatalf("DidChangeConfiguration() error: %v", err)
	}

	h := lsp.Handler(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opened := send(t, ctx, h, newNotification(t, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, Version: 1, Text: scenario},
	}))

	completion := send(t, ctx, h, newCall(t, 1, protocol.MethodTextDocumentCompletion, &protocol.CompletionParams{
		TextDocumentPositionParams: position(0, 13),
	}))

	definition := send(t, ctx, h, newCall(t, 2, protocol.MethodTextDocumentDefinition, &protocol.DefinitionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: other},
			Position:     protocol.Position{Line: 0, Character: 13},
		},
	}))

	select {
	case r := <-opened:
		if r.err != nil {
			t.Fatalf("didOpen error: %v", r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("didOpen was not handled")
	}

	select {
	case r := <-definition:
		if r.err != nil {
			t.Fatalf("definition error: %v", r.err)
		}

		want := []protocol.Location{{URI: other, Range: rng(1, 0, 1, 9)}}
		if diff := gocmp.Diff(want, r.result); diff != "" {
			t.Errorf("definition mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("definition on a validated document queued behind a waiting completion")
	}

	select {
	case r := <-completion:
		t.Fatalf("completion answered before its document was validated: %+v", r)
	default:
	}

	// Canceling the request ends the wait.
	cancel()

	select {
	case <-completion:
	case <-time.After(2 * time.Second):
		t.Fatal("canceled completion never replied")
	}
}

func TestHandler_NotificationsStayOrdered(t *testing.T) {
	t.Parallel()

	server, client := newTestServerWithConfig(t, map[string]any{"debounceMS": 50})
	h := lsp.Handler(server)
	ctx := context.Background()

	send(t, ctx, h, newNotification(t, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: testURI, Version: 1, Text: `start = "a`},
	}))

	send(t, ctx, h, newNotification(t, protocol.MethodTextDocumentDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: scenario}},
	}))

	// The outline waits for the validation of the latest text.
	symbols := send(t, ctx, h, newCall(t, 1, protocol.MethodTextDocumentDocumentSymbol, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	}))

	diag := client.waitDiagnostics(t)
	for diag.Version < 2 {
		diag = client.waitDiagnostics(t)
	}

	if len(diag.Diagnostics) != 0 {
		t.Fatalf("diagnostics = %+v, want a clean version 2", diag)
	}

	select {
	case r := <-symbols:
		if r.err != nil {
			t.Fatalf("documentSymbol error: %v", r.err)
		}

		result, ok := r.result.([]any)
		if !ok || len(result) != 2 {
			t.Errorf("documentSymbol result = %#v, want two rules", r.result)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("documentSymbol never replied")
	}
}
