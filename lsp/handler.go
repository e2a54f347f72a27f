package lsp

import (
	"context"
	"io"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// waitingMethods may suspend until a pending validation finishes.
var waitingMethods = map[string]bool{
	protocol.MethodTextDocumentCompletion:     true,
	protocol.MethodTextDocumentDefinition:     true,
	protocol.MethodTextDocumentDocumentSymbol: true,
}

// Handler returns the JSON-RPC handler for server. Messages start in
// arrival order off the read loop and $/cancelRequest ends a wait.
func Handler(server *Server) jsonrpc2.Handler {
	return protocol.CancelHandler(
		orderedHandler(
			jsonrpc2.ReplyHandler(
				protocol.ServerHandler(server, jsonrpc2.MethodNotFoundHandler),
			),
		),
	)
}

// orderedHandler runs each message once the one before it is done, like
// jsonrpc2.AsyncHandler. Requests that may wait for a validation count as
// done as soon as they start, so later messages never queue behind them.
func orderedHandler(handler jsonrpc2.Handler) jsonrpc2.Handler {
	next := make(chan struct{})
	close(next)

	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		previous := next
		next = make(chan struct{})
		release := next

		if waitingMethods[req.Method()] {
			go func() {
				<-previous
				close(release)

				_ = handler(ctx, reply, req)
			}()

			return nil
		}

		innerReply := reply
		reply = func(ctx context.Context, result any, err error) error {
			close(release)

			return innerReply(ctx, result, err)
		}

		go func() {
			<-previous

			_ = handler(ctx, reply, req)
		}()

		return nil
	}
}

// Serve runs a server over rwc until the connection closes.
func Serve(ctx context.Context, logger *zap.Logger, rwc io.ReadWriteCloser) error {
	// Create a JSON-RPC stream connection
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)

	// Create a client to send notifications to the editor
	client := protocol.ClientDispatcher(conn, logger)

	server := NewServer(client, logger)
	defer server.Close()

	conn.Go(ctx, Handler(server))

	// Wait for the connection to close
	<-conn.Done()

	return conn.Err()
}
