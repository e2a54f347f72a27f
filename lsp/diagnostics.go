package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
	"github.com/rlch/pegls/compiler"
)

// diagnosticSource names this server in published diagnostics.
const diagnosticSource = "pegls"

// convertProblems turns compiler problems into LSP diagnostics. Problems
// without a location go to the client log instead, and only when
// ConsoleInfo is set. Located info problems are dropped unless MarkInfo is
// set.
func (s *Server) convertProblems(
	ctx context.Context,
	uri protocol.DocumentURI,
	problems []compiler.Problem,
	settings pegls.Settings,
) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(problems))

	for _, p := range problems {
		if p.Location == nil {
			if settings.ConsoleInfo {
				s.logMessage(ctx, protocol.MessageTypeLog, fmt.Sprintf("%s: %s", p.Severity, p.Message))

				for _, n := range p.Related {
					s.logMessage(ctx, protocol.MessageTypeLog, "  "+n.Message)
				}
			}

			continue
		}

		if p.Severity == compiler.SeverityInfo && !settings.MarkInfo {
			continue
		}

		diagnostics = append(diagnostics, convertProblem(uri, p))
	}

	return diagnostics
}

// convertProblem converts a located compiler.Problem to an LSP diagnostic.
func convertProblem(uri protocol.DocumentURI, p compiler.Problem) protocol.Diagnostic {
	d := protocol.Diagnostic{
		Range:    spanToRange(*p.Location),
		Severity: convertSeverity(p.Severity),
		Source:   diagnosticSource,
		Message:  p.Message,
	}

	for _, n := range p.Related {
		// Notes carry the source they were parsed from.
		target := uri
		if n.Location.Start.Filename != "" {
			target = protocol.DocumentURI(n.Location.Start.Filename)
		}

		d.RelatedInformation = append(d.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: target, Range: spanToRange(n.Location)},
			Message:  n.Message,
		})
	}

	return d
}

// convertSeverity converts compiler severity to LSP severity.
func convertSeverity(sev compiler.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case compiler.SeverityError:
		return protocol.DiagnosticSeverityError
	case compiler.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case compiler.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

// publishDiagnostics replaces the client's diagnostics for uri.
func (s *Server) publishDiagnostics(
	ctx context.Context,
	uri protocol.DocumentURI,
	version int32,
	diagnostics []protocol.Diagnostic,
) {
	for _, d := range diagnostics {
		s.logger.Debug("Publishing diagnostic",
			zap.Uint32("lsp.start.line", d.Range.Start.Line),
			zap.Uint32("lsp.start.char", d.Range.Start.Character),
			zap.String("message", d.Message))
	}

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     uint32(max(version, 0)), //nolint:gosec // clamped to non-negative
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Error("Failed to publish diagnostics", zap.Error(err))
	}
}

// logMessage writes to the client's output console.
func (s *Server) logMessage(ctx context.Context, typ protocol.MessageType, msg string) {
	err := s.client.LogMessage(ctx, &protocol.LogMessageParams{Type: typ, Message: msg})
	if err != nil {
		s.logger.Error("Failed to log message to client", zap.Error(err))
	}
}
