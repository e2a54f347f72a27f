package lsp

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
	"github.com/rlch/pegls/compiler"
)

// validation is the outcome of compiling one document version.
type validation struct {
	grammar  *pegls.Grammar
	problems []compiler.Problem

	// err is set for failures that are neither syntax nor grammar errors.
	err   error
	stack string
}

// validate recompiles a document, publishes its diagnostics and stores the
// result for queries. It runs on the debouncer, one document version at a
// time.
func (s *Server) validate(ctx context.Context, doc Document) error {
	// Queries arriving from here on wait for this run.
	gen := s.analyses.Delete(doc.URI)

	s.logger.Debug("Validate",
		zap.String("uri", string(doc.URI)),
		zap.Int32("version", doc.Version))

	v := compileDocument(doc)

	if !s.documents.IsOpen(doc.URI) {
		s.logger.Debug("Document closed during validation", zap.String("uri", string(doc.URI)))
		s.analyses.Remove(doc.URI)

		return nil
	}

	settings := s.Settings()
	diagnostics := s.convertProblems(ctx, doc.URI, v.problems, settings)

	if v.err != nil {
		diagnostics = append(diagnostics, s.unexpectedDiagnostic(ctx, doc.URI, v))
	}

	// The document may have closed while problems were converted.
	if !s.analyses.Fill(doc.URI, gen, &Analysis{Grammar: v.grammar, Version: doc.Version}) {
		s.logger.Debug("Analysis discarded", zap.String("uri", string(doc.URI)), zap.Uint64("generation", gen))

		return nil
	}

	s.publishDiagnostics(ctx, doc.URI, doc.Version, diagnostics)

	return nil
}

// compileDocument parses and checks the text of doc. Panics inside the
// parser or compiler are turned into an unexpected failure.
func compileDocument(doc Document) (v validation) {
	defer func() {
		if r := recover(); r != nil {
			v = validation{
				err:   fmt.Errorf("panic: %v", r),
				stack: string(debug.Stack()),
			}
		}
	}()

	source := string(doc.URI)

	g, err := pegls.Parse(doc.Content, pegls.ParseOptions{
		SourceID:      source,
		ReservedWords: pegls.ReservedWords,
	})
	if err != nil {
		return failedValidation(err)
	}

	session, err := compiler.Compile(g, compiler.ValidationPasses(), compiler.Options{
		SourceID: source,
		Output:   compiler.OutputSession,
	})
	if err != nil {
		return failedValidation(err)
	}

	return validation{grammar: g, problems: session.Problems}
}

func failedValidation(err error) validation {
	var (
		syntaxErr  *pegls.SyntaxError
		grammarErr *compiler.GrammarError
	)

	switch {
	case errors.As(err, &syntaxErr):
		span := syntaxErr.Span

		return validation{problems: []compiler.Problem{{
			Severity: compiler.SeverityError,
			Message:  syntaxErr.Message,
			Location: &span,
		}}}
	case errors.As(err, &grammarErr):
		return validation{problems: grammarErr.Problems}
	default:
		return validation{err: err}
	}
}

// unexpectedDiagnostic logs an unexpected failure and returns the
// diagnostic reporting it at the start of the document.
func (s *Server) unexpectedDiagnostic(ctx context.Context, uri protocol.DocumentURI, v validation) protocol.Diagnostic {
	detail := v.err.Error()
	if v.stack != "" {
		detail = v.err.Error() + "\n" + v.stack
	}

	s.logger.Error("Unexpected validation error",
		zap.String("uri", string(uri)),
		zap.Error(v.err),
		zap.String("stack", v.stack))

	s.logMessage(ctx, protocol.MessageTypeError, "UNEXPECTED ERROR")
	s.logMessage(ctx, protocol.MessageTypeError, detail)

	return protocol.Diagnostic{
		Severity: protocol.DiagnosticSeverityError,
		Source:   diagnosticSource,
		Message:  detail,
	}
}
