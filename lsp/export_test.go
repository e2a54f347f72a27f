package lsp

import "go.lsp.dev/protocol"

// StoredAnalysis returns the analysis stored for uri without waiting.
func (s *Server) StoredAnalysis(uri protocol.DocumentURI) (*Analysis, bool) {
	return s.analyses.Get(uri)
}

// AnalysisGeneration returns how many validations have started for uri.
func (s *Server) AnalysisGeneration(uri protocol.DocumentURI) uint64 {
	return s.analyses.Generation(uri)
}

// AnalysisSlots returns how many documents hold an analysis slot, filled or
// waiting.
func (s *Server) AnalysisSlots() int {
	return s.analyses.Len()
}
