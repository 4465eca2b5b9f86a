package ai

import (
	"go.uber.org/zap"
)

// ProviderManager picks the streaming provider for a request. Web-search
// requests go to the search-capable provider when it is configured and fall
// back to the primary otherwise.
type ProviderManager struct {
	primary   StreamProvider
	webSearch StreamProvider
	logger    *zap.Logger
}

// NewProviderManager creates a new provider manager. webSearch may be nil.
func NewProviderManager(primary, webSearch StreamProvider, logger *zap.Logger) *ProviderManager {
	return &ProviderManager{
		primary:   primary,
		webSearch: webSearch,
		logger:    logger,
	}
}

// Select returns the provider for the request, or nil when none is configured.
func (m *ProviderManager) Select(req *ChatRequest) StreamProvider {
	if req.WebSearch && m.webSearch != nil && m.webSearch.Configured() {
		return m.webSearch
	}
	if m.primary != nil && m.primary.Configured() {
		if req.WebSearch {
			m.logger.Debug("Web search provider unavailable, using primary",
				zap.String("provider", m.primary.Name()))
			req.WebSearch = false
		}
		return m.primary
	}
	return nil
}

// Configured reports whether any provider can serve requests.
func (m *ProviderManager) Configured() bool {
	return (m.primary != nil && m.primary.Configured()) ||
		(m.webSearch != nil && m.webSearch.Configured())
}
