package lsp

import (
	"context"
	"errors"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/pegls"
)

// configSection is the client configuration section holding our settings.
const configSection = "peggyLanguageServer"

// Settings returns the settings currently in effect.
func (s *Server) Settings() pegls.Settings {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()

	return s.settings
}

// loadFileSettings reads .pegls.yaml from the workspace. They become the
// defaults that client settings are layered over.
func (s *Server) loadFileSettings(root string) {
	settings, err := pegls.LoadConfig(root)
	if err != nil {
		if !errors.Is(err, pegls.ErrConfigNotFound) {
			s.logger.Warn("Failed to load config", zap.String("root", root), zap.Error(err))
		}

		return
	}

	s.settingsMu.Lock()
	s.fileSettings = settings
	s.settingsMu.Unlock()

	s.applySettings(settings)
}

// fetchSettings asks the client for our configuration section. When the
// client has none, pushed settings from didChangeConfiguration are used.
func (s *Server) fetchSettings(ctx context.Context, pushed any) pegls.Settings {
	s.settingsMu.RLock()
	base := s.fileSettings
	s.settingsMu.RUnlock()

	items, err := s.client.Configuration(ctx, &protocol.ConfigurationParams{
		Items: []protocol.ConfigurationItem{{Section: configSection}},
	})
	if err != nil {
		s.logger.Warn("Failed to fetch configuration", zap.Error(err))
	}

	var raw any
	if len(items) > 0 {
		raw = items[0]
	}

	if raw == nil {
		if m, ok := pushed.(map[string]any); ok {
			raw = m[configSection]
		}
	}

	if raw == nil {
		return base
	}

	settings, err := decodeSettings(raw, base)
	if err != nil {
		s.logger.Warn("Invalid configuration", zap.Error(err))

		return base
	}

	return settings
}

// applySettings makes settings current and applies the debounce window to
// validations scheduled from now on.
func (s *Server) applySettings(settings pegls.Settings) {
	s.settingsMu.Lock()
	s.settings = settings
	s.settingsMu.Unlock()

	s.validator.SetWait(settings.Debounce())

	s.logger.Debug("Settings",
		zap.Bool("consoleInfo", settings.ConsoleInfo),
		zap.Bool("markInfo", settings.MarkInfo),
		zap.Int("debounceMS", settings.DebounceMS))
}

// decodeSettings overlays the JSON object raw onto base. Keys missing from
// raw keep their base value.
func decodeSettings(raw any, base pegls.Settings) (pegls.Settings, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return base, err
	}

	settings := base

	err = json.Unmarshal(data, &settings)
	if err != nil {
		return base, err
	}

	return settings, nil
}
