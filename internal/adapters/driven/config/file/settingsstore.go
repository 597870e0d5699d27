// Package file provides a TOML-backed settings store. Settings live in
// ~/.local-lode/config.toml by default; a missing file means defaults.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore persists settings as a TOML file.
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
	settings domain.Settings
}

// NewSettingsStore creates a TOML settings store. If configDir is empty,
// ~/.local-lode is used. The directory is created when missing; a missing
// config file yields the defaults.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".local-lode")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
		settings: domain.DefaultSettings(),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// GetAll returns the current settings snapshot.
func (s *SettingsStore) GetAll() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// Update applies a partial update and persists the result.
func (s *SettingsStore) Update(patch domain.SettingsPatch) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := patch.Apply(s.settings)
	if err := s.save(updated); err != nil {
		return domain.Settings{}, err
	}
	s.settings = updated
	return updated, nil
}

// ResetKBFolder restores kb_folder from original_kb_folder.
func (s *SettingsStore) ResetKBFolder() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.settings
	updated.KBFolder = updated.OriginalKBFolder
	if err := s.save(updated); err != nil {
		return domain.Settings{}, err
	}
	s.settings = updated
	return updated, nil
}

func (s *SettingsStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	settings := domain.DefaultSettings()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	s.settings = settings
	return nil
}

func (s *SettingsStore) save(settings domain.Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Write-then-rename keeps a crash from truncating the config.
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
