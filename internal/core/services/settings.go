package services

import (
	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driven"
	"github.com/chengahtung/local-lode/internal/core/ports/driving"
	"github.com/chengahtung/local-lode/internal/logger"
)

// SettingsManager validates and applies settings changes on top of the
// persistence layer. Validation runs against the would-be result, so a
// patch that leaves the settings inconsistent is rejected before anything
// is written.
type SettingsManager struct {
	store driven.SettingsStore
}

// NewSettingsManager creates a manager over the given store.
func NewSettingsManager(store driven.SettingsStore) *SettingsManager {
	return &SettingsManager{store: store}
}

var _ driving.SettingsService = (*SettingsManager)(nil)

// Get returns the current settings snapshot.
func (m *SettingsManager) Get() (domain.Settings, error) {
	return m.store.GetAll()
}

// Update validates the patched result and persists it.
func (m *SettingsManager) Update(patch domain.SettingsPatch) (domain.Settings, error) {
	current, err := m.store.GetAll()
	if err != nil {
		return domain.Settings{}, err
	}
	if err := patch.Apply(current).Validate(); err != nil {
		return domain.Settings{}, err
	}

	updated, err := m.store.Update(patch)
	if err != nil {
		return domain.Settings{}, err
	}
	logger.Debug("settings updated")
	return updated, nil
}

// ResetKBFolder restores the corpus folder to its original value.
func (m *SettingsManager) ResetKBFolder() (domain.Settings, error) {
	return m.store.ResetKBFolder()
}
