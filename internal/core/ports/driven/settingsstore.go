package driven

import "github.com/chengahtung/local-lode/internal/core/domain"

// SettingsStore persists the tool's tunable parameters. Implementations
// return defaults until the first update.
type SettingsStore interface {
	// GetAll returns the current settings snapshot.
	GetAll() (domain.Settings, error)

	// Update applies a partial update and persists the result.
	Update(patch domain.SettingsPatch) (domain.Settings, error)

	// ResetKBFolder restores kb_folder from original_kb_folder.
	ResetKBFolder() (domain.Settings, error)
}
