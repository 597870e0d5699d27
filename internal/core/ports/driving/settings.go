package driving

import "github.com/chengahtung/local-lode/internal/core/domain"

// SettingsService manages the tool's tunable parameters.
type SettingsService interface {
	// Get returns the current settings snapshot.
	Get() (domain.Settings, error)

	// Update validates and applies a partial update.
	Update(patch domain.SettingsPatch) (domain.Settings, error)

	// ResetKBFolder restores the corpus folder to its original value.
	ResetKBFolder() (domain.Settings, error)
}
