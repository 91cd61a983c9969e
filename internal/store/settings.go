package store

import "context"

// Well-known setting keys.
const (
	// SettingMasteryThreshold is the consecutive-correct streak required
	// for an item to be considered mastered.
	SettingMasteryThreshold = "mastery_threshold"

	// SettingWeeklyTargetDays is the number of practice days targeted per week.
	SettingWeeklyTargetDays = "weekly_target_days"
)

// SettingsStore exposes named scalar configuration values with
// last-write-wins semantics.
type SettingsStore interface {
	// Get returns the value for a key.
	// Returns ErrSettingNotFound if the key has never been set.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value for a key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
}
