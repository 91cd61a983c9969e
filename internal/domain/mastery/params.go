// Package mastery implements the per-item mastery tracking rules: rolling
// attempt counters, the mutually-exclusive consecutive streaks, and the
// derived "mastered" property.
package mastery

// Default parameter values.
const (
	// DefaultMasteryThreshold is the consecutive-correct streak required
	// before an item counts as mastered.
	DefaultMasteryThreshold = 2

	// DefaultWeeklyTargetDays is the number of practice days targeted per week.
	DefaultWeeklyTargetDays = 5
)

// Params defines the configurable parameters for mastery tracking. It is an
// explicit value passed into the tracker and the item selector at call time,
// loaded per request from the settings store rather than read from global
// mutable state.
type Params struct {
	// MasteryThreshold is the minimum consecutive-correct streak for an
	// item to be considered mastered. Derived at read time, never stored.
	MasteryThreshold int

	// WeeklyTargetDays is the number of practice days targeted per week.
	WeeklyTargetDays int
}

// NewDefaultParams creates a Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MasteryThreshold: DefaultMasteryThreshold,
		WeeklyTargetDays: DefaultWeeklyTargetDays,
	}
}
