package srs

// Params defines the configurable parameters of the scheduling algorithm.
type Params struct {
	// IntervalBase is the base of the exponential backoff, in days.
	IntervalBase int

	// MaxIntervalDays caps the interval after a correct answer.
	MaxIntervalDays int

	// MasteryThreshold is the review count at which an item becomes mastered.
	MasteryThreshold int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the defaults.
type ParamsConfig struct {
	IntervalBase     int
	MaxIntervalDays  int
	MasteryThreshold int
}

// NewDefaultParams creates a new Params instance with default values:
// base 2, capped at 30 days, mastered after 5 reviews.
func NewDefaultParams() *Params {
	return &Params{
		IntervalBase:     2,
		MaxIntervalDays:  30,
		MasteryThreshold: 5,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.IntervalBase > 1 {
		params.IntervalBase = config.IntervalBase
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}
	if config.MasteryThreshold > 0 {
		params.MasteryThreshold = config.MasteryThreshold
	}

	return params
}
