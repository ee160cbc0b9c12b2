package domain

import "fmt"

// Status is the workflow state of a vocabulary item. It is the single source
// of truth for list and queue membership.
type Status string

// Possible status values.
const (
	StatusReviewNow  Status = "review_now"
	StatusCheckLater Status = "check_later"
	StatusArchived   Status = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusReviewNow, StatusCheckLater, StatusArchived:
		return true
	default:
		return false
	}
}

// ParseStatus converts a string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// MasteryLevel governs whether the scheduler still schedules an item.
type MasteryLevel string

// Possible mastery levels.
const (
	LevelReviewing MasteryLevel = "reviewing"
	LevelMastered  MasteryLevel = "mastered"
)

// Valid reports whether l is one of the known levels.
func (l MasteryLevel) Valid() bool {
	return l == LevelReviewing || l == LevelMastered
}

// Language identifies which side of the pair the user originally typed.
type Language string

// Possible original languages.
const (
	LanguageNative Language = "native"
	LanguageTarget Language = "target"
)

// Valid reports whether l is one of the known languages.
func (l Language) Valid() bool {
	return l == LanguageNative || l == LanguageTarget
}

// StatusPolicy describes the side effects of a status transition.
//
// Moving to Archived always clears the review flag. Moving away from Archived
// leaves the flag untouched unless RestoreReviewOnUnarchive is set.
type StatusPolicy struct {
	RestoreReviewOnUnarchive bool
}

// Apply transitions item to next, applying the review flag side effects.
// Any status may move to any other status.
func (p StatusPolicy) Apply(item *VocabularyItem, next Status) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	previous := item.Status
	item.Status = next

	switch {
	case next == StatusArchived:
		item.Review = false
	case previous == StatusArchived && p.RestoreReviewOnUnarchive:
		item.Review = true
	}

	return nil
}
