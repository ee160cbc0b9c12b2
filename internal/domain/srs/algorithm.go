package srs

import (
	"time"

	"github.com/phrazzld/scry-lexicon/internal/domain"
)

// IsDue reports whether an item with mastery m should be reviewed at now.
// Mastered items are never due, regardless of NextReviewAt.
func IsDue(m domain.Mastery, now time.Time) bool {
	if m.Level == domain.LevelMastered {
		return false
	}
	return !now.Before(m.NextReviewAt)
}

// calculateIntervalDays returns min(base^reviewCount, max) without overflowing
// for large review counts.
func calculateIntervalDays(reviewCount int, params *Params) int {
	interval := 1
	for i := 0; i < reviewCount; i++ {
		interval *= params.IntervalBase
		if interval >= params.MaxIntervalDays {
			return params.MaxIntervalDays
		}
	}
	return interval
}

// calculateCorrect returns the mastery state after a correct answer.
//
// The review count and streak grow by one, the interval is base^reviewCount
// days capped at MaxIntervalDays, and the next review is that many calendar
// days after now. Reaching MasteryThreshold reviews marks the item mastered.
func calculateCorrect(m domain.Mastery, now time.Time, params *Params) domain.Mastery {
	next := m
	next.ReviewCount++
	next.Streak++

	reviewed := now
	next.LastReviewedAt = &reviewed

	interval := calculateIntervalDays(next.ReviewCount, params)
	next.NextReviewAt = now.AddDate(0, 0, interval)

	if next.ReviewCount >= params.MasteryThreshold {
		next.Level = domain.LevelMastered
	}

	return next
}

// calculateIncorrect returns the mastery state after an incorrect answer.
//
// The review count drops by one without going below zero, the streak resets,
// the item is due again immediately and is always demoted to reviewing.
func calculateIncorrect(m domain.Mastery, now time.Time) domain.Mastery {
	next := m
	if next.ReviewCount > 0 {
		next.ReviewCount--
	}
	next.Streak = 0

	reviewed := now
	next.LastReviewedAt = &reviewed
	next.NextReviewAt = now
	next.Level = domain.LevelReviewing

	return next
}
