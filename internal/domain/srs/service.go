package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/scry-lexicon/internal/domain"
)

// Common errors
var (
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// Outcome is the result of one quiz answer.
type Outcome string

// Possible outcomes.
const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// OutcomeFromBool maps a correct/incorrect flag onto an Outcome.
func OutcomeFromBool(correct bool) Outcome {
	if correct {
		return OutcomeCorrect
	}
	return OutcomeIncorrect
}

// Service defines the interface for scheduling operations
type Service interface {
	// IsDue reports whether an item with the given mastery should be reviewed at now.
	IsDue(m domain.Mastery, now time.Time) bool

	// CalculateNextReview computes the mastery state that follows an outcome.
	// The input is never modified.
	CalculateNextReview(m domain.Mastery, outcome Outcome, now time.Time) (domain.Mastery, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// IsDue implements the Service interface
func (s *defaultService) IsDue(m domain.Mastery, now time.Time) bool {
	return IsDue(m, now)
}

// CalculateNextReview implements the Service interface
func (s *defaultService) CalculateNextReview(
	m domain.Mastery,
	outcome Outcome,
	now time.Time,
) (domain.Mastery, error) {
	switch outcome {
	case OutcomeCorrect:
		return calculateCorrect(m, now, s.params), nil
	case OutcomeIncorrect:
		return calculateIncorrect(m, now), nil
	default:
		return domain.Mastery{}, ErrInvalidOutcome
	}
}
