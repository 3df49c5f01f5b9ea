package domain

import "errors"

// ReviewOutcome represents the caller-reported quality of a single recall
// attempt. The set is closed: every outcome maps to exactly one grade.
type ReviewOutcome string

// Possible review outcome values.
const (
	ReviewOutcomeAgain ReviewOutcome = "again"
	ReviewOutcomeFail  ReviewOutcome = "fail"
	ReviewOutcomeHard  ReviewOutcome = "hard"
	ReviewOutcomeGood  ReviewOutcome = "good"
	ReviewOutcomeEasy  ReviewOutcome = "easy"
)

// Grade bounds for the scheduling algorithm.
const (
	MinGrade = 0
	MaxGrade = 4

	// PassingGrade is the lowest grade counted as a successful recall.
	PassingGrade = 3
)

// ErrInvalidReviewOutcome is returned when a review outcome is not one of
// the defined values.
var ErrInvalidReviewOutcome = errors.New("invalid review outcome")

// outcomeGrades is the total outcome-to-grade mapping consumed by the
// scheduling algorithm. Grades are never accepted directly from clients.
var outcomeGrades = map[ReviewOutcome]int{
	ReviewOutcomeAgain: 0,
	ReviewOutcomeFail:  1,
	ReviewOutcomeHard:  2,
	ReviewOutcomeGood:  3,
	ReviewOutcomeEasy:  4,
}

// Valid reports whether the outcome is one of the defined values.
func (o ReviewOutcome) Valid() bool {
	_, ok := outcomeGrades[o]
	return ok
}

// Grade returns the 0-4 numeric encoding of the outcome.
// Returns ErrInvalidReviewOutcome for values outside the closed set.
func (o ReviewOutcome) Grade() (int, error) {
	grade, ok := outcomeGrades[o]
	if !ok {
		return 0, ErrInvalidReviewOutcome
	}
	return grade, nil
}

// Success reports whether the outcome counts as a successful recall
// (grade >= PassingGrade).
func (o ReviewOutcome) Success() bool {
	grade, ok := outcomeGrades[o]
	return ok && grade >= PassingGrade
}
