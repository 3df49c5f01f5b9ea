// Package srs implements the spaced-repetition scheduling algorithm.
// The algorithm is a pure function over memory state: no storage or network
// access occurs here.
package srs

import (
	"errors"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
)

// Common errors
var (
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// Service defines the interface for SRS algorithm operations.
type Service interface {
	// Advance computes the memory state that follows a review outcome.
	// The input state is not modified. Returns ErrInvalidOutcome if the
	// outcome is not one of the defined values.
	Advance(state domain.MemoryState, outcome domain.ReviewOutcome) (domain.MemoryState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Advance implements the Service interface.
func (s *defaultService) Advance(
	state domain.MemoryState,
	outcome domain.ReviewOutcome,
) (domain.MemoryState, error) {
	if !outcome.Valid() {
		return domain.MemoryState{}, ErrInvalidOutcome
	}

	return advance(state, outcome, s.params), nil
}
