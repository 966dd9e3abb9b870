package algo

import (
	"errors"
	"math"
)

var (
	// ErrConverterTypeMismatch is returned when a converter and its line disagree on the technology.
	ErrConverterTypeMismatch = errors.New("converter type does not match hvdc line type")
	// ErrUnknownConverterEnd is returned when a converter is neither end of its line.
	ErrUnknownConverterEnd = errors.New("converter matches neither end of its hvdc line")
	// ErrConverterVisitedTwice is returned when the same line end is visited twice.
	ErrConverterVisitedTwice = errors.New("hvdc line end visited twice")
	// ErrMissingBus is returned for a line end without a bus id.
	ErrMissingBus = errors.New("hvdc line end has no bus id")
	// ErrNonFinite is returned when a bound used by model selection is NaN or infinite.
	ErrNonFinite = errors.New("non-finite value")
	// ErrMissingEmulationData is returned when an emulation model lacks droop or p0.
	ErrMissingEmulationData = errors.New("emulation model without droop and p0")
	// ErrNoCatalogEntry is returned when no model matches a combination of axes.
	ErrNoCatalogEntry = errors.New("no model for this combination")
	// ErrUnfinishedDefinition is returned when a definition has no model after traversal.
	ErrUnfinishedDefinition = errors.New("hvdc definition has no model")
)

const epsilon = 1e-6

func doubleEquals(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func doubleIsZero(a float64) bool {
	return doubleEquals(a, 0)
}

func isFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
