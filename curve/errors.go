package curve

import "errors"

// Error kinds shared by every package that participates in a curve build.
// Specific errors wrap one of these so callers can classify with errors.Is.
var (
	// ErrConfiguration marks fatal set-up faults: empty templates, zero pillars,
	// DOF length mismatches, unknown instrument types or interpolation modes.
	ErrConfiguration = errors.New("configuration error")

	// ErrNumericalDomain marks numerical faults: NaN degrees of freedom or an
	// instrument conversion that fails for the current curve state.
	ErrNumericalDomain = errors.New("numerical domain error")

	// ErrCurveNotFound is returned when a curve name is not present in a CurveMap.
	ErrCurveNotFound = errors.New("curve not found")
)
