package builder

import (
	"errors"
	"fmt"

	"github.com/meenmo/curvebuild/curve"
)

var (
	// ErrConvergence is returned when the least-squares solve reports failure.
	ErrConvergence = errors.New("calibration did not converge")

	// ErrPriceNotFound is returned by the residual function when an instrument has no price.
	ErrPriceNotFound = errors.New("price not found")

	// ErrInstrumentNotFound is returned for lookups of unregistered instrument names.
	ErrInstrumentNotFound = errors.New("instrument not found")

	// ErrNaNDOF marks a not-a-number entry in a proposed DOF vector.
	ErrNaNDOF = fmt.Errorf("%w: NaN degree of freedom", curve.ErrNumericalDomain)
)
