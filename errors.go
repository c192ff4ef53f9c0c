package quant

import "errors"

// Errors returned by the pricing and calibration packages. Callers should
// test for them with errors.Is since they are usually wrapped with context.
var (
	// ErrInvalidCurveInput is returned for non-positive or non-monotone
	// maturities, bad discount factors and curve tables with missing columns.
	ErrInvalidCurveInput = errors.New("invalid curve input")

	// ErrInvalidSurfaceInput is returned for duplicate (T, K) observations
	// and surface tables with missing columns.
	ErrInvalidSurfaceInput = errors.New("invalid surface input")

	// ErrDomain is returned when a formula is evaluated outside its domain,
	// e.g. a non-positive volatility or maturity.
	ErrDomain = errors.New("domain error")

	// ErrInsufficientData is returned when a calibration or estimator has
	// fewer usable points than it needs.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrCalibrationDivergence flags a fit whose final residuals all sit at
	// the penalty ceiling. The parameters that come with it are best-effort.
	ErrCalibrationDivergence = errors.New("calibration diverged")
)
