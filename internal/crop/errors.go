package crop

import "errors"

// Domain errors for model construction and calibration.
var (
	// ErrInvalidDryWeight indicates a non-positive initial dry weight.
	ErrInvalidDryWeight = errors.New("crop: initial dry weight must be positive")

	// ErrInvalidDensity indicates a non-positive plant density.
	ErrInvalidDensity = errors.New("crop: plant density must be positive")

	// ErrMissingParameters indicates required coefficients are absent.
	ErrMissingParameters = errors.New("crop: missing required parameters")

	// ErrUnknownParameter indicates a calibration key with no known coefficient.
	ErrUnknownParameter = errors.New("crop: unknown parameter")

	// ErrInterceptionRange indicates a light-interception override outside [0, 1].
	ErrInterceptionRange = errors.New("crop: light interception must be between 0 and 1")

	// ErrUnknownMode indicates an unrecognized light-interception mode name.
	ErrUnknownMode = errors.New("crop: unknown light interception mode")
)
