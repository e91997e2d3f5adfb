package model

import "errors"

var (
	// ErrInvalidConfiguration reports a non-positive power or duration.
	ErrInvalidConfiguration = errors.New("invalid battery configuration")
	// ErrUnsupportedStrategy reports a strategy name with no dispatch.
	ErrUnsupportedStrategy = errors.New("unsupported strategy")
	// ErrNumericCorruption reports a non-finite value in inputs or results.
	ErrNumericCorruption = errors.New("numeric corruption")
	// ErrBatchLength reports mismatched batch lengths.
	ErrBatchLength = errors.New("batch length mismatch")
	// ErrInvalidTimestep reports a non-positive or non-finite dt.
	ErrInvalidTimestep = errors.New("invalid timestep")
)
