package brackets

import "errors"

var (
	ErrInvalidArgument   = errors.New("invalid bracket argument")
	ErrConsistency       = errors.New("bracket is inconsistent")
	ErrMatchNotFound     = errors.New("match not found in bracket")
	ErrUnsupportedFormat = errors.New("bracket format is not supported")
)
