package apperrors

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNoEligibleMedia  = errors.New("no eligible media")
	ErrUnsupportedMedia = errors.New("unsupported media file")
	ErrInvalidStats     = errors.New("invalid session stats")
)
