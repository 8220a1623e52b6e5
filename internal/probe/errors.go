package probe

import "errors"

var (
	ErrNoSelection   = errors.New("no channels selected to check")
	ErrEmptyChannel  = errors.New("probe channel id cannot be empty")
	ErrInvalidMethod = errors.New("invalid probe method")
)
