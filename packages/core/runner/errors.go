package runner

import "errors"

var (
	ErrNoSources = errors.New("no event sources")
	ErrNilReader = errors.New("source has no reader")
)
