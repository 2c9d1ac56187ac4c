package github

import "errors"

var (
	ErrLogUnavailable = errors.New("build log unavailable")
	ErrInvalidRepo    = errors.New("repository must be owner/name")
)
