package webhook

import "errors"

var (
	ErrEventIgnored     = errors.New("event ignored")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrIPNotAllowed     = errors.New("source ip not allowed")
	ErrRateLimited      = errors.New("rate limit exceeded")
)
