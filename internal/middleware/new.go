package middleware

import (
	"github.com/google/uuid"

	"autoremedy/pkg/log"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

type Middleware struct {
	l     log.Logger
	newID func() string
}

func New(l log.Logger) Middleware {
	return Middleware{
		l:     l,
		newID: uuid.NewString,
	}
}
