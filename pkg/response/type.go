package response

const (
	MessageSuccess      = "Success"
	BadRequestErrorCode = 1
)

// Resp is the standard JSON response body.
type Resp struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`
}

// Rejection is the short body used when a request is refused before any
// processing (bad signature, rate limit).
type Rejection struct {
	Error string `json:"error"`
}
