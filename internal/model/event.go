package model

import "time"

// WebhookSource represents the platform that sent the webhook
type WebhookSource string

const (
	SourceGitHub  WebhookSource = "github"
	SourceNetlify WebhookSource = "netlify"
)

// WebhookEvent represents a parsed webhook event.
// It is immutable once parsed and lives for a single request.
type WebhookEvent struct {
	ID         string        // Generated per inbound request
	Source     WebhookSource // Platform source
	Kind       string        // Event kind (workflow_run, check_run, deploy, ...)
	DeliveryID string        // X-GitHub-Delivery or Netlify deploy id
	Repository string        // owner/repo or site name
	URL        string        // Link back to the failed run/deploy
	ErrorText  string        // Inline error text, empty when the log must be fetched
	LogRef     *LogRef       // Where to fetch the log from when ErrorText is empty
	RawPayload []byte        // Raw request body
	ReceivedAt time.Time     // When webhook was received
}

// LogRef points at a build log held by the source platform.
type LogRef struct {
	Repository string
	RunID      int64
}

// NeedsLogFetch reports whether the error text has to be fetched from the platform.
func (e WebhookEvent) NeedsLogFetch() bool {
	return e.ErrorText == "" && e.LogRef != nil
}
