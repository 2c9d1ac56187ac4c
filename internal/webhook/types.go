package webhook

import "time"

// SecurityConfig holds webhook security settings
type SecurityConfig struct {
	Secret          string        // Shared secret for signature verification
	AllowedIPs      []string      // IP or CIDR allow-list (optional)
	RateLimitPerMin int           // Max requests per minute per source
	DedupeTTL       time.Duration // How long a delivery id is remembered
}

// processedResponse is the body returned for every non-auth outcome.
type processedResponse struct {
	Status    string `json:"status"`
	Ignored   bool   `json:"ignored,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Reason    string `json:"reason,omitempty"`
	EventID   string `json:"event_id,omitempty"`
}

const (
	statusProcessed = "processed"
	statusFailed    = "failed"
)
