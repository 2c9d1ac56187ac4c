package webhook

import (
	"fmt"
	"strings"
	"time"

	"autoremedy/internal/model"
)

// NetlifyDeployPayload is the subset of a Netlify deploy notification we use.
// Netlify does not sign these, so only the required fields are checked.
// ErrorMessage is null for non-error deploys and only required when State is "error".
type NetlifyDeployPayload struct {
	ID           string `json:"id"`
	SiteID       string `json:"site_id"`
	State        string `json:"state" binding:"required"`
	ErrorMessage string `json:"error_message"`
	Name         string `json:"name" binding:"required"`
	URL          string `json:"url" binding:"required"`
	Branch       string `json:"branch"`
	CommitRef    string `json:"commit_ref"`
	AdminURL     string `json:"admin_url"`
}

// NetlifyWebhookParser turns deploy notifications into events.
type NetlifyWebhookParser struct {
	now func() time.Time
}

func NewNetlifyParser() *NetlifyWebhookParser {
	return &NetlifyWebhookParser{now: time.Now}
}

// ToEvent converts a bound payload. Non-error states yield ErrEventIgnored and
// an error deploy without error_message yields ErrMalformedPayload.
func (p *NetlifyWebhookParser) ToEvent(payload NetlifyDeployPayload, raw []byte) (*model.WebhookEvent, error) {
	if payload.State != "error" {
		return nil, fmt.Errorf("%w: deploy state %s", ErrEventIgnored, payload.State)
	}
	if strings.TrimSpace(payload.ErrorMessage) == "" {
		return nil, fmt.Errorf("%w: error_message is required for error deploys", ErrMalformedPayload)
	}

	url := payload.AdminURL
	if url == "" {
		url = payload.URL
	}

	return &model.WebhookEvent{
		Source:     model.SourceNetlify,
		Kind:       "deploy",
		DeliveryID: payload.ID,
		Repository: payload.Name,
		URL:        url,
		ErrorText:  payload.ErrorMessage,
		RawPayload: raw,
		ReceivedAt: p.now(),
	}, nil
}
