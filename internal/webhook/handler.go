package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"autoremedy/internal/model"
	"autoremedy/internal/remediation"
	pkgLog "autoremedy/pkg/log"
	pkgResponse "autoremedy/pkg/response"
)

// HandleGitHubWebhook processes GitHub webhook events
// @Summary GitHub webhook
// @Description Verifies X-Hub-Signature-256 and remediates failed workflow runs and check runs
// @Tags Webhook
// @Accept json
// @Produce json
// @Param X-GitHub-Event header string true "Event kind"
// @Param X-Hub-Signature-256 header string true "sha256=<hex HMAC of body>"
// @Success 200 {object} map[string]interface{} "Processed, ignored or failed outcome"
// @Failure 400 {object} response.Resp "Malformed payload"
// @Failure 401 {object} map[string]interface{} "Invalid signature"
// @Failure 429 {object} map[string]interface{} "Rate limited"
// @Router /github-webhook [post]
func (h *Handler) HandleGitHubWebhook(c *gin.Context) {
	deliveryID := c.GetHeader("X-GitHub-Delivery")
	ctx := pkgLog.WithFields(c.Request.Context(), "delivery_id", deliveryID)

	if !h.allowIP(ctx, c) {
		return
	}

	body, ok := h.readBody(ctx, c)
	if !ok {
		return
	}

	// Verify signature
	if !h.security.ValidateGitHubSignature(body, c.GetHeader("X-Hub-Signature-256")) {
		h.l.Warnf(ctx, "GitHub signature verification failed, rejecting delivery %s", deliveryID)
		pkgResponse.Unauthorized(c)
		return
	}

	if !h.allowRate(ctx, c, string(model.SourceGitHub)) {
		return
	}

	eventType := c.GetHeader("X-GitHub-Event")

	var (
		event *model.WebhookEvent
		err   error
	)
	switch eventType {
	case "ping":
		c.JSON(http.StatusOK, processedResponse{Status: statusProcessed, Reason: "pong"})
		return
	case "workflow_run":
		event, err = h.githubParser.ParseWorkflowRunEvent(body)
	case "check_run":
		event, err = h.githubParser.ParseCheckRunEvent(body)
	default:
		h.l.Infof(ctx, "Unsupported GitHub event type: %s", eventType)
		c.JSON(http.StatusOK, processedResponse{Status: statusProcessed, Ignored: true, Reason: "unsupported event type"})
		return
	}

	if errors.Is(err, ErrEventIgnored) {
		h.l.Infof(ctx, "GitHub event not actionable: %v", err)
		c.JSON(http.StatusOK, processedResponse{Status: statusProcessed, Ignored: true, Reason: err.Error()})
		return
	}
	if err != nil {
		h.l.Warnf(ctx, "Failed to parse GitHub event: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	event.DeliveryID = deliveryID
	if h.security.SeenDelivery(deliveryID) {
		h.l.Infof(ctx, "Duplicate GitHub delivery %s, skipping", deliveryID)
		c.JSON(http.StatusOK, processedResponse{Status: statusProcessed, Duplicate: true})
		return
	}

	h.process(ctx, c, event)
}

// HandleNetlifyWebhook processes Netlify deploy notifications
// @Summary Netlify webhook
// @Description Remediates failed Netlify deploys from their error_message
// @Tags Webhook
// @Accept json
// @Produce json
// @Param payload body NetlifyDeployPayload true "Deploy notification"
// @Success 200 {object} map[string]interface{} "Processed, ignored or failed outcome"
// @Failure 400 {object} response.Resp "Missing required fields"
// @Failure 429 {object} map[string]interface{} "Rate limited"
// @Router /netlify-webhook [post]
func (h *Handler) HandleNetlifyWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.allowIP(ctx, c) {
		return
	}

	body, ok := h.readBody(ctx, c)
	if !ok {
		return
	}

	if !h.allowRate(ctx, c, string(model.SourceNetlify)) {
		return
	}

	var payload NetlifyDeployPayload
	if err := binding.JSON.BindBody(body, &payload); err != nil {
		h.l.Warnf(ctx, "Invalid Netlify payload: %v", err)
		pkgResponse.Error(c, errors.Join(ErrMalformedPayload, err), nil)
		return
	}

	ctx = pkgLog.WithFields(ctx, "delivery_id", payload.ID)
	event, err := h.netlifyParser.ToEvent(payload, body)
	if errors.Is(err, ErrEventIgnored) {
		h.l.Infof(ctx, "Netlify deploy state %q, nothing to do", payload.State)
		c.JSON(http.StatusOK, processedResponse{Status: statusProcessed, Ignored: true, Reason: "deploy state " + payload.State})
		return
	}
	if err != nil {
		h.l.Warnf(ctx, "Invalid Netlify payload: %v", err)
		pkgResponse.Error(c, err, nil)
		return
	}

	h.process(ctx, c, event)
}

// process runs the pipeline detached from the request and waits for it
// unless the client goes away first. A Failed outcome releases the delivery id
// so the sender can redeliver it.
func (h *Handler) process(ctx context.Context, c *gin.Context, event *model.WebhookEvent) {
	event.ID = h.newID()
	ctx = pkgLog.WithFields(ctx, "event_id", event.ID)
	h.l.Infof(ctx, "Processing %s/%s event for %s", event.Source, event.Kind, event.Repository)

	done := make(chan remediation.Outcome, 1)
	go func(ev model.WebhookEvent) {
		out := h.remediationUC.Process(context.WithoutCancel(ctx), ev)
		if out.State == model.StateFailed {
			h.security.ForgetDelivery(ev.DeliveryID)
		}
		done <- out
	}(*event)

	select {
	case out := <-done:
		writeOutcome(c, out)
	case <-c.Request.Context().Done():
		h.l.Warnf(ctx, "Client disconnected, remediation continues in background")
	}
}

type outcomeResponse struct {
	Status string `json:"status"`
	remediation.Outcome
}

func writeOutcome(c *gin.Context, out remediation.Outcome) {
	status := statusProcessed
	if out.State == model.StateFailed {
		status = statusFailed
	}
	c.JSON(http.StatusOK, outcomeResponse{Status: status, Outcome: out})
}

func (h *Handler) readBody(ctx context.Context, c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.l.Warnf(ctx, "Failed to read webhook body: %v", err)
		pkgResponse.Error(c, errors.Join(ErrMalformedPayload, err), nil)
		return nil, false
	}
	return body, true
}

func (h *Handler) allowIP(ctx context.Context, c *gin.Context) bool {
	if err := h.security.ValidateIPAddress(c.ClientIP()); err != nil {
		h.l.Warnf(ctx, "Rejected webhook: %v", err)
		pkgResponse.Forbidden(c)
		return false
	}
	return true
}

func (h *Handler) allowRate(ctx context.Context, c *gin.Context, source string) bool {
	if err := h.security.CheckRateLimit(source); err != nil {
		h.l.Warnf(ctx, "Rate limit exceeded: %v", err)
		pkgResponse.TooManyRequests(c)
		return false
	}
	return true
}
