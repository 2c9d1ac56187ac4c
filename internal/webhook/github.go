package webhook

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"autoremedy/internal/model"
)

// GitHubWebhookParser parses GitHub webhook payloads
type GitHubWebhookParser struct {
	now func() time.Time
}

func NewGitHubParser() *GitHubWebhookParser {
	return &GitHubWebhookParser{now: time.Now}
}

type githubRepository struct {
	FullName string `json:"full_name"`
}

// ParseWorkflowRunEvent parses a workflow_run event. Only completed, failed
// runs are returned; the log is fetched later through LogRef.
func (p *GitHubWebhookParser) ParseWorkflowRunEvent(payload []byte) (*model.WebhookEvent, error) {
	var event struct {
		Action      string `json:"action"`
		WorkflowRun struct {
			ID         int64  `json:"id"`
			Name       string `json:"name"`
			Status     string `json:"status"`
			Conclusion string `json:"conclusion"`
			HTMLURL    string `json:"html_url"`
			HeadBranch string `json:"head_branch"`
		} `json:"workflow_run"`
		Repository githubRepository `json:"repository"`
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: workflow_run: %v", ErrMalformedPayload, err)
	}
	if event.WorkflowRun.ID == 0 || event.Repository.FullName == "" {
		return nil, fmt.Errorf("%w: workflow_run: missing run id or repository", ErrMalformedPayload)
	}

	if event.Action != "completed" || event.WorkflowRun.Conclusion != "failure" {
		return nil, fmt.Errorf("%w: workflow_run %s/%s", ErrEventIgnored, event.Action, event.WorkflowRun.Conclusion)
	}

	return &model.WebhookEvent{
		Source:     model.SourceGitHub,
		Kind:       "workflow_run",
		Repository: event.Repository.FullName,
		URL:        event.WorkflowRun.HTMLURL,
		LogRef: &model.LogRef{
			Repository: event.Repository.FullName,
			RunID:      event.WorkflowRun.ID,
		},
		RawPayload: payload,
		ReceivedAt: p.now(),
	}, nil
}

// ParseCheckRunEvent parses a check_run event. The check output is used as
// the error text.
func (p *GitHubWebhookParser) ParseCheckRunEvent(payload []byte) (*model.WebhookEvent, error) {
	var event struct {
		Action   string `json:"action"`
		CheckRun struct {
			ID         int64  `json:"id"`
			Name       string `json:"name"`
			Status     string `json:"status"`
			Conclusion string `json:"conclusion"`
			HTMLURL    string `json:"html_url"`
			Output     struct {
				Title   string `json:"title"`
				Summary string `json:"summary"`
				Text    string `json:"text"`
			} `json:"output"`
		} `json:"check_run"`
		Repository githubRepository `json:"repository"`
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: check_run: %v", ErrMalformedPayload, err)
	}

	if event.Action != "completed" || event.CheckRun.Conclusion != "failure" {
		return nil, fmt.Errorf("%w: check_run %s/%s", ErrEventIgnored, event.Action, event.CheckRun.Conclusion)
	}

	parts := make([]string, 0, 3)
	for _, s := range []string{event.CheckRun.Output.Title, event.CheckRun.Output.Summary, event.CheckRun.Output.Text} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, s)
		}
	}

	return &model.WebhookEvent{
		Source:     model.SourceGitHub,
		Kind:       "check_run",
		Repository: event.Repository.FullName,
		URL:        event.CheckRun.HTMLURL,
		ErrorText:  strings.Join(parts, "\n"),
		RawPayload: payload,
		ReceivedAt: p.now(),
	}, nil
}
