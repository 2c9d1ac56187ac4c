package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const (
	defaultAPIURL = "https://api.github.com"
	maxLogBytes   = 4 << 20
)

// Client reads workflow run logs from the GitHub REST API.
type Client struct {
	apiURL     string
	httpClient *http.Client
	download   *http.Client // follows the signed log URL without credentials
}

// NewClient creates a GitHub client. An empty token sends anonymous requests.
func NewClient(token string) *Client {
	httpClient := &http.Client{}
	if token != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Client{
		apiURL:     defaultAPIURL,
		httpClient: httpClient,
		download:   &http.Client{},
	}
}

// SetAPIURL overrides the API base URL, e.g. for GitHub Enterprise or tests.
func (c *Client) SetAPIURL(url string) {
	if url == "" {
		return
	}
	c.apiURL = strings.TrimSuffix(url, "/")
}

// FetchFailedLogs returns the concatenated logs of every failed job in a run.
func (c *Client) FetchFailedLogs(ctx context.Context, repository string, runID int64) (string, error) {
	if strings.Count(repository, "/") != 1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRepo, repository)
	}

	jobs, err := c.listJobs(ctx, repository, runID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, j := range jobs {
		if j.Conclusion != "failure" {
			continue
		}
		text, err := c.jobLog(ctx, repository, j.ID)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "=== %s ===\n%s\n", j.Name, text)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: run %d has no failed jobs", ErrLogUnavailable, runID)
	}
	return sb.String(), nil
}

func (c *Client) listJobs(ctx context.Context, repository string, runID int64) ([]Job, error) {
	url := fmt.Sprintf("%s/repos/%s/actions/runs/%d/jobs?filter=latest&per_page=100", c.apiURL, repository, runID)
	resp, err := c.get(ctx, c.httpClient, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: list jobs API error %d: %s", ErrLogUnavailable, resp.StatusCode, string(raw))
	}

	var jr JobsResponse
	if err := json.NewDecoder(resp.Body).Decode(&jr); err != nil {
		return nil, fmt.Errorf("%w: failed to decode jobs: %v", ErrLogUnavailable, err)
	}
	return jr.Jobs, nil
}

func (c *Client) jobLog(ctx context.Context, repository string, jobID int64) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/actions/jobs/%d/logs", c.apiURL, repository, jobID)
	resp, err := c.get(ctx, c.httpClient, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return readLog(resp.Body)
	case http.StatusFound, http.StatusMovedPermanently, http.StatusTemporaryRedirect:
		loc := resp.Header.Get("Location")
		if loc == "" {
			return "", fmt.Errorf("%w: redirect without location for job %d", ErrLogUnavailable, jobID)
		}
		dl, err := c.get(ctx, c.download, loc)
		if err != nil {
			return "", err
		}
		defer dl.Body.Close()
		if dl.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: log download error %d", ErrLogUnavailable, dl.StatusCode)
		}
		return readLog(dl.Body)
	default:
		return "", fmt.Errorf("%w: job log API error %d", ErrLogUnavailable, resp.StatusCode)
	}
}

func (c *Client) get(ctx context.Context, hc *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrLogUnavailable, err)
	}
	return resp, nil
}

func readLog(r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxLogBytes))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read log: %v", ErrLogUnavailable, err)
	}
	return string(raw), nil
}
