package github

// Job is the subset of a workflow job the log fetcher needs.
type Job struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// JobsResponse is the body of GET /repos/{owner}/{repo}/actions/runs/{run_id}/jobs.
type JobsResponse struct {
	TotalCount int   `json:"total_count"`
	Jobs       []Job `json:"jobs"`
}
