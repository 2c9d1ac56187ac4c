package publisher

import "autoremedy/internal/model"

// Request carries one patched manifest to publish.
type Request struct {
	ManifestPath string
	Records      []model.PatchRecord
	Warnings     []string
	Event        model.WebhookEvent
}

// Result describes what was published.
type Result struct {
	Published  bool   `json:"published"`
	CommitHash string `json:"commit_hash,omitempty"`
	Message    string `json:"message"`
	Attempts   int    `json:"attempts,omitempty"`
}

// Options tunes the push loop.
type Options struct {
	PushAttempts int // 1 or 2
}
