package publisher

import "context"

// Publisher commits patched manifests and pushes them upstream.
type Publisher interface {
	Publish(ctx context.Context, req Request) (Result, error)
}
