package remediation

import (
	"path/filepath"
	"time"

	"autoremedy/internal/classifier"
	"autoremedy/internal/patcher"
	"autoremedy/internal/planner"
	"autoremedy/internal/publisher"
	"autoremedy/pkg/keyedlock"
	pkgLog "autoremedy/pkg/log"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultManifest     = "Gemfile"
	notificationTimeout = 10 * time.Second
)

type usecase struct {
	l          pkgLog.Logger
	classifier classifier.Classifier
	planner    planner.Planner
	patcher    patcher.Patcher
	publisher  publisher.Publisher
	logs       LogFetcher    // optional
	sender     MessageSender // optional
	locks      *keyedlock.Locker
	opts       Options
}

// Deps groups the pipeline collaborators.
type Deps struct {
	Classifier classifier.Classifier
	Planner    planner.Planner
	Patcher    patcher.Patcher
	Publisher  publisher.Publisher
	Logs       LogFetcher
	Sender     MessageSender
	Locks      *keyedlock.Locker
}

func New(l pkgLog.Logger, deps Deps, opts Options) UseCase {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Manifest == "" {
		opts.Manifest = defaultManifest
	}
	if deps.Locks == nil {
		deps.Locks = keyedlock.New()
	}

	return &usecase{
		l:          l,
		classifier: deps.Classifier,
		planner:    deps.Planner,
		patcher:    deps.Patcher,
		publisher:  deps.Publisher,
		logs:       deps.Logs,
		sender:     deps.Sender,
		locks:      deps.Locks,
		opts:       opts,
	}
}

// manifestPath is the lock key and the file the patcher edits.
func (uc *usecase) manifestPath() string {
	p := uc.opts.Manifest
	if !filepath.IsAbs(p) {
		p = filepath.Join(uc.opts.RepoPath, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return filepath.Clean(p)
}
