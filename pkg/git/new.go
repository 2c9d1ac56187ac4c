package git

import (
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"

	"autoremedy/pkg/log"
)

type implRepository struct {
	l      log.Logger
	cfg    Config
	repo   *gogit.Repository
	runner CommandRunner
	now    func() time.Time
}

// Open opens the working copy at cfg.RepoPath. A nil runner uses ExecCommandRunner.
func Open(l log.Logger, cfg Config, runner CommandRunner) (Repository, error) {
	repo, err := plainOpen(cfg.RepoPath)
	if err != nil {
		return nil, err
	}
	if runner == nil {
		runner = ExecCommandRunner{}
	}
	if cfg.Remote == "" {
		cfg.Remote = "origin"
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}

	return &implRepository{
		l:      l,
		cfg:    cfg,
		repo:   repo,
		runner: runner,
		now:    time.Now,
	}, nil
}

// Detect reports whether path is inside a working copy, using the same lookup as Open.
func Detect(path string) error {
	_, err := plainOpen(path)
	return err
}

func plainOpen(path string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
	}
	return repo, nil
}
