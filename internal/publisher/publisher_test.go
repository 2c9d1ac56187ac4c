package publisher_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autoremedy/internal/model"
	"autoremedy/internal/publisher"
	"autoremedy/pkg/git"
	"autoremedy/pkg/log"
)

type fakeRepo struct {
	staged    []string
	commits   int
	commitErr error
	pushErrs  []error
	pushes    int
	rebases   int
	rebaseErr error
}

func (f *fakeRepo) Stage(ctx context.Context, paths ...string) error {
	f.staged = append(f.staged, paths...)
	return nil
}

func (f *fakeRepo) Commit(ctx context.Context, subject, body string) (string, error) {
	if f.commitErr != nil {
		return "", f.commitErr
	}
	f.commits++
	return fmt.Sprintf("%040d", f.commits), nil
}

func (f *fakeRepo) Push(ctx context.Context) error {
	f.pushes++
	if len(f.pushErrs) == 0 {
		return nil
	}
	err := f.pushErrs[0]
	f.pushErrs = f.pushErrs[1:]
	return err
}

func (f *fakeRepo) PullRebase(ctx context.Context) error {
	f.rebases++
	return f.rebaseErr
}

func records(tokens ...string) []model.PatchRecord {
	out := make([]model.PatchRecord, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, model.PatchRecord{
			Action: model.RemediationAction{
				Operation: model.OperationInsertLine,
				Payload:   `gem "` + tok + `"`,
				Reason:    "ruby-missing-stdlib-gem",
				Token:     tok,
			},
			ResultDiff: `+gem "` + tok + `"`,
		})
	}
	return out
}

var rejected = fmt.Errorf("%w: ! [rejected] HEAD -> main (non-fast-forward)", git.ErrPushRejected)

func TestPublishNoRecords(t *testing.T) {
	repo := &fakeRepo{}
	p := publisher.New(log.NewNop(), repo, publisher.Options{PushAttempts: 2})

	res, err := p.Publish(context.Background(), publisher.Request{ManifestPath: "Gemfile"})
	require.NoError(t, err)
	assert.False(t, res.Published)
	assert.Equal(t, "no changes, nothing to publish", res.Message)
	assert.Zero(t, repo.commits)
	assert.Zero(t, repo.pushes)
}

func TestPublishFirstPush(t *testing.T) {
	repo := &fakeRepo{}
	p := publisher.New(log.NewNop(), repo, publisher.Options{PushAttempts: 2})

	res, err := p.Publish(context.Background(), publisher.Request{ManifestPath: "/srv/site/Gemfile", Records: records("csv")})
	require.NoError(t, err)
	assert.True(t, res.Published)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []string{"/srv/site/Gemfile"}, repo.staged)
	assert.Zero(t, repo.rebases)
}

func TestPublishConflictRetriesOnce(t *testing.T) {
	repo := &fakeRepo{pushErrs: []error{rejected, rejected, rejected}}
	p := publisher.New(log.NewNop(), repo, publisher.Options{PushAttempts: 2})

	res, err := p.Publish(context.Background(), publisher.Request{Records: records("csv")})
	assert.ErrorIs(t, err, publisher.ErrPublishConflict)
	assert.Equal(t, 2, repo.pushes)
	assert.Equal(t, 1, repo.rebases)
	assert.Equal(t, 2, res.Attempts)
	assert.NotEmpty(t, res.CommitHash)
}

func TestPublishConflictResolvedByRebase(t *testing.T) {
	repo := &fakeRepo{pushErrs: []error{rejected}}
	p := publisher.New(log.NewNop(), repo, publisher.Options{PushAttempts: 2})

	res, err := p.Publish(context.Background(), publisher.Request{Records: records("csv")})
	require.NoError(t, err)
	assert.True(t, res.Published)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 1, repo.rebases)
}

func TestPublishSingleAttempt(t *testing.T) {
	repo := &fakeRepo{pushErrs: []error{rejected}}
	p := publisher.New(log.NewNop(), repo, publisher.Options{PushAttempts: 0})

	_, err := p.Publish(context.Background(), publisher.Request{Records: records("csv")})
	assert.ErrorIs(t, err, publisher.ErrPublishConflict)
	assert.Equal(t, 1, repo.pushes)
	assert.Zero(t, repo.rebases)
}

func TestPublishRebaseConflict(t *testing.T) {
	repo := &fakeRepo{pushErrs: []error{rejected}, rebaseErr: git.ErrRebaseConflict}
	p := publisher.New(log.NewNop(), repo, publisher.Options{PushAttempts: 2})

	_, err := p.Publish(context.Background(), publisher.Request{Records: records("csv")})
	assert.ErrorIs(t, err, publisher.ErrPublishConflict)
	assert.Equal(t, 1, repo.pushes)
}

func TestPublishErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unreachable", fmt.Errorf("%w: auth failed", git.ErrUnreachable), publisher.ErrPublishUnreachable},
		{"timeout", fmt.Errorf("%w: deadline", git.ErrTimeout), publisher.ErrTimeout},
		{"unknown", errors.New("boom"), publisher.ErrPublishUnreachable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeRepo{pushErrs: []error{tc.err}}
			p := publisher.New(log.NewNop(), repo, publisher.Options{PushAttempts: 2})

			_, err := p.Publish(context.Background(), publisher.Request{Records: records("csv")})
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, 1, repo.pushes)
			assert.Zero(t, repo.rebases)
		})
	}
}

func TestCommitMessage(t *testing.T) {
	subject, body := publisher.CommitMessage(records("csv", "logger"), model.WebhookEvent{
		ID:         "evt-1",
		Source:     model.SourceNetlify,
		Kind:       "deploy",
		DeliveryID: "dep-42",
		Repository: "docs-site",
	})

	assert.Equal(t, "fix(deps): add csv, logger", subject)
	assert.Contains(t, body, "- ruby-missing-stdlib-gem: csv\n")
	assert.Contains(t, body, "- ruby-missing-stdlib-gem: logger\n")
	assert.Contains(t, body, "netlify deploy (delivery dep-42) for docs-site")
	assert.Contains(t, body, "Event-ID: evt-1")
}

type noopRunner struct{}

func (noopRunner) Run(ctx context.Context, cmd git.Command) ([]byte, error) { return nil, nil }

func TestPublishAgainstLocalRepository(t *testing.T) {
	dir := t.TempDir()
	raw, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	manifest := filepath.Join(dir, "Gemfile")
	require.NoError(t, os.WriteFile(manifest, []byte("gem \"jekyll\"\ngem \"ostruct\"\n"), 0o644))

	repo, err := git.Open(log.NewNop(), git.Config{
		RepoPath:    dir,
		AuthorName:  "Remediation Bot",
		AuthorEmail: "bot@example.com",
	}, noopRunner{})
	require.NoError(t, err)

	p := publisher.New(log.NewNop(), repo, publisher.Options{PushAttempts: 2})
	res, err := p.Publish(context.Background(), publisher.Request{
		ManifestPath: manifest,
		Records:      records("ostruct"),
		Event:        model.WebhookEvent{Source: model.SourceGitHub, Kind: "workflow_run"},
	})
	require.NoError(t, err)
	assert.True(t, res.Published)

	head, err := raw.Head()
	require.NoError(t, err)
	assert.Equal(t, res.CommitHash, head.Hash().String())
	c, err := raw.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.Message, "fix(deps): add ostruct\n\n- ruby-missing-stdlib-gem: ostruct"))
}
